// Package device derives a display label and a coarse fingerprint from a
// User-Agent so sessions can show where they were opened.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// ParseUserAgent returns a label such as "Chrome on macOS".
func ParseUserAgent(ua string) string {
	if strings.TrimSpace(ua) == "" {
		return unknownDevice
	}
	parsed := useragent.New(ua)
	browser, _ := parsed.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := parsed.OSInfo().Name
	if os == "" {
		os = parsed.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser + " on " + os)
}

// Service computes session fingerprints. A disabled service returns empty
// fingerprints and never reports drift.
type Service struct {
	enabled bool
}

func NewService(enabled bool) *Service {
	return &Service{enabled: enabled}
}

// ComputeFingerprint hashes browser name, browser major version, OS and
// platform. Minor browser updates keep the same fingerprint.
func (s *Service) ComputeFingerprint(ua string) string {
	if !s.enabled || ua == "" {
		return ""
	}
	parsed := useragent.New(ua)
	browser, version := parsed.Browser()
	major, _, _ := strings.Cut(version, ".")
	sum := sha256.Sum256([]byte(strings.Join([]string{
		browser, major, parsed.OSInfo().Name, parsed.Platform(), boolString(parsed.Mobile()),
	}, "|")))
	return hex.EncodeToString(sum[:])
}

// CompareFingerprints reports whether current matches stored. Drift is only
// reported when both values are present and differ.
func (s *Service) CompareFingerprints(stored, current string) (matched, drift bool) {
	if stored == current {
		return true, false
	}
	if stored == "" || current == "" {
		return false, false
	}
	return false, true
}

func boolString(b bool) string {
	if b {
		return "mobile"
	}
	return "desktop"
}
