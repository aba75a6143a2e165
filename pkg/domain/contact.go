package domain

import (
	"regexp"
	"strconv"
	"time"

	dErrors "ishemalink/pkg/domain-errors"
)

// PhoneNumber is a Rwandan mobile number in international form (+2507[2389]XXXXXXX).
type PhoneNumber string

var rwandaPhonePattern = regexp.MustCompile(`^\+2507[2389]\d{7}$`)

// ParsePhoneNumber validates a phone number from external input.
func ParsePhoneNumber(s string) (PhoneNumber, error) {
	if !rwandaPhonePattern.MatchString(s) {
		return "", dErrors.Field("phone", "phone number must be in the format +2507XXXXXXXX")
	}
	return PhoneNumber(s), nil
}

func (p PhoneNumber) String() string {
	return string(p)
}

// NationalID is a 16-digit Rwandan national identity number.
//
// Invariants:
//   - exactly 16 ASCII digits
//   - the leading digit is 1 (citizen)
//   - digits 2-5 are the holder's birth year, between 1900 and the current year
type NationalID string

const nationalIDLength = 16

// ParseNationalID validates a national ID against the current year at now.
func ParseNationalID(s string, now time.Time) (NationalID, error) {
	if len(s) != nationalIDLength {
		return "", dErrors.Field("national_id", "national ID must be exactly 16 digits")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", dErrors.Field("national_id", "national ID must contain digits only")
		}
	}
	if s[0] != '1' {
		return "", dErrors.Field("national_id", "invalid national ID format")
	}
	year, _ := strconv.Atoi(s[1:5])
	if year < 1900 || year > now.Year() {
		return "", dErrors.Field("national_id", "national ID birth year is not plausible")
	}
	return NationalID(s), nil
}

// LastFour returns the trailing fragment safe for audit details.
func (n NationalID) LastFour() string {
	if len(n) < 4 {
		return ""
	}
	return string(n[len(n)-4:])
}

func (n NationalID) String() string {
	return string(n)
}
