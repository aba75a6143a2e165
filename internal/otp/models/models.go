package models

import (
	"strings"

	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
)

// Outcome is the result of checking a presented code.
type Outcome int

const (
	// Mismatch covers a wrong code and an absent or expired challenge.
	Mismatch Outcome = iota
	Matched
	// Locked means the attempt cap for the live challenge is exhausted.
	Locked
)

// ChallengeKey is the cache key holding a user's live code.
func ChallengeKey(userID id.UserID) string {
	return "otp_" + userID.String()
}

type VerifyRequest struct {
	Code string `json:"code"`
}

func (r *VerifyRequest) Normalize() {
	r.Code = strings.TrimSpace(r.Code)
}

func (r *VerifyRequest) Validate() error {
	if r == nil || r.Code == "" {
		return dErrors.Field("code", "this field is required")
	}
	return nil
}
