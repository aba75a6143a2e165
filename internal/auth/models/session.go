package models

import (
	"time"

	id "ishemalink/pkg/domain"
)

// Session is a server-side login session addressed by an opaque cookie key.
//
// Invariants:
//   - Key is unguessable and never logged
//   - A session past ExpiresAt is treated as absent
type Session struct {
	ID                id.SessionID `json:"id"`
	Key               string       `json:"key"`
	UserID            id.UserID    `json:"user_id"`
	DeviceLabel       string       `json:"device_label"`
	DeviceFingerprint string       `json:"device_fingerprint,omitempty"`
	ClientIP          string       `json:"client_ip,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	ExpiresAt         time.Time    `json:"expires_at"`
	LastSeenAt        time.Time    `json:"last_seen_at"`
}

func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TokenPair is the response of a token obtain.
type TokenPair struct {
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

// AccessToken is the response of a token refresh.
type AccessToken struct {
	Access          string    `json:"access"`
	AccessExpiresAt time.Time `json:"access_expires_at"`
}

// WhoAmI describes the authenticated caller.
type WhoAmI struct {
	ID         string  `json:"id"`
	Username   string  `json:"username"`
	Role       id.Role `json:"role"`
	IsVerified bool    `json:"is_verified"`
	AuthMethod string  `json:"auth_method"`
}
