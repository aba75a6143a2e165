// Package session persists server-side login sessions keyed by cookie value.
package session

import "errors"

// ErrSessionExpired is returned when a session exists but is past its expiry.
var ErrSessionExpired = errors.New("session expired")
