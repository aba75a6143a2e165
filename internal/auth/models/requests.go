package models

import (
	"strings"

	dErrors "ishemalink/pkg/domain-errors"
)

// LoginRequest is shared by session login and token obtain.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	verr := dErrors.New(dErrors.CodeValidation, "invalid login request")
	if r.Username == "" {
		verr.WithField("username", "this field is required")
	}
	if r.Password == "" {
		verr.WithField("password", "this field is required")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

func (r *RefreshRequest) Normalize() {
	r.Refresh = strings.TrimSpace(r.Refresh)
}

func (r *RefreshRequest) Validate() error {
	if r == nil || r.Refresh == "" {
		return dErrors.Field("refresh", "this field is required")
	}
	return nil
}

// LogoutRequest optionally carries a refresh token to revoke alongside the session.
type LogoutRequest struct {
	Refresh string `json:"refresh"`
}

func (r *LogoutRequest) Normalize() {
	r.Refresh = strings.TrimSpace(r.Refresh)
}

func (r *LogoutRequest) Validate() error { return nil }
