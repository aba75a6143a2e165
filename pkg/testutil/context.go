package testutil

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
	"ishemalink/pkg/requestcontext"
)

// WithCaller attaches an authenticated caller to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithCaller(req *http.Request, caller requestcontext.Caller) *http.Request {
	return req.WithContext(requestcontext.WithPrincipal(req.Context(), caller))
}

// NewCaller builds a JWT-authenticated caller with a fresh user ID.
func NewCaller(role id.Role) requestcontext.Caller {
	return requestcontext.Caller{
		UserID:     id.UserID(uuid.New()),
		Role:       role,
		AuthMethod: requestcontext.AuthMethodJWT,
	}
}

// StaticAuthenticator resolves bearer tokens and session keys from fixed maps.
// Unknown credentials fail as unauthorized.
type StaticAuthenticator struct {
	Tokens   map[string]requestcontext.Caller
	Sessions map[string]requestcontext.Caller
}

// NewStaticAuthenticator maps each bearer token to its caller.
func NewStaticAuthenticator(tokens map[string]requestcontext.Caller) *StaticAuthenticator {
	return &StaticAuthenticator{Tokens: tokens, Sessions: map[string]requestcontext.Caller{}}
}

func (a *StaticAuthenticator) AuthenticateBearer(_ context.Context, token string) (requestcontext.Caller, error) {
	c, ok := a.Tokens[token]
	if !ok {
		return requestcontext.Caller{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return c, nil
}

func (a *StaticAuthenticator) AuthenticateSession(_ context.Context, key string) (requestcontext.Caller, error) {
	c, ok := a.Sessions[key]
	if !ok {
		return requestcontext.Caller{}, dErrors.New(dErrors.CodeUnauthorized, "invalid session")
	}
	return c, nil
}

// Bearer sets the Authorization header.
func Bearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
