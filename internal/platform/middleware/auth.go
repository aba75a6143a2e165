package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
	"ishemalink/pkg/requestcontext"
)

// SessionCookieName is the cookie carrying the server-side session key.
const SessionCookieName = "sessionid"

// Authenticator resolves presented credentials to a caller. Implementations
// check revocation and reload the caller's current role.
type Authenticator interface {
	AuthenticateBearer(ctx context.Context, token string) (requestcontext.Caller, error)
	AuthenticateSession(ctx context.Context, sessionKey string) (requestcontext.Caller, error)
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth accepts a Bearer access token or, failing that, a session cookie.
// A Bearer header that fails validation is rejected outright rather than
// falling back to the cookie.
func RequireAuth(auth Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			var (
				caller requestcontext.Caller
				err    error
			)
			if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				caller, err = auth.AuthenticateBearer(ctx, strings.TrimSpace(token))
			} else if cookie, cerr := r.Cookie(SessionCookieName); cerr == nil && cookie.Value != "" {
				caller, err = auth.AuthenticateSession(ctx, cookie.Value)
			} else {
				logger.WarnContext(ctx, "unauthorized access - missing credentials",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication credentials were not provided")
				return
			}

			if err != nil {
				if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
					logger.WarnContext(ctx, "unauthorized access - invalid credentials",
						"error", err,
						"request_id", requestID,
					)
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired credentials")
					return
				}
				logger.ErrorContext(ctx, "failed to authenticate request",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to validate credentials")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithPrincipal(ctx, caller)))
		})
	}
}

// RequireRole admits only callers holding one of roles. It must run after RequireAuth.
func RequireRole(logger *slog.Logger, roles ...id.Role) func(http.Handler) http.Handler {
	allowed := make(map[id.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			caller, ok := requestcontext.Principal(ctx)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Authentication credentials were not provided")
				return
			}
			if _, permitted := allowed[caller.Role]; !permitted {
				logger.WarnContext(ctx, "forbidden - role not permitted",
					"request_id", requestcontext.RequestID(ctx),
					"user_id", caller.UserID.String(),
					"role", caller.Role.String(),
					"path", r.URL.Path,
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "You do not have permission to perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
