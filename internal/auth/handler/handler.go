package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ishemalink/internal/auth/models"
	idmodels "ishemalink/internal/identity/models"
	"ishemalink/internal/platform/middleware"
	id "ishemalink/pkg/domain"
	"ishemalink/pkg/platform/httputil"
	"ishemalink/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type Service interface {
	LoginSession(ctx context.Context, req *models.LoginRequest) (*models.Session, *idmodels.User, error)
	ObtainTokens(ctx context.Context, req *models.LoginRequest) (*models.TokenPair, error)
	Refresh(ctx context.Context, req *models.RefreshRequest) (*models.AccessToken, error)
	Logout(ctx context.Context, caller requestcontext.Caller, sessionKey, refreshToken string) error
	WhoAmI(ctx context.Context, caller requestcontext.Caller) (*models.WhoAmI, error)
}

// Handler serves the login, token and logout endpoints.
type Handler struct {
	service      Service
	auth         middleware.Authenticator
	logger       *slog.Logger
	throttle     func(http.Handler) http.Handler
	secureCookie bool
}

type Option func(*Handler)

// WithThrottle wraps the credential-checking routes.
func WithThrottle(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.throttle = mw
	}
}

func WithSecureCookie(secure bool) Option {
	return func(h *Handler) {
		h.secureCookie = secure
	}
}

func New(service Service, auth middleware.Authenticator, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		service:  service,
		auth:     auth,
		logger:   logger,
		throttle: func(next http.Handler) http.Handler { return next },
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.With(h.throttle).Post("/api/auth/login/session", h.HandleLoginSession)
	r.With(h.throttle).Post("/api/auth/token/obtain", h.HandleObtainTokens)
	r.Post("/api/auth/token/refresh", h.HandleRefresh)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.auth, h.logger))
		r.Post("/api/auth/logout", h.HandleLogout)
		r.Get("/api/auth/whoami", h.HandleWhoAmI)
	})
}

type sessionLoginResponse struct {
	Message     string    `json:"message"`
	UserID      string    `json:"user_id"`
	Role        id.Role   `json:"role"`
	DeviceLabel string    `json:"device"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *Handler) HandleLoginSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sess, user, err := h.service.LoginSession(ctx, req)
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "session login failed", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Key,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, sessionLoginResponse{
		Message:     "Login successful",
		UserID:      user.ID.String(),
		Role:        user.Role,
		DeviceLabel: sess.DeviceLabel,
		ExpiresAt:   sess.ExpiresAt,
	})
}

func (h *Handler) HandleObtainTokens(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	pair, err := h.service.ObtainTokens(ctx, req)
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "token obtain failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pair)
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.RefreshRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	access, err := h.service.Refresh(ctx, req)
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "token refresh failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, access)
}

// HandleLogout accepts an optional {"refresh": "..."} body.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, _ := requestcontext.Principal(ctx)

	var req models.LogoutRequest
	if r.ContentLength != 0 {
		body, ok := httputil.DecodeAndPrepare[models.LogoutRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
		if !ok {
			return
		}
		req = *body
	}

	// The cookie is ended even when the request authenticated with a Bearer token.
	var sessionKey string
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessionKey = cookie.Value
	}

	if err := h.service.Logout(ctx, caller, sessionKey, req.Refresh); err != nil {
		httputil.Fail(ctx, w, h.logger, "logout failed", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *Handler) HandleWhoAmI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, _ := requestcontext.Principal(ctx)

	who, err := h.service.WhoAmI(ctx, caller)
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "failed to load caller", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, who)
}
