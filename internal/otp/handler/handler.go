package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ishemalink/internal/otp/models"
	"ishemalink/internal/platform/middleware"
	id "ishemalink/pkg/domain"
	"ishemalink/pkg/platform/httputil"
	"ishemalink/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type Service interface {
	RequestChallenge(ctx context.Context, userID id.UserID) (string, error)
	VerifyChallenge(ctx context.Context, userID id.UserID, code string) (bool, error)
}

type Handler struct {
	service Service
	auth    middleware.Authenticator
	logger  *slog.Logger
}

func New(service Service, auth middleware.Authenticator, logger *slog.Logger) *Handler {
	return &Handler{service: service, auth: auth, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.auth, h.logger))
		r.Post("/api/identity/otp/request", h.HandleRequest)
		r.Post("/api/identity/otp/verify", h.HandleVerify)
	})
}

// HandleRequest never returns the code; it only leaves by SMS.
func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, err := h.service.RequestChallenge(ctx, requestcontext.UserID(ctx)); err != nil {
		httputil.Fail(ctx, w, h.logger, "failed to issue otp", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "OTP sent to your registered phone number"})
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.VerifyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	verified, err := h.service.VerifyChallenge(ctx, requestcontext.UserID(ctx), req.Code)
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "failed to verify otp", err)
		return
	}
	if !verified {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error:       "invalid_code",
			Description: "Invalid or expired code",
		})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"verified": true})
}
