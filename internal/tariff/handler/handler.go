package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ishemalink/internal/platform/middleware"
	"ishemalink/internal/tariff/models"
	id "ishemalink/pkg/domain"
	"ishemalink/pkg/platform/httputil"
	"ishemalink/pkg/requestcontext"
)

// CacheHitHeader tells clients whether the tariff list came from the cache.
const CacheHitHeader = "X-Cache-Hit"

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type Service interface {
	GetTariffs(ctx context.Context) ([]models.Tariff, bool, error)
	InvalidateTariffs(ctx context.Context, caller requestcontext.Caller) error
}

type Handler struct {
	service Service
	auth    middleware.Authenticator
	logger  *slog.Logger
}

func New(service Service, auth middleware.Authenticator, logger *slog.Logger) *Handler {
	return &Handler{service: service, auth: auth, logger: logger}
}

// Register mounts the public tariff read and the admin-only cache clear.
func (h *Handler) Register(r chi.Router) {
	r.Get("/api/domestic/pricing/tariffs", h.HandleGetTariffs)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.auth, h.logger))
		r.With(middleware.RequireRole(h.logger, id.RoleAdmin)).
			Post("/api/domestic/admin/cache/clear-tariffs", h.HandleClearCache)
	})
}

func (h *Handler) HandleGetTariffs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tariffs, hit, err := h.service.GetTariffs(ctx)
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "failed to load tariffs", err)
		return
	}
	if hit {
		w.Header().Set(CacheHitHeader, "TRUE")
	} else {
		w.Header().Set(CacheHitHeader, "FALSE")
	}
	httputil.WriteJSON(w, http.StatusOK, tariffs)
}

func (h *Handler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, _ := requestcontext.Principal(ctx)
	if err := h.service.InvalidateTariffs(ctx, caller); err != nil {
		httputil.Fail(ctx, w, h.logger, "failed to clear tariff cache", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Cache cleared successfully. Next request will hit DB.",
	})
}
