package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ishemalink/internal/cargo/models"
	"ishemalink/internal/platform/middleware"
	"ishemalink/pkg/platform/httputil"
	"ishemalink/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type Service interface {
	Create(ctx context.Context, caller requestcontext.Caller, req *models.CreateRequest) (*models.Cargo, error)
	List(ctx context.Context, caller requestcontext.Caller) ([]*models.Cargo, error)
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
		r.Get("/api/international/cargo", h.HandleList)
		r.Post("/api/international/cargo", h.HandleCreate)
	})
}

type cargoResponse struct {
	ID               string             `json:"id"`
	Owner            string             `json:"owner"`
	ManifestID       string             `json:"manifest_id"`
	TINNumber        string             `json:"tin_number"`
	PassportNumber   *string            `json:"passport_number"`
	Destination      models.Destination `json:"destination_country"`
	WeightKg         string             `json:"weight_kg"`
	IsCustomsCleared bool               `json:"is_customs_cleared"`
	CreatedAt        time.Time          `json:"created_at"`
}

func toCargoResponse(c *models.Cargo) cargoResponse {
	resp := cargoResponse{
		ID:               c.ID.String(),
		Owner:            c.OwnerID.String(),
		ManifestID:       c.ManifestID,
		TINNumber:        c.TINNumber,
		Destination:      c.Destination,
		WeightKg:         c.WeightKg,
		IsCustomsCleared: c.IsCustomsCleared,
		CreatedAt:        c.CreatedAt,
	}
	if c.PassportNumber != "" {
		passport := c.PassportNumber
		resp.PassportNumber = &passport
	}
	return resp
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, _ := requestcontext.Principal(ctx)

	items, err := h.service.List(ctx, caller)
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "failed to list cargo", err)
		return
	}
	resp := make([]cargoResponse, 0, len(items))
	for _, c := range items {
		resp = append(resp, toCargoResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleCreate ignores any is_customs_cleared in the body; clearance is set by customs, not the declarant.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, _ := requestcontext.Principal(ctx)

	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	c, err := h.service.Create(ctx, caller, req)
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "failed to declare cargo", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toCargoResponse(c))
}
