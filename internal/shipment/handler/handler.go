package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ishemalink/internal/platform/middleware"
	"ishemalink/internal/shipment/models"
	"ishemalink/internal/shipment/service"
	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
	"ishemalink/pkg/platform/httputil"
	"ishemalink/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type Service interface {
	Create(ctx context.Context, caller requestcontext.Caller, req *models.CreateRequest) (*models.Shipment, error)
	List(ctx context.Context, caller requestcontext.Caller, filter models.Filter) (*models.Page, error)
	Manifests(ctx context.Context, filter models.Filter) (*models.Page, error)
	Get(ctx context.Context, caller requestcontext.Caller, shipmentID id.ShipmentID) (*service.Detail, error)
	UpdateStatus(ctx context.Context, caller requestcontext.Caller, shipmentID id.ShipmentID, req *models.UpdateStatusRequest) (*models.Shipment, error)
}

// Handler serves the domestic shipment, operations and government manifest endpoints.
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
		r.Post("/api/domestic/shipments", h.HandleCreate)
		r.Get("/api/domestic/shipments/list", h.HandleList)
		r.Get("/api/domestic/shipments/{id}", h.HandleGet)
		r.Post("/api/domestic/shipments/{id}/update", h.HandleUpdateStatus)
		r.Get("/api/ops/shipments", h.HandleList)

		r.With(middleware.RequireRole(h.logger, id.RoleGovernmentInspector)).
			Get("/api/gov/manifests", h.HandleManifests)
	})
}

type logResponse struct {
	Status    models.Status `json:"status"`
	Location  string        `json:"location"`
	Timestamp time.Time     `json:"timestamp"`
}

type shipmentResponse struct {
	ID             string        `json:"id"`
	TrackingNumber string        `json:"tracking_number"`
	Status         models.Status `json:"current_status"`
	Origin         string        `json:"origin"`
	Destination    string        `json:"destination"`
	Sector         string        `json:"sector,omitempty"`
	DriverID       string        `json:"driver_id,omitempty"`
	OwnerID        string        `json:"owner_id"`
	CargoValue     string        `json:"cargo_value,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	Logs           []logResponse `json:"logs,omitempty"`
}

type pageResponse struct {
	Count    int                `json:"count"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Results  []shipmentResponse `json:"results"`
}

// toShipmentResponse never carries the sealed cargo value.
func toShipmentResponse(sh *models.Shipment) shipmentResponse {
	resp := shipmentResponse{
		ID:             sh.ID.String(),
		TrackingNumber: sh.TrackingNumber,
		Status:         sh.Status,
		Origin:         sh.Origin,
		Destination:    sh.Destination,
		Sector:         sh.Sector,
		OwnerID:        sh.OwnerID.String(),
		CreatedAt:      sh.CreatedAt,
	}
	if sh.DriverID != nil {
		resp.DriverID = sh.DriverID.String()
	}
	return resp
}

func toPageResponse(page *models.Page, filter models.Filter) pageResponse {
	resp := pageResponse{
		Count:    page.Total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Results:  make([]shipmentResponse, 0, len(page.Shipments)),
	}
	for _, sh := range page.Shipments {
		resp.Results = append(resp.Results, toShipmentResponse(sh))
	}
	return resp
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, _ := requestcontext.Principal(ctx)

	req, ok := httputil.DecodeAndPrepare[models.CreateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sh, err := h.service.Create(ctx, caller, req)
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "failed to create shipment", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toShipmentResponse(sh))
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, _ := requestcontext.Principal(ctx)

	filter, err := models.ParseFilter(r.URL.Query())
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "invalid shipment filter", err)
		return
	}
	page, err := h.service.List(ctx, caller, filter)
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "failed to list shipments", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPageResponse(page, filter))
}

func (h *Handler) HandleManifests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := models.ParseFilter(r.URL.Query())
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "invalid manifest filter", err)
		return
	}
	page, err := h.service.Manifests(ctx, filter)
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "failed to list manifests", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toPageResponse(page, filter))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, _ := requestcontext.Principal(ctx)

	shipmentID, err := id.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid shipment id"))
		return
	}
	detail, err := h.service.Get(ctx, caller, shipmentID)
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "failed to load shipment", err)
		return
	}

	resp := toShipmentResponse(detail.Shipment)
	resp.CargoValue = detail.CargoValue
	resp.Logs = make([]logResponse, 0, len(detail.Logs))
	for _, l := range detail.Logs {
		resp.Logs = append(resp.Logs, logResponse{Status: l.Status, Location: l.Location, Timestamp: l.CreatedAt})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	caller, _ := requestcontext.Principal(ctx)

	shipmentID, err := id.ParseShipmentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid shipment id"))
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateStatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	sh, err := h.service.UpdateStatus(ctx, caller, shipmentID, req)
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "failed to update shipment status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":        "Status updated and owner notified",
		"current_status": sh.Status,
	})
}
