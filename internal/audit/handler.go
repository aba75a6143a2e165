package audit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"ishemalink/internal/platform/middleware"
	id "ishemalink/pkg/domain"
	dErrors "ishemalink/pkg/domain-errors"
	"ishemalink/pkg/platform/audit"
	"ishemalink/pkg/platform/httputil"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type RecentReader interface {
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

// Handler exposes the audit trail to admins. It is read-only.
type Handler struct {
	reader RecentReader
	auth   middleware.Authenticator
	logger *slog.Logger
}

func NewHandler(reader RecentReader, auth middleware.Authenticator, logger *slog.Logger) *Handler {
	return &Handler{reader: reader, auth: auth, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.auth, h.logger))
		r.Use(middleware.RequireRole(h.logger, id.RoleAdmin))
		r.Get("/api/admin/audit", h.HandleListRecent)
	})
}

type eventResponse struct {
	ID        string    `json:"id"`
	ActorID   *string   `json:"actor_id"`
	Action    string    `json:"action"`
	Category  string    `json:"category"`
	IP        string    `json:"ip_address,omitempty"`
	Detail    string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"timestamp"`
}

func (h *Handler) HandleListRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httputil.WriteError(w, dErrors.Field("limit", "must be a positive integer"))
			return
		}
		limit = min(n, maxListLimit)
	}

	events, err := h.reader.Recent(ctx, limit)
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "failed to list audit entries",
			dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit entries"))
		return
	}

	resp := make([]eventResponse, 0, len(events))
	for _, e := range events {
		item := eventResponse{
			ID:        e.ID.String(),
			Action:    string(e.Action),
			Category:  string(e.Action.Category()),
			IP:        e.IP,
			Detail:    e.Detail,
			CreatedAt: e.CreatedAt,
		}
		if e.ActorID != nil {
			actor := e.ActorID.String()
			item.ActorID = &actor
		}
		resp = append(resp, item)
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"count": len(resp), "results": resp})
}
