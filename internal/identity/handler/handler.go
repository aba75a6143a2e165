package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ishemalink/internal/identity/models"
	"ishemalink/internal/platform/middleware"
	id "ishemalink/pkg/domain"
	"ishemalink/pkg/platform/httputil"
	"ishemalink/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service
type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	SubmitIdentityDocument(ctx context.Context, userID id.UserID, nationalID id.NationalID) (*models.User, error)
	ExportOwnData(ctx context.Context, userID id.UserID) (*models.DataExport, error)
	ForgetMe(ctx context.Context, userID id.UserID) error
	AssignRole(ctx context.Context, actor, target id.UserID, role id.Role, sector string) (*models.User, error)
}

// Handler serves registration, KYC, privacy and admin role endpoints.
type Handler struct {
	service Service
	auth    middleware.Authenticator
	logger  *slog.Logger
}

func New(service Service, auth middleware.Authenticator, logger *slog.Logger) *Handler {
	return &Handler{service: service, auth: auth, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/auth/register", h.HandleRegister)
	r.Post("/api/auth/verify-nid", h.HandleVerifyNID)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.auth, h.logger))
		r.Post("/api/identity/kyc/nid", h.HandleSubmitNID)
		r.Get("/api/privacy/my-data", h.HandleExportMyData)
		r.Post("/api/privacy/forget-me", h.HandleForgetMe)
		r.Get("/api/rbac/roles", h.HandleListRoles)

		r.With(middleware.RequireRole(h.logger, id.RoleAdmin)).
			Put("/api/admin/users/{id}/role", h.HandleAssignRole)
	})
}

type userResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email,omitempty"`
	Role           id.Role   `json:"role"`
	IsVerified     bool      `json:"is_verified"`
	AssignedSector string    `json:"assigned_sector,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:             u.ID.String(),
		Username:       u.Username,
		Phone:          u.Phone.String(),
		Email:          u.Email,
		Role:           u.Role,
		IsVerified:     u.IsVerified,
		AssignedSector: u.AssignedSector,
		CreatedAt:      u.CreatedAt,
	}
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.Register(ctx, req)
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "failed to register user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleVerifyNID checks the format of a national ID without storing it.
func (h *Handler) HandleVerifyNID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := httputil.DecodeAndPrepare[models.NationalIDRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx)); !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *Handler) HandleSubmitNID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[models.NationalIDRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.SubmitIdentityDocument(ctx, requestcontext.UserID(ctx), req.ParsedNationalID())
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "failed to submit identity document", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":     "Identity verified",
		"is_verified": user.IsVerified,
	})
}

func (h *Handler) HandleExportMyData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	export, err := h.service.ExportOwnData(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "failed to export personal data", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, export)
}

func (h *Handler) HandleForgetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.service.ForgetMe(ctx, requestcontext.UserID(ctx)); err != nil {
		httputil.Fail(ctx, w, h.logger, "failed to anonymize user", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Your personal data has been anonymized",
	})
}

func (h *Handler) HandleAssignRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	target, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.AssignRoleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.AssignRole(ctx, requestcontext.UserID(ctx), target, req.ParsedRole(), req.AssignedSector)
	if err != nil {
		httputil.Fail(ctx, w, h.logger, "failed to assign role", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

type roleResponse struct {
	Code           id.Role `json:"code"`
	Label          string  `json:"label"`
	SelfAssignable bool    `json:"self_assignable"`
}

// HandleListRoles returns the role catalogue in display order.
func (h *Handler) HandleListRoles(w http.ResponseWriter, _ *http.Request) {
	roles := make([]roleResponse, 0, len(id.Roles()))
	for _, role := range id.Roles() {
		roles = append(roles, roleResponse{Code: role, Label: role.Label(), SelfAssignable: role.SelfAssignable()})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"roles": roles})
}
