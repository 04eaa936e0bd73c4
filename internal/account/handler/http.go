package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"account-service/internal/account/domain"
	"account-service/internal/audit"
	"account-service/internal/platform/httpjson"
	"account-service/internal/policy/engine"
	"account-service/internal/security"
	"account-service/internal/server/middleware"
)

// Service is the account service surface used by the HTTP handlers.
type Service interface {
	Get(ctx context.Context, id string) (*domain.Account, error)
	UpdateBio(ctx context.Context, id, bio string) error
	GrantPermission(ctx context.Context, id, name string) (*domain.Account, error)
	RevokePermission(ctx context.Context, id, name string) (*domain.Account, error)
}

// ProfileResponse is the public view of an account.
type ProfileResponse struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Bio         string   `json:"bio"`
	Permissions []string `json:"permissions"`
}

// NewProfileResponse converts a to its public view. The password hash is never included.
func NewProfileResponse(a *domain.Account) ProfileResponse {
	return ProfileResponse{
		ID:          a.ID,
		Username:    a.Username,
		Bio:         a.Bio,
		Permissions: a.PermissionNames(),
	}
}

type updateProfileRequest struct {
	Bio *string `json:"bio"`
}

type permissionsResponse struct {
	AccountID   string   `json:"account_id"`
	Permissions []string `json:"permissions"`
}

// Handler serves the profile and permission-management routes.
type Handler struct {
	svc       Service
	tokens    *security.TokenProvider
	evaluator engine.Evaluator
	audit     audit.AuditLogger
	failures  middleware.FailureRecorder
}

// NewHandler returns an account Handler. auditLogger and failures may be nil.
func NewHandler(svc Service, tokens *security.TokenProvider, evaluator engine.Evaluator, auditLogger audit.AuditLogger, failures middleware.FailureRecorder) *Handler {
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	return &Handler{svc: svc, tokens: tokens, evaluator: evaluator, audit: auditLogger, failures: failures}
}

// RegisterRoutes registers the authenticated account routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	authed := middleware.RequireAccess(h.tokens, h.failures)
	need := func(perm string) func(http.Handler) http.Handler {
		return middleware.RequirePermissions(h.evaluator, h.failures, perm)
	}

	middleware.Route(mux, http.MethodGet, "/user/profile", middleware.Chain(http.HandlerFunc(h.GetProfile), authed))
	middleware.Route(mux, http.MethodPut, "/user/profile", middleware.Chain(http.HandlerFunc(h.UpdateProfile), authed))
	mux.Handle("GET /user/{id}/permissions",
		middleware.Chain(http.HandlerFunc(h.ListPermissions), authed, need(domain.PermissionReadPermissions)))
	mux.Handle("PUT /user/{id}/permissions/{name}",
		middleware.Chain(http.HandlerFunc(h.GrantPermission), authed, need(domain.PermissionManagePermissions)))
	mux.Handle("DELETE /user/{id}/permissions/{name}",
		middleware.Chain(http.HandlerFunc(h.RevokePermission), authed, need(domain.PermissionManagePermissions)))
}

// GetProfile returns the caller's own profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetAccountID(r.Context())
	a, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, NewProfileResponse(a))
}

// UpdateProfile replaces the caller's bio and returns {}.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := httpjson.Decode(r, &req); err != nil || req.Bio == nil {
		httpjson.WriteError(w, http.StatusBadRequest, "bio is required")
		return
	}
	id, _ := middleware.GetAccountID(r.Context())
	if err := h.svc.UpdateBio(r.Context(), id, *req.Bio); err != nil {
		writeServiceError(w, err)
		return
	}
	h.audit.LogEvent(r.Context(), id, audit.ActionProfileUpdate, "")
	httpjson.WriteJSON(w, http.StatusOK, struct{}{})
}

// ListPermissions returns the permission set of the account named in the path.
func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, permissionsResponse{AccountID: a.ID, Permissions: a.PermissionNames()})
}

// GrantPermission grants the named permission; granting a held one is a no-op.
func (h *Handler) GrantPermission(w http.ResponseWriter, r *http.Request) {
	h.changePermission(w, r, h.svc.GrantPermission, audit.ActionPermissionGrant)
}

// RevokePermission revokes the named permission; revoking an absent one is a no-op.
func (h *Handler) RevokePermission(w http.ResponseWriter, r *http.Request) {
	h.changePermission(w, r, h.svc.RevokePermission, audit.ActionPermissionRevoke)
}

func (h *Handler) changePermission(w http.ResponseWriter, r *http.Request, apply func(context.Context, string, string) (*domain.Account, error), action string) {
	target, name := r.PathValue("id"), r.PathValue("name")
	a, err := apply(r.Context(), target, name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	actor, _ := middleware.GetAccountID(r.Context())
	h.audit.LogEvent(r.Context(), actor, action, "target="+target+" permission="+name)
	httpjson.WriteJSON(w, http.StatusOK, permissionsResponse{AccountID: a.ID, Permissions: a.PermissionNames()})
}

// writeServiceError maps account errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		httpjson.WriteError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, domain.ErrValidation):
		httpjson.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httpjson.WriteError(w, http.StatusNotFound, "User does not exist")
	case errors.Is(err, domain.ErrAlreadyExists):
		httpjson.WriteError(w, http.StatusBadRequest, "User already exists")
	default:
		log.Printf("account: %v", err)
		httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
