package handler

import (
	"context"
	"errors"
	"log"
	"net/http"

	"account-service/internal/account/domain"
	accounthandler "account-service/internal/account/handler"
	"account-service/internal/audit"
	"account-service/internal/platform/httpjson"
	"account-service/internal/security"
	"account-service/internal/server/middleware"
	"account-service/internal/session/service"
)

// Response messages shared with clients.
const (
	MsgAuthFailed    = "Authentication failed"
	MsgAlreadyExists = "User already exists"
)

// Sessions is the session service surface used by the auth routes.
type Sessions interface {
	Register(ctx context.Context, username, password string) (*service.Result, error)
	Login(ctx context.Context, username, password string) (*service.Result, error)
	Refresh(ctx context.Context, refreshToken string) (*service.Result, error)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type permissionResponse struct {
	Name string `json:"name"`
}

// Handler serves /auth routes: registration, login, refresh, logout and the
// permission catalog.
type Handler struct {
	sessions Sessions
	tokens   *security.TokenProvider
	cookies  middleware.Cookies
	audit    audit.AuditLogger
	failures middleware.FailureRecorder
}

// NewHandler returns an auth Handler. auditLogger and failures may be nil.
func NewHandler(sessions Sessions, tokens *security.TokenProvider, cookies middleware.Cookies, auditLogger audit.AuditLogger, failures middleware.FailureRecorder) *Handler {
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	return &Handler{
		sessions: sessions,
		tokens:   tokens,
		cookies:  cookies,
		audit:    auditLogger,
		failures: failures,
	}
}

// RegisterRoutes registers the public auth routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	middleware.Route(mux, http.MethodPost, "/auth/registration", http.HandlerFunc(h.Register))
	middleware.Route(mux, http.MethodPost, "/auth/login", http.HandlerFunc(h.Login))
	middleware.Route(mux, http.MethodPost, "/auth/refresh", http.HandlerFunc(h.Refresh))
	middleware.Route(mux, http.MethodPost, "/auth/logout", http.HandlerFunc(h.Logout))
	middleware.Route(mux, http.MethodGet, "/auth/permissions", http.HandlerFunc(h.Permissions))
}

// Register creates an account, sets both cookies and returns the profile with 201.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.sessions.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			httpjson.WriteError(w, http.StatusBadRequest, MsgAlreadyExists)
		case errors.As(err, &ve):
			httpjson.WriteError(w, http.StatusBadRequest, ve.Error())
		default:
			log.Printf("auth: register: %v", err)
			httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	h.audit.LogEvent(r.Context(), res.Account.ID, audit.ActionRegistration, "username="+res.Account.Username)
	h.writeSession(w, http.StatusCreated, res)
}

// Login checks credentials, sets both cookies and returns the profile. Every
// credential failure is the same 401.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			h.fail(r, "invalid_credentials", audit.ActionLoginFailure, "username="+req.Username)
			httpjson.WriteError(w, http.StatusUnauthorized, MsgAuthFailed)
			return
		}
		log.Printf("auth: login: %v", err)
		httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.audit.LogEvent(r.Context(), res.Account.ID, audit.ActionLoginSuccess, "")
	h.writeSession(w, http.StatusOK, res)
}

// Refresh exchanges a refresh token from the body, or the refresh cookie when
// the body carries none, for a new pair.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := httpjson.Decode(r, &req); err != nil && !errors.Is(err, httpjson.ErrEmptyBody) {
		httpjson.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	token := req.RefreshToken
	if token == "" {
		if c, err := r.Cookie(middleware.RefreshTokenCookie); err == nil {
			token = c.Value
		}
	}
	res, err := h.sessions.Refresh(r.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			h.fail(r, middleware.FailureReason(err), audit.ActionTokenRefreshFailure, "")
			httpjson.WriteError(w, http.StatusUnauthorized, MsgAuthFailed)
			return
		}
		log.Printf("auth: refresh: %v", err)
		httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.audit.LogEvent(r.Context(), res.Account.ID, audit.ActionTokenRefresh, "")
	h.writeSession(w, http.StatusOK, res)
}

// Logout clears both cookies and returns {}. Tokens stay valid until they
// expire; there is no server-side session to revoke.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	accountID := ""
	if tok := middleware.AccessToken(r); tok != "" {
		if p, err := h.tokens.VerifyAccess(tok); err == nil {
			accountID = p.Subject
		}
	}
	h.audit.LogEvent(r.Context(), accountID, audit.ActionLogout, "")
	h.cookies.Clear(w)
	httpjson.WriteJSON(w, http.StatusOK, struct{}{})
}

// Permissions returns the permission catalog.
func (h *Handler) Permissions(w http.ResponseWriter, r *http.Request) {
	names := domain.KnownPermissions()
	out := make([]permissionResponse, 0, len(names))
	for _, n := range names {
		out = append(out, permissionResponse{Name: n})
	}
	httpjson.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) writeSession(w http.ResponseWriter, status int, res *service.Result) {
	h.cookies.SetTokens(w, res.Tokens)
	httpjson.WriteJSON(w, status, accounthandler.NewProfileResponse(res.Account))
}

func (h *Handler) fail(r *http.Request, reason, action, metadata string) {
	if h.failures != nil {
		h.failures.AuthFailure(reason)
	}
	h.audit.LogEvent(r.Context(), "", action, metadata)
}
