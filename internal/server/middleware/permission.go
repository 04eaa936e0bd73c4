package middleware

import (
	"log"
	"net/http"

	"account-service/internal/platform/httpjson"
	"account-service/internal/policy/engine"
)

// MsgPermissionDenied is returned with 403 when the caller lacks a permission.
const MsgPermissionDenied = "Permission denied"

// RequirePermissions lets the request through only when the caller's token
// grants every one of required. It must run after RequireAccess.
func RequirePermissions(evaluator engine.Evaluator, failures FailureRecorder, required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetIdentity(r.Context())
			if !ok {
				httpjson.WriteError(w, http.StatusUnauthorized, MsgNotAuthenticated)
				return
			}
			allowed, err := evaluator.Allow(r.Context(), id.Permissions, required)
			if err != nil {
				log.Printf("authz: evaluate %v for %s: %v", required, id.AccountID, err)
				httpjson.WriteError(w, http.StatusInternalServerError, "internal error")
				return
			}
			if !allowed {
				recordFailure(failures, "permission_denied")
				httpjson.WriteError(w, http.StatusForbidden, MsgPermissionDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Chain applies middlewares so the first one listed runs first.
func Chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Route registers h for "METHOD path" and for the same path with a trailing
// slash, so both /auth/login and /auth/login/ resolve.
func Route(mux *http.ServeMux, method, path string, h http.Handler) {
	mux.Handle(method+" "+path, h)
	mux.Handle(method+" "+path+"/{$}", h)
}
