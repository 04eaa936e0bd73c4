package middleware

import (
	"errors"
	"net/http"
	"strings"

	"account-service/internal/platform/httpjson"
	"account-service/internal/security"
)

const bearerPrefix = "bearer "

// MsgNotAuthenticated is returned with 401 when no valid access token is presented.
const MsgNotAuthenticated = "Not authenticated"

// FailureRecorder counts rejected authentication attempts by reason.
type FailureRecorder interface {
	AuthFailure(reason string)
}

// RequireAccess verifies the access token from the Authorization header or,
// failing that, the access cookie, and stores the caller's Identity in the
// request context. Requests without a valid token get 401.
func RequireAccess(tokens *security.TokenProvider, failures FailureRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := AccessToken(r)
			if token == "" {
				recordFailure(failures, "missing_token")
				httpjson.WriteError(w, http.StatusUnauthorized, MsgNotAuthenticated)
				return
			}
			payload, err := tokens.VerifyAccess(token)
			if err != nil {
				recordFailure(failures, FailureReason(err))
				httpjson.WriteError(w, http.StatusUnauthorized, MsgNotAuthenticated)
				return
			}
			ctx := WithIdentity(r.Context(), Identity{
				AccountID:   payload.Subject,
				Username:    payload.Username,
				Permissions: payload.Permissions,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FailureReason maps a token verification error to a metric label.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, security.ErrTokenExpired):
		return "expired"
	case errors.Is(err, security.ErrTokenSignature):
		return "bad_signature"
	case errors.Is(err, security.ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid_token"
	}
}

func recordFailure(f FailureRecorder, reason string) {
	if f != nil {
		f.AuthFailure(reason)
	}
}

// AccessToken returns the bearer token, or the access cookie value, or "".
func AccessToken(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get("Authorization")); len(v) > len(bearerPrefix) &&
		strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		if tok := strings.TrimSpace(v[len(bearerPrefix):]); tok != "" {
			return tok
		}
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}
