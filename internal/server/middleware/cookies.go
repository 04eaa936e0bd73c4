package middleware

import (
	"net/http"
	"time"

	"account-service/internal/security"
)

// Cookie names carrying the token pair.
const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Cookies writes and clears the auth cookies.
type Cookies struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// SetTokens writes both tokens as HttpOnly cookies whose Max-Age is the
// lifetime of the respective token class.
func (c Cookies) SetTokens(w http.ResponseWriter, pair *security.TokenPair) {
	http.SetCookie(w, c.cookie(AccessTokenCookie, pair.AccessToken, maxAge(c.AccessTTL)))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, pair.RefreshToken, maxAge(c.RefreshTTL)))
}

// Clear overwrites both cookies with empty values that expire immediately.
func (c Cookies) Clear(w http.ResponseWriter) {
	// MaxAge < 0 is sent as Max-Age=0.
	http.SetCookie(w, c.cookie(AccessTokenCookie, "", -1))
	http.SetCookie(w, c.cookie(RefreshTokenCookie, "", -1))
}

func (c Cookies) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// maxAge converts ttl to whole seconds. A zero ttl leaves Max-Age unset.
func maxAge(ttl time.Duration) int {
	return int(ttl / time.Second)
}
