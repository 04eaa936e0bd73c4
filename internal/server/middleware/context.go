package middleware

import "context"

type contextKey struct{ name string }

var (
	identityKey = contextKey{"identity"}
	clientIPKey = contextKey{"client_ip"}
)

// Identity is the caller established from a verified access token.
type Identity struct {
	AccountID   string
	Username    string
	Permissions []string
}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity returns the Identity from context and true if set.
func GetIdentity(ctx context.Context) (Identity, bool) {
	v, ok := ctx.Value(identityKey).(Identity)
	return v, ok
}

// GetAccountID returns the authenticated account id from context and true if set.
func GetAccountID(ctx context.Context) (string, bool) {
	id, ok := GetIdentity(ctx)
	if !ok || id.AccountID == "" {
		return "", false
	}
	return id.AccountID, true
}

// WithClientIP returns a context carrying the caller's IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the caller's IP from context, or "" if unknown.
func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey).(string)
	return v
}
