package security

import "time"

// Test secrets for unit tests only. Do not use in production.
const (
	testAccessSecret  = "test-access-secret"
	testRefreshSecret = "test-refresh-secret"
	testIssuer        = "test-issuer"
)

// NewTestTokenProvider returns a TokenProvider with fixed test secrets, a 15m
// access TTL, and a 24h refresh TTL. For unit tests only.
func NewTestTokenProvider(opts ...Option) *TokenProvider {
	return NewTokenProvider([]byte(testAccessSecret), []byte(testRefreshSecret), testIssuer, 15*time.Minute, 24*time.Hour, opts...)
}
