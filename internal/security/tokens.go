package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is the base error for every token verification failure.
	// The more specific errors below all satisfy errors.Is(err, ErrInvalidToken).
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned once the token's expiry instant has been reached.
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrInvalidToken)
	// ErrTokenSignature is returned when the signature does not verify against the
	// secret of the verification path, or the token is not HMAC-signed.
	ErrTokenSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	// ErrTokenMalformed is returned when the token cannot be decoded or its claims
	// do not describe a token of the expected class.
	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrInvalidToken)
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// claims is the JWT body for both token classes.
type claims struct {
	jwt.RegisteredClaims
	Username    string   `json:"username"`
	Permissions []string `json:"permissions"`
	TokenType   string   `json:"typ"`
}

// Payload is the verified content of an access or refresh token.
type Payload struct {
	Subject     string
	Username    string
	Permissions []string
	ExpiresAt   time.Time
}

// TokenPair is the result of Issue: one access and one refresh token with their
// absolute expiry instants.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Option configures a TokenProvider.
type Option func(*TokenProvider)

// WithClock replaces time.Now for issuing and verifying tokens.
func WithClock(now func() time.Time) Option {
	return func(p *TokenProvider) {
		if now != nil {
			p.now = now
		}
	}
}

// TokenProvider issues and verifies HS256 access and refresh tokens. The two
// token classes are signed with distinct secrets, so a leaked access secret
// cannot be used to mint refresh tokens.
type TokenProvider struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenProvider returns a TokenProvider. issuer is written to and required on
// every token when non-empty.
func NewTokenProvider(accessSecret, refreshSecret []byte, issuer string, accessTTL, refreshTTL time.Duration, opts ...Option) *TokenProvider {
	p := &TokenProvider{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AccessTTL returns the configured access token lifetime.
func (p *TokenProvider) AccessTTL() time.Duration { return p.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (p *TokenProvider) RefreshTTL() time.Duration { return p.refreshTTL }

// Issue signs a fresh access/refresh pair for the account. permissions is
// copied into both tokens as a snapshot.
func (p *TokenProvider) Issue(accountID, username string, permissions []string) (*TokenPair, error) {
	// exp is a NumericDate in whole seconds; the reported expiry must match it.
	now := p.now().UTC().Truncate(time.Second)
	accessExp := now.Add(p.accessTTL)
	refreshExp := now.Add(p.refreshTTL)

	access, err := p.sign(p.accessSecret, p.newClaims(accountID, username, permissions, tokenTypeAccess, now, accessExp))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := p.sign(p.refreshSecret, p.newClaims(accountID, username, permissions, tokenTypeRefresh, now, refreshExp))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyAccess validates an access token's signature, class, and expiry.
func (p *TokenProvider) VerifyAccess(token string) (*Payload, error) {
	return p.verify(token, p.accessSecret, tokenTypeAccess)
}

// VerifyRefresh validates a refresh token's signature, class, and expiry.
func (p *TokenProvider) VerifyRefresh(token string) (*Payload, error) {
	return p.verify(token, p.refreshSecret, tokenTypeRefresh)
}

func (p *TokenProvider) newClaims(accountID, username string, permissions []string, tokenType string, now, exp time.Time) claims {
	perms := make([]string, len(permissions))
	copy(perms, permissions)
	return claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   accountID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Username:    username,
		Permissions: perms,
		TokenType:   tokenType,
	}
}

func (p *TokenProvider) sign(secret []byte, c claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
}

func (p *TokenProvider) verify(tokenString string, secret []byte, wantType string) (*Payload, error) {
	if tokenString == "" {
		return nil, ErrTokenMalformed
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
		jwt.WithExpirationRequired(),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, classifyParseError(err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if c.Subject == "" || c.TokenType != wantType || c.ExpiresAt == nil {
		return nil, ErrTokenMalformed
	}
	perms := c.Permissions
	if perms == nil {
		perms = []string{}
	}
	return &Payload{
		Subject:     c.Subject,
		Username:    c.Username,
		Permissions: perms,
		ExpiresAt:   c.ExpiresAt.Time,
	}, nil
}

func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrInvalidToken
	}
}
