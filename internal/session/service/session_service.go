package service

import (
	"context"
	"errors"

	"account-service/internal/account/domain"
	"account-service/internal/security"
)

// ErrInvalidRefreshToken is returned when a refresh token does not verify or
// its account no longer exists.
var ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

// Accounts is the minimal account service needed by the session service.
type Accounts interface {
	Register(ctx context.Context, username, password string) (*domain.Account, error)
	Authenticate(ctx context.Context, username, password string) (*domain.Account, error)
	Get(ctx context.Context, id string) (*domain.Account, error)
}

// Result is the outcome of Register, Login or Refresh: the account as stored
// plus a freshly issued token pair.
type Result struct {
	Account *domain.Account
	Tokens  *security.TokenPair
}

// SessionService turns account operations into issued token pairs. Sessions
// are stateless; nothing is stored per token.
type SessionService struct {
	accounts Accounts
	tokens   *security.TokenProvider
}

// NewSessionService returns a SessionService with the given dependencies.
func NewSessionService(accounts Accounts, tokens *security.TokenProvider) *SessionService {
	return &SessionService{accounts: accounts, tokens: tokens}
}

// Register creates the account and issues its first token pair.
func (s *SessionService) Register(ctx context.Context, username, password string) (*Result, error) {
	a, err := s.accounts.Register(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.issue(a)
}

// Login authenticates and issues a token pair. Any credential failure is
// domain.ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, username, password string) (*Result, error) {
	a, err := s.accounts.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return s.issue(a)
}

// Refresh verifies refreshToken, reloads the account so the new tokens carry
// its current permissions, and issues a new pair.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (*Result, error) {
	payload, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, errors.Join(ErrInvalidRefreshToken, err)
	}
	a, err := s.accounts.Get(ctx, payload.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}
	return s.issue(a)
}

// Tokens exposes the provider for cookie lifetimes and access-token checks.
func (s *SessionService) Tokens() *security.TokenProvider { return s.tokens }

func (s *SessionService) issue(a *domain.Account) (*Result, error) {
	pair, err := s.tokens.Issue(a.ID, a.Username, a.PermissionNames())
	if err != nil {
		return nil, err
	}
	return &Result{Account: a, Tokens: pair}, nil
}
