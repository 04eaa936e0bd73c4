package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"account-service/internal/account/domain"
	"account-service/internal/account/repository"
	"account-service/internal/security"
)

// dummyPassword is hashed once at construction so Authenticate spends the same
// bcrypt work for unknown usernames as for known ones.
const dummyPassword = "dummyPassw0rd"

// AccountService implements registration, credential checks, profile edits and
// permission grants on top of a Repository.
type AccountService struct {
	repo      repository.Repository
	hasher    *security.Hasher
	dummyHash string
	now       func() time.Time
}

// NewAccountService returns an AccountService. It fails only if the hasher
// cannot produce the timing-equalization hash.
func NewAccountService(repo repository.Repository, hasher *security.Hasher) (*AccountService, error) {
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("account service: %w", err)
	}
	return &AccountService{repo: repo, hasher: hasher, dummyHash: dummy, now: time.Now}, nil
}

// Register validates the input and stores a new account with an empty bio and
// no permissions. Returns domain.ErrAlreadyExists if the username is taken.
func (s *AccountService) Register(ctx context.Context, username, password string) (*domain.Account, error) {
	if err := domain.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil, domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	a := domain.NewAccount(username, hash, s.now())
	// The store's unique constraint decides races the lookup above cannot see.
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Authenticate returns the account when password matches. Unknown usernames,
// malformed input and wrong passwords all yield domain.ErrInvalidCredentials.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*domain.Account, error) {
	if domain.ValidateUsername(username) != nil || domain.ValidatePassword(password) != nil {
		_ = s.hasher.Compare(s.dummyHash, password)
		return nil, domain.ErrInvalidCredentials
	}
	a, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = s.hasher.Compare(s.dummyHash, password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.hasher.Compare(a.PasswordHash, password); err != nil {
		if !errors.Is(err, security.ErrPasswordMismatch) {
			log.Printf("account: stored hash for %s: %v", a.ID, err)
		}
		return nil, domain.ErrInvalidCredentials
	}
	return a, nil
}

// Get returns the account by id or domain.ErrNotFound.
func (s *AccountService) Get(ctx context.Context, id string) (*domain.Account, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByUsername returns the account by username or domain.ErrNotFound.
func (s *AccountService) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return s.repo.GetByUsername(ctx, username)
}

// UpdateBio replaces the bio of an existing account.
func (s *AccountService) UpdateBio(ctx context.Context, id, bio string) error {
	if err := domain.ValidateBio(bio); err != nil {
		return err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	a.UpdateBio(bio, s.now())
	return s.repo.Update(ctx, a)
}

// GrantPermission adds name to the account. Granting a held permission is a
// no-op and does not write.
func (s *AccountService) GrantPermission(ctx context.Context, id, name string) (*domain.Account, error) {
	return s.changePermission(ctx, id, name, (*domain.Account).Grant)
}

// RevokePermission removes name from the account. Revoking an absent
// permission is a no-op and does not write.
func (s *AccountService) RevokePermission(ctx context.Context, id, name string) (*domain.Account, error) {
	return s.changePermission(ctx, id, name, (*domain.Account).Revoke)
}

func (s *AccountService) changePermission(ctx context.Context, id, name string, apply func(*domain.Account, string, time.Time) bool) (*domain.Account, error) {
	if err := domain.ValidatePermission(name); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !apply(a, name, s.now()) {
		return a, nil
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
