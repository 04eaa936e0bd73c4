package repository

import (
	"context"

	"account-service/internal/account/domain"
)

// Repository defines persistence for accounts.
//
// Lookups return domain.ErrNotFound for a missing account. Create returns
// domain.ErrAlreadyExists when the username is taken; uniqueness is enforced by
// the store itself so concurrent registrations cannot both succeed.
type Repository interface {
	Create(ctx context.Context, a *domain.Account) error
	// Update replaces bio, permissions and updated_at of an existing account.
	Update(ctx context.Context, a *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	Ping(ctx context.Context) error
}
