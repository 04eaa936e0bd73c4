package repository

import (
	"context"
	"sync"

	"account-service/internal/account/domain"
)

// MemoryRepository keeps accounts in process memory. Each instance is
// independent; stored and returned values are copies.
type MemoryRepository struct {
	mu         sync.RWMutex
	byID       map[string]*domain.Account
	byUsername map[string]string
}

// NewMemoryRepository returns an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[string]*domain.Account),
		byUsername: make(map[string]string),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUsername[a.Username]; ok {
		return domain.ErrAlreadyExists
	}
	if _, ok := r.byID[a.ID]; ok {
		return domain.ErrAlreadyExists
	}
	r.byID[a.ID] = a.Clone()
	r.byUsername[a.Username] = a.ID
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[a.ID]
	if !ok {
		return domain.ErrNotFound
	}
	next := cur.Clone()
	next.Bio = a.Bio
	next.Permissions = a.Clone().Permissions
	next.UpdatedAt = a.UpdatedAt
	r.byID[a.ID] = next
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a.Clone(), nil
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r.byID[id].Clone(), nil
}

// Ping always succeeds.
func (r *MemoryRepository) Ping(ctx context.Context) error { return nil }
