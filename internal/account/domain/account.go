package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is the core user entity. ID is assigned once by NewAccount and never
// changes; Username is unique across all accounts.
type Account struct {
	ID           string
	Username     string
	PasswordHash string
	Bio          string
	Permissions  []Permission
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewAccount returns a freshly registered account with a new ID, empty bio, and
// no permissions. passwordHash must already be a one-way hash.
func NewAccount(username, passwordHash string, now time.Time) *Account {
	now = now.UTC()
	return &Account{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		Bio:          "",
		Permissions:  []Permission{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// UpdateBio overwrites the bio. Callers validate length with ValidateBio first.
func (a *Account) UpdateBio(bio string, now time.Time) {
	a.Bio = bio
	a.UpdatedAt = now.UTC()
}

// HasPermission reports whether the account holds the named permission.
func (a *Account) HasPermission(name string) bool {
	for _, p := range a.Permissions {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Grant adds the permission if absent. Returns false when it was already held.
func (a *Account) Grant(name string, now time.Time) bool {
	if a.HasPermission(name) {
		return false
	}
	a.Permissions = append(a.Permissions, Permission{Name: name})
	a.UpdatedAt = now.UTC()
	return true
}

// Revoke removes the permission if present. Returns false when it was not held.
func (a *Account) Revoke(name string, now time.Time) bool {
	for i, p := range a.Permissions {
		if p.Name == name {
			a.Permissions = append(a.Permissions[:i:i], a.Permissions[i+1:]...)
			a.UpdatedAt = now.UTC()
			return true
		}
	}
	return false
}

// PermissionNames returns the held permission names in grant order. Never nil.
func (a *Account) PermissionNames() []string {
	out := make([]string, 0, len(a.Permissions))
	for _, p := range a.Permissions {
		out = append(out, p.Name)
	}
	return out
}

// Clone returns a deep copy so stores and callers never share the permission slice.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Permissions = make([]Permission, len(a.Permissions))
	copy(c.Permissions, a.Permissions)
	return &c
}
