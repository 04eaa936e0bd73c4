package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyExists is returned when a username is already taken.
	ErrAlreadyExists = errors.New("account already exists")
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("account not found")
	// ErrInvalidCredentials is returned for a wrong password and for an unknown
	// username alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation is the base for every input validation failure.
	ErrValidation = errors.New("validation failed")
	// ErrUnknownPermission is returned when a permission name is not in the catalog.
	ErrUnknownPermission = fmt.Errorf("%w: unknown permission", ErrValidation)
)

// ValidationError describes the first field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
