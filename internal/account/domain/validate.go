package domain

import (
	"regexp"
	"unicode/utf8"
)

const (
	UsernameMinLen = 3
	UsernameMaxLen = 10
	PasswordMinLen = 6
	PasswordMaxLen = 20
	BioMaxLen      = 255
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateUsername checks length and the [a-zA-Z0-9_] charset.
func ValidateUsername(username string) error {
	if n := len(username); n < UsernameMinLen || n > UsernameMaxLen {
		return &ValidationError{Field: "username", Reason: "must be between 3 and 10 characters"}
	}
	if !usernamePattern.MatchString(username) {
		return &ValidationError{Field: "username", Reason: "may contain only letters, digits and underscores"}
	}
	return nil
}

// ValidatePassword requires ASCII letters and digits only, with at least one of each.
func ValidatePassword(password string) error {
	if n := len(password); n < PasswordMinLen || n > PasswordMaxLen {
		return &ValidationError{Field: "password", Reason: "must be between 6 and 20 characters"}
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		default:
			return &ValidationError{Field: "password", Reason: "may contain only letters and digits"}
		}
	}
	if !hasLetter || !hasDigit {
		return &ValidationError{Field: "password", Reason: "must contain at least one letter and one digit"}
	}
	return nil
}

// ValidateBio caps the bio at BioMaxLen characters. Empty is allowed.
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > BioMaxLen {
		return &ValidationError{Field: "bio", Reason: "must be at most 255 characters"}
	}
	return nil
}

// ValidatePermission rejects names outside the catalog.
func ValidatePermission(name string) error {
	if !IsKnownPermission(name) {
		return ErrUnknownPermission
	}
	return nil
}
