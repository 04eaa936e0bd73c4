package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewAccount(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	a := NewAccount("alice", "hash", now)
	if a.ID == "" {
		t.Fatal("ID empty")
	}
	if a.Username != "alice" || a.PasswordHash != "hash" || a.Bio != "" {
		t.Errorf("unexpected account %+v", a)
	}
	if a.Permissions == nil || len(a.Permissions) != 0 {
		t.Errorf("Permissions = %#v, want empty", a.Permissions)
	}
	if a.CreatedAt.Location() != time.UTC {
		t.Errorf("CreatedAt not UTC: %v", a.CreatedAt)
	}
	b := NewAccount("alice", "hash", now)
	if a.ID == b.ID {
		t.Error("two accounts got the same ID")
	}
}

func TestAccount_GrantRevoke(t *testing.T) {
	now := time.Now()
	a := NewAccount("alice", "hash", now)

	if !a.Grant(PermissionReadPermissions, now) {
		t.Fatal("first Grant should report a change")
	}
	if a.Grant(PermissionReadPermissions, now) {
		t.Fatal("second Grant should be a no-op")
	}
	if got := a.PermissionNames(); len(got) != 1 {
		t.Fatalf("PermissionNames = %v, want one entry", got)
	}
	a.Grant(PermissionManagePermissions, now)
	if got := a.PermissionNames(); got[0] != PermissionReadPermissions || got[1] != PermissionManagePermissions {
		t.Errorf("PermissionNames = %v, want grant order", got)
	}

	if !a.Revoke(PermissionReadPermissions, now) {
		t.Fatal("Revoke of held permission should report a change")
	}
	if a.Revoke(PermissionReadPermissions, now) {
		t.Fatal("Revoke of absent permission should be a no-op")
	}
	if a.HasPermission(PermissionReadPermissions) {
		t.Error("permission still held after Revoke")
	}
	if !a.HasPermission(PermissionManagePermissions) {
		t.Error("unrelated permission lost on Revoke")
	}
}

func TestAccount_CloneIsDeep(t *testing.T) {
	a := NewAccount("alice", "hash", time.Now())
	a.Grant(PermissionReadPermissions, time.Now())
	c := a.Clone()
	c.Permissions[0].Name = "changed"
	if a.Permissions[0].Name != PermissionReadPermissions {
		t.Error("Clone shares permission slice with original")
	}
	var nilAcc *Account
	if nilAcc.Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"alice", true},
		{"a_b_1", true},
		{"abc", true},
		{"abcdefghij", true},
		{"ab", false},
		{"abcdefghijk", false},
		{"bad name", false},
		{"bad-name", false},
		{"", false},
	}
	for _, tt := range tests {
		err := ValidateUsername(tt.in)
		if tt.ok && err != nil {
			t.Errorf("ValidateUsername(%q) = %v, want nil", tt.in, err)
		}
		if !tt.ok && !errors.Is(err, ErrValidation) {
			t.Errorf("ValidateUsername(%q) = %v, want ErrValidation", tt.in, err)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"Passw0rd", true},
		{"abc123", true},
		{"abcdefghij1234567890", true},
		{"abc12", false},
		{"abcdefghij12345678901", false},
		{"abcdefgh", false},
		{"12345678", false},
		{"pass w0rd", false},
		{"passw0rd!", false},
	}
	for _, tt := range tests {
		err := ValidatePassword(tt.in)
		if tt.ok && err != nil {
			t.Errorf("ValidatePassword(%q) = %v, want nil", tt.in, err)
		}
		if !tt.ok && !errors.Is(err, ErrValidation) {
			t.Errorf("ValidatePassword(%q) = %v, want ErrValidation", tt.in, err)
		}
	}
}

func TestValidateBio(t *testing.T) {
	if err := ValidateBio(""); err != nil {
		t.Errorf("empty bio: %v", err)
	}
	if err := ValidateBio(strings.Repeat("x", 255)); err != nil {
		t.Errorf("255 chars: %v", err)
	}
	err := ValidateBio(strings.Repeat("x", 256))
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "bio" {
		t.Errorf("256 chars: got %v, want bio ValidationError", err)
	}
}

func TestValidatePermission(t *testing.T) {
	for _, name := range KnownPermissions() {
		if err := ValidatePermission(name); err != nil {
			t.Errorf("ValidatePermission(%q) = %v", name, err)
		}
	}
	err := ValidatePermission("launch_missiles")
	if !errors.Is(err, ErrUnknownPermission) || !errors.Is(err, ErrValidation) {
		t.Errorf("unknown permission: got %v", err)
	}
}
