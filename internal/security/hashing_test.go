package security

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndCompare(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash, err := h.Hash("Passw0rd")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" {
		t.Fatal("Hash returned empty")
	}
	if hash == "Passw0rd" {
		t.Fatal("Hash returned the plaintext")
	}
	if err := h.Compare(hash, "Passw0rd"); err != nil {
		t.Fatalf("Compare: %v", err)
	}
}

func TestHasher_CompareWrongPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash, _ := h.Hash("Passw0rd")
	if err := h.Compare(hash, "wrong1"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("Compare with wrong password: want ErrPasswordMismatch, got %v", err)
	}
}

func TestHasher_Salted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	a, _ := h.Hash("Passw0rd")
	b, _ := h.Hash("Passw0rd")
	if a == b {
		t.Error("two hashes of the same password should differ")
	}
}

func TestHasher_CompareInvalidHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	err := h.Compare("not-a-bcrypt-hash", "Passw0rd")
	if err == nil || errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("Compare against malformed hash: want a format error, got %v", err)
	}
}

func TestHasher_Cost(t *testing.T) {
	testCases := []struct {
		in, want int
	}{
		{12, 12},
		{bcrypt.MinCost, bcrypt.MinCost},
		{0, bcrypt.DefaultCost},
		{-3, bcrypt.DefaultCost},
		{2, bcrypt.MinCost},
		{99, bcrypt.MaxCost},
	}
	for _, tc := range testCases {
		if got := NewHasher(tc.in).Cost(); got != tc.want {
			t.Errorf("NewHasher(%d).Cost = %d, want %d", tc.in, got, tc.want)
		}
	}
}
