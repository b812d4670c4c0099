package authutil

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("expected bcrypt hash, got %q", hash)
	}
	if !CheckPassword("secret1", hash) {
		t.Error("expected CheckPassword to accept the correct password")
	}
	if CheckPassword("secret2", hash) {
		t.Error("expected CheckPassword to reject a wrong password")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("same-password")
	if err != nil {
		t.Fatal(err)
	}
	h2, err := HashPassword("same-password")
	if err != nil {
		t.Fatal(err)
	}
	if h1 == h2 {
		t.Error("expected different hashes for the same password")
	}
}

func TestCheckPassword_EmptyHash(t *testing.T) {
	if CheckPassword("anything", "") {
		t.Error("empty hash must never match")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"", ErrPasswordRequired},
		{"12345", ErrPasswordTooShort},
		{"123456", nil},
		{"ñandú!", nil}, // six runes
		{strings.Repeat("a", 72), nil},
		{strings.Repeat("a", 73), ErrPasswordTooLong},
		{strings.Repeat("ñ", 37), ErrPasswordTooLong}, // 37 runes, 74 bytes
	}
	for _, tt := range tests {
		if got := ValidatePassword(tt.in); got != tt.want {
			t.Errorf("ValidatePassword(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPasswordRules(t *testing.T) {
	if !strings.Contains(PasswordRules(), "6") {
		t.Error("PasswordRules should mention the minimum length")
	}
	if !strings.Contains(PasswordRules(), "72") {
		t.Error("PasswordRules should mention the maximum length")
	}
}

func TestHashPassword_LongestAccepted(t *testing.T) {
	pw := strings.Repeat("ñ", 36) // 72 bytes
	if err := ValidatePassword(pw); err != nil {
		t.Fatalf("ValidatePassword: %v", err)
	}
	hash, err := HashPassword(pw)
	if err != nil {
		t.Fatalf("HashPassword rejected a password ValidatePassword accepted: %v", err)
	}
	if !CheckPassword(pw, hash) {
		t.Error("expected CheckPassword to accept the password")
	}
}

func TestCheckNoUser(t *testing.T) {
	for _, pw := range []string{"", "secret1", "liderplan-no-such-user"} {
		if CheckNoUser(pw) {
			t.Errorf("CheckNoUser(%q) = true, want false", pw)
		}
	}
	cost, err := bcrypt.Cost(dummyHash)
	if err != nil {
		t.Fatalf("dummy hash is not a bcrypt hash: %v", err)
	}
	if cost != BcryptCost {
		t.Errorf("dummy hash cost = %d, want %d so unknown emails cost as much as wrong passwords", cost, BcryptCost)
	}
}
