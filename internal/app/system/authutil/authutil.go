// Package authutil holds password hashing and password policy helpers.
package authutil

import (
	"errors"
	"sync"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 12

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 6

// MaxPasswordBytes is the longest password bcrypt will hash.
const MaxPasswordBytes = 72

var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
	ErrPasswordRequired = errors.New("password is required")
)

// HashPassword returns the bcrypt hash of a plaintext password.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether plain matches the stored hash.
// An empty hash never matches.
func CheckPassword(plain, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// CheckNoUser does the same bcrypt work as CheckPassword against a fixed
// hash and always reports false. Login calls it when the email is unknown
// so both failures take about as long.
func CheckNoUser(plain string) bool {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("liderplan-no-such-user"), BcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
	return false
}

// ValidatePassword enforces the password policy.
func ValidatePassword(plain string) error {
	if plain == "" {
		return ErrPasswordRequired
	}
	if utf8.RuneCountInString(plain) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(plain) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// PasswordRules describes the policy for display in error messages.
func PasswordRules() string {
	return "Password must be at least 6 characters long and at most 72 bytes."
}
