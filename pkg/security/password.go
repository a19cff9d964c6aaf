// Package security hashes staff passwords.
package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLen = 6
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordLen = 72
)

var (
	ErrPasswordMismatch = errors.New("password mismatch")
	ErrPasswordTooShort = &PolicyError{Reason: fmt.Sprintf("password must be at least %d characters", MinPasswordLen)}
	ErrPasswordTooLong  = &PolicyError{Reason: fmt.Sprintf("password must be at most %d bytes", MaxPasswordLen)}
)

// PolicyError reports a password the hasher refuses to store.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string { return e.Reason }

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher falls back to bcrypt.DefaultCost for out-of-range costs.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (b *bcryptHasher) Hash(password string) (string, error) {
	switch {
	case len([]rune(password)) < MinPasswordLen:
		return "", ErrPasswordTooShort
	case len(password) > MaxPasswordLen:
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare maps every bcrypt failure, including a malformed stored hash, to
// ErrPasswordMismatch so callers answer logins uniformly.
func (b *bcryptHasher) Compare(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}
