package password

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinLength is the minimum number of characters a password must have.
	MinLength = 6
	// MaxBytes is the longest password bcrypt accepts.
	MaxBytes = 72
)

var (
	// ErrTooWeak is returned by Validate for passwords that do not meet the strength rules.
	ErrTooWeak = errors.New("password must have at least 6 characters with one digit, one lower case and one upper case letter")
	// ErrTooLong is returned by Validate for passwords longer than MaxBytes.
	ErrTooLong = errors.New("password must not be longer than 72 bytes")
)

// Hasher turns plaintext passwords into digests and verifies them.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(digest, password string) bool
}

// Bcrypt implements Hasher with bcrypt.
type Bcrypt struct {
	cost int
}

// NewBcrypt returns a bcrypt hasher using the given work factor.
// Out of range costs fall back to bcrypt.DefaultCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

func (b *Bcrypt) Verify(digest, password string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// Validate checks the password strength rules: at least MinLength characters
// with at least one digit, one lower case and one upper case letter.
// Passwords over MaxBytes bytes are rejected since bcrypt cannot hash them.
func Validate(password string) error {
	if len(password) > MaxBytes {
		return ErrTooLong
	}
	var digit, lower, upper bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		}
	}
	if len([]rune(password)) < MinLength || !digit || !lower || !upper {
		return ErrTooWeak
	}
	return nil
}
