package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier checks the admin password against a bcrypt hash, so the
// plain value from the configuration file is not kept in memory.
type PasswordVerifier struct {
	hash []byte
}

// NewPasswordVerifier hashes password with the default cost.
func NewPasswordVerifier(password string) (*PasswordVerifier, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &PasswordVerifier{hash: hash}, nil
}

// NewPasswordVerifierFromHash accepts a stored bcrypt hash.
func NewPasswordVerifierFromHash(hash string) (*PasswordVerifier, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid bcrypt hash: %w", err)
	}
	return &PasswordVerifier{hash: []byte(hash)}, nil
}

// Verify implements shell.Verifier.
func (v *PasswordVerifier) Verify(password string) bool {
	return bcrypt.CompareHashAndPassword(v.hash, []byte(password)) == nil
}
