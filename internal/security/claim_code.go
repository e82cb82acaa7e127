package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrClaimCodeMismatch = errors.New("claim code does not match")

// HashClaimCode hashes a pickup claim code for storage.
func HashClaimCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash claim code: %w", err)
	}
	return string(hash), nil
}

// VerifyClaimCode compares a presented code with the stored hash.
func VerifyClaimCode(hash, code string) error {
	if hash == "" || code == "" {
		return ErrClaimCodeMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)); err != nil {
		return ErrClaimCodeMismatch
	}
	return nil
}
