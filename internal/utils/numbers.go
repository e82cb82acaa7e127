package utils

import (
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	// no 0/O or 1/I so numbers survive being read aloud at the counter
	referenceAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	referenceSize     = 6
	claimCodeAlphabet = "0123456789"
	claimCodeSize     = 6
)

const (
	PrefixDocumentRequest = "DR"
	PrefixApplication     = "APP"
)

// ReferenceNumber builds a human readable record number such as
// DR-20261018-7KQ2MX.
func ReferenceNumber(prefix string, now time.Time) (string, error) {
	suffix, err := gonanoid.Generate(referenceAlphabet, referenceSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate reference suffix: %w", err)
	}
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix), nil
}

// ClaimCode returns the numeric code a resident presents at pickup
func ClaimCode() (string, error) {
	return gonanoid.Generate(claimCodeAlphabet, claimCodeSize)
}
