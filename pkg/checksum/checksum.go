// Package checksum computes content digests for the embedded static assets.
// The short fingerprint ends up in asset URLs so browsers can cache a file
// forever and still pick up a new version after a deploy.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// DefaultFingerprintLength is the number of hex characters kept in asset URLs.
const DefaultFingerprintLength = 12

// CalculateSHA256 calculates the SHA256 checksum of data from a reader
func CalculateSHA256(reader io.Reader) (string, error) {
	hasher := sha256.New()

	if _, err := io.Copy(hasher, reader); err != nil {
		return "", fmt.Errorf("failed to calculate checksum: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Fingerprint returns the first length hex characters of the SHA256 of the
// reader's content. A length outside 1..64 keeps the whole digest.
func Fingerprint(reader io.Reader, length int) (string, error) {
	sum, err := CalculateSHA256(reader)
	if err != nil {
		return "", err
	}
	if length <= 0 || length > len(sum) {
		return sum, nil
	}
	return sum[:length], nil
}
