// Package validation checks control panel form input before it is sent to
// the hub API, so obviously bad values are rejected with a form message
// instead of a round trip.
package validation

import (
	"errors"
	"fmt"
	"regexp"
)

// MaxNameLength is the longest repository or organization name accepted.
const MaxNameLength = 100

var namePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// ErrEmpty is returned for a required value that is blank.
var ErrEmpty = errors.New("value cannot be empty")

// ValidateName validates a repository or organization name. Names are used
// in URLs, so only lowercase letters, numbers and hyphens are allowed.
func ValidateName(name string) error {
	if name == "" {
		return ErrEmpty
	}

	if len(name) > MaxNameLength {
		return fmt.Errorf("name exceeds maximum length of %d characters", MaxNameLength)
	}

	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid name %q: only lowercase letters, numbers and hyphens are allowed", name)
	}

	return nil
}
