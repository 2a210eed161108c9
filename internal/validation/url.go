package validation

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// DefaultSchemes are the schemes accepted when none are given.
var DefaultSchemes = []string{"http", "https"}

// ValidateURL checks that raw is an absolute URL with a host and one of the
// given schemes.
func ValidateURL(raw string, schemes ...string) error {
	if raw == "" {
		return ErrEmpty
	}
	if len(schemes) == 0 {
		schemes = DefaultSchemes
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if !slices.Contains(schemes, strings.ToLower(u.Scheme)) {
		return fmt.Errorf("unsupported url scheme %q (supported: %v)", u.Scheme, schemes)
	}

	if u.Host == "" {
		return fmt.Errorf("url %q has no host", raw)
	}

	return nil
}
