package urlutil

import (
	"sort"

	version "github.com/hashicorp/go-version"
)

// SortVersions returns the given versions ordered newest first. Strings that
// are not valid versions are placed after all valid ones, in lexical order.
func SortVersions(versions []string) []string {
	type entry struct {
		raw    string
		parsed *version.Version
	}
	entries := make([]entry, 0, len(versions))
	for _, v := range versions {
		p, err := version.NewVersion(v)
		if err != nil {
			p = nil
		}
		entries = append(entries, entry{raw: v, parsed: p})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		switch {
		case a.parsed != nil && b.parsed != nil:
			return a.parsed.GreaterThan(b.parsed)
		case a.parsed != nil:
			return true
		case b.parsed != nil:
			return false
		default:
			return a.raw < b.raw
		}
	})

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.raw
	}
	return out
}

// IsNewer reports whether candidate is a strictly greater version than current.
// Unparsable input is never newer.
func IsNewer(candidate, current string) bool {
	c, err := version.NewVersion(candidate)
	if err != nil {
		return false
	}
	cur, err := version.NewVersion(current)
	if err != nil {
		return true
	}
	return c.GreaterThan(cur)
}
