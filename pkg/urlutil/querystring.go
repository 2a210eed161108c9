package urlutil

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/google/go-querystring/query"
)

// SearchFilters is the state of the package search page as carried in its URL.
// Filters holds the facet selections keyed by facet filter key ("kind", "org",
// "repo", "license", ...).
type SearchFilters struct {
	PageNumber        int                 `url:"page,omitempty" yaml:"page,omitempty"`
	TSQueryWeb        string              `url:"ts_query_web,omitempty" yaml:"ts_query_web,omitempty"`
	TSQuery           []string            `url:"ts_query,omitempty" yaml:"ts_query,omitempty"`
	Filters           map[string][]string `url:"-" yaml:"filters,omitempty"`
	Deprecated        bool                `url:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Operators         bool                `url:"operators,omitempty" yaml:"operators,omitempty"`
	VerifiedPublisher bool                `url:"verified_publisher,omitempty" yaml:"verified_publisher,omitempty"`
	Official          bool                `url:"official,omitempty" yaml:"official,omitempty"`
	Sort              string              `url:"sort,omitempty" yaml:"sort,omitempty"`
}

// reservedKeys are the query parameters that map onto named SearchFilters fields.
var reservedKeys = map[string]bool{
	"page":               true,
	"ts_query_web":       true,
	"ts_query":           true,
	"deprecated":         true,
	"operators":          true,
	"verified_publisher": true,
	"official":           true,
	"sort":               true,
}

// Page returns the 1-based page number.
func (f SearchFilters) Page() int {
	if f.PageNumber < 1 {
		return 1
	}
	return f.PageNumber
}

// Values encodes f as URL query values. Facet selections with reserved names
// and empty values are skipped, matching what ParseQueryString keeps.
func (f SearchFilters) Values() (url.Values, error) {
	v, err := query.Values(f)
	if err != nil {
		return nil, fmt.Errorf("encoding search filters: %w", err)
	}
	if qs, ok := v["ts_query"]; ok {
		v.Del("ts_query")
		for _, q := range qs {
			if q != "" {
				v.Add("ts_query", q)
			}
		}
	}
	keys := make([]string, 0, len(f.Filters))
	for k := range f.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if reservedKeys[k] {
			continue
		}
		for _, val := range f.Filters[k] {
			if val != "" {
				v.Add(k, val)
			}
		}
	}
	return v, nil
}

// PrepareQueryString returns the search page query string for f, including
// the leading '?'. An empty filter set yields "".
func PrepareQueryString(f SearchFilters) string {
	v, err := f.Values()
	if err != nil || len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// SearchURL returns the search page link for f.
func SearchURL(f SearchFilters) string {
	return "/packages/search" + PrepareQueryString(f)
}

// ParseQueryString decodes the search page query values back into filters.
// It is the inverse of PrepareQueryString: empty collections decode as nil.
func ParseQueryString(values url.Values) SearchFilters {
	var f SearchFilters
	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		f.PageNumber = page
	}
	f.TSQueryWeb = values.Get("ts_query_web")
	for _, q := range values["ts_query"] {
		if q != "" {
			f.TSQuery = append(f.TSQuery, q)
		}
	}
	f.Deprecated = parseBool(values.Get("deprecated"))
	f.Operators = parseBool(values.Get("operators"))
	f.VerifiedPublisher = parseBool(values.Get("verified_publisher"))
	f.Official = parseBool(values.Get("official"))
	f.Sort = values.Get("sort")

	for k, vals := range values {
		if reservedKeys[k] {
			continue
		}
		for _, val := range vals {
			if val == "" {
				continue
			}
			if f.Filters == nil {
				f.Filters = make(map[string][]string)
			}
			f.Filters[k] = append(f.Filters[k], val)
		}
	}
	return f
}

// ParseRawQuery parses a raw query string (with or without the leading '?').
func ParseRawQuery(raw string) (SearchFilters, error) {
	if len(raw) > 0 && raw[0] == '?' {
		raw = raw[1:]
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return SearchFilters{}, fmt.Errorf("invalid search query string: %w", err)
	}
	return ParseQueryString(values), nil
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
