package urlutil

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed data/sample_queries.yaml
var defaultSampleQueries []byte

// SampleQuery is a canned search shown on the home and empty search pages.
type SampleQuery struct {
	Label   string        `yaml:"label"`
	Filters SearchFilters `yaml:"filters"`
}

// URL returns the search page link of the query.
func (q SampleQuery) URL() string {
	return SearchURL(q.Filters)
}

// SampleQueries is a fixed list of sample queries.
type SampleQueries []SampleQuery

// DefaultSampleQueries returns the built-in list.
func DefaultSampleQueries() SampleQueries {
	qs, err := parseSampleQueries(defaultSampleQueries)
	if err != nil {
		panic(fmt.Sprintf("embedded sample queries are invalid: %v", err))
	}
	return qs
}

// LoadSampleQueries reads a YAML list of sample queries from path. An empty
// path returns the built-in list.
func LoadSampleQueries(path string) (SampleQueries, error) {
	if path == "" {
		return DefaultSampleQueries(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading sample queries: %w", err)
	}
	qs, err := parseSampleQueries(data)
	if err != nil {
		return nil, fmt.Errorf("parsing sample queries %s: %w", path, err)
	}
	return qs, nil
}

func parseSampleQueries(data []byte) (SampleQueries, error) {
	var qs SampleQueries
	if err := yaml.Unmarshal(data, &qs); err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("no sample queries defined")
	}
	for i, q := range qs {
		if q.Label == "" {
			return nil, fmt.Errorf("sample query %d has no label", i)
		}
	}
	return qs, nil
}

// Sample returns n distinct queries in random order. When n exceeds the list
// size every query is returned.
func (qs SampleQueries) Sample(n int) SampleQueries {
	if n <= 0 {
		return nil
	}
	if n > len(qs) {
		n = len(qs)
	}
	out := make(SampleQueries, 0, n)
	for _, i := range rand.Perm(len(qs))[:n] {
		out = append(out, qs[i])
	}
	return out
}
