package urlutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSampleQueries(t *testing.T) {
	qs := DefaultSampleQueries()
	require.Len(t, qs, 11)

	for _, q := range qs {
		assert.NotEmpty(t, q.Label)
		assert.True(t, strings.HasPrefix(q.URL(), "/packages/search?"), "query %q links to %q", q.Label, q.URL())
	}

	first := qs[0]
	assert.Equal(t, "OLM operators for databases", first.Label)
	assert.Equal(t, "/packages/search?kind=3&page=1&ts_query_web=database", first.URL())
}

func TestSampleQueries_Sample(t *testing.T) {
	qs := DefaultSampleQueries()

	got := qs.Sample(5)
	require.Len(t, got, 5)
	seen := map[string]bool{}
	for _, q := range got {
		assert.False(t, seen[q.Label], "duplicate sample %q", q.Label)
		seen[q.Label] = true
	}

	assert.Len(t, qs.Sample(50), len(qs), "n larger than list returns everything")
	assert.Empty(t, qs.Sample(0))
}

func TestLoadSampleQueries(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		qs, err := LoadSampleQueries("")
		require.NoError(t, err)
		assert.Len(t, qs, 11)
	})

	t.Run("custom file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "queries.yaml")
		content := `
- label: Kyverno policies
  filters:
    page: 1
    filters:
      kind: ["15"]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		qs, err := LoadSampleQueries(path)
		require.NoError(t, err)
		require.Len(t, qs, 1)
		assert.Equal(t, "/packages/search?kind=15&page=1", qs[0].URL())
	})

	t.Run("missing label", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "queries.yaml")
		require.NoError(t, os.WriteFile(path, []byte("- filters: {page: 1}\n"), 0o600))
		_, err := LoadSampleQueries(path)
		assert.ErrorContains(t, err, "no label")
	})

	t.Run("empty list", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "queries.yaml")
		require.NoError(t, os.WriteFile(path, []byte("[]\n"), 0o600))
		_, err := LoadSampleQueries(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSampleQueries(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
