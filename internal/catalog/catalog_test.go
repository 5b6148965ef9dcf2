package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/runner"
)

const scenarioList = "3.11.9\n3.12.3\n3.13.0\n3.13.0rc1\npypy3.10-7.3.15\n"

const realisticList = `Available versions:
  2.7.18
  3.9.19
  3.10.14
  3.11.9
  3.12.3
  3.12.3
  3.13.0a1
  3.13.0
  3.13t-dev
  3.14-dev
  anaconda3-2024.02-1
  graalpy-24.0.0
  miniforge3-24.3.0-0
  pypy3.10-7.3.15
  stackless-3.7.5
`

func newCatalog(t *testing.T, code int, out string) (*Catalog, *runner.Fake) {
	t.Helper()
	f := runner.NewFake(runner.NewEnv())
	f.On("pyenv install --list", code, out)
	return New(f), f
}

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want Kind
	}{
		{"3.12.3", Stable},
		{"  3.12.3  ", Stable},
		{"2.7.18", Stable},
		{"3.13.0rc1", Prerelease},
		{"3.13.0a1", Prerelease},
		{"3.13.0b3", Prerelease},
		{"3.14-dev", Prerelease},
		{"3.13t-dev", Prerelease},
		{"3.13.0t", Prerelease},
		{"3.12", Prerelease},
		{"pypy3.10-7.3.15", NonCPython},
		{"miniforge3-24.3.0-0", NonCPython},
		{"", NonCPython},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.raw))
		})
	}
}

func TestListStable_Scenario(t *testing.T) {
	c, _ := newCatalog(t, 0, scenarioList)

	view, err := c.ListStable(t.Context(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"3.13.0", "3.12.3", "3.11.9"}, view.Strings())
}

func TestListStable_Properties(t *testing.T) {
	c, _ := newCatalog(t, 0, realisticList)

	view, err := c.ListStable(t.Context(), 0)
	require.NoError(t, err)

	seen := map[string]bool{}
	for i, e := range view.Entries {
		assert.Equal(t, Stable, Classify(e.Raw), "%s must be stable", e.Raw)
		assert.False(t, seen[e.ID()], "duplicate %s", e.ID())
		seen[e.ID()] = true
		if i > 0 {
			assert.Equal(t, 1, view.Entries[i-1].Compare(e), "must be strictly descending at %d", i)
		}
	}
	assert.Equal(t, []string{"3.13.0", "3.12.3", "3.11.9", "3.10.14", "3.9.19", "2.7.18"}, view.Strings())
}

func TestListStable_NumericOrderNotLexical(t *testing.T) {
	c, _ := newCatalog(t, 0, "3.9.19\n3.10.2\n3.10.14\n")

	view, err := c.ListStable(t.Context(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"3.10.14", "3.10.2", "3.9.19"}, view.Strings())
}

func TestListStable_Unavailable(t *testing.T) {
	tests := []struct {
		name string
		code int
		out  string
	}{
		{name: "non-zero exit", code: 1, out: scenarioList},
		{name: "no stable lines", code: 0, out: "Available versions:\n  pypy3.10-7.3.15\n  3.14-dev\n"},
		{name: "empty output", code: 0, out: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newCatalog(t, tt.code, tt.out)
			_, err := c.ListStable(t.Context(), 3)
			assert.True(t, errors.Is(err, errors.ErrCatalogUnavailable), "got %v", err)
		})
	}
}

func TestResolve(t *testing.T) {
	c, f := newCatalog(t, 0, realisticList)
	view, err := c.ListStable(t.Context(), 3)
	require.NoError(t, err)
	f.Reset()

	tests := []struct {
		name      string
		choice    string
		want      string
		wantErr   error
		wantQuery bool
	}{
		{name: "index", choice: "2", want: "3.12.3"},
		{name: "index with spaces", choice: " 1 ", want: "3.13.0"},
		{name: "literal outside view", choice: "3.9.19", want: "3.9.19", wantQuery: true},
		{name: "literal in view", choice: "3.11.9", want: "3.11.9", wantQuery: true},
		{name: "out of range number", choice: "7", wantErr: errors.ErrVersionNotFound},
		{name: "zero", choice: "0", wantErr: errors.ErrVersionNotFound},
		{name: "unknown literal", choice: "3.12.99", wantErr: errors.ErrVersionNotFound, wantQuery: true},
		{name: "prerelease literal", choice: "3.13.0rc1", wantErr: errors.ErrVersionNotFound},
		{name: "garbage", choice: "latest", wantErr: errors.ErrVersionNotFound},
		{name: "empty", choice: "", wantErr: errors.ErrVersionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.Reset()
			got, err := c.Resolve(t.Context(), view, tt.choice)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got.Raw)
			}
			assert.Equal(t, tt.wantQuery, f.Count("pyenv install --list") == 1)
		})
	}
}

func TestResolve_IndexAndLiteralRoundTrip(t *testing.T) {
	c, _ := newCatalog(t, 0, scenarioList)
	view, err := c.ListStable(t.Context(), 3)
	require.NoError(t, err)

	for i, raw := range view.Strings() {
		byIndex, err := c.Resolve(t.Context(), view, string(rune('1'+i)))
		require.NoError(t, err)
		byLiteral, err := c.Resolve(t.Context(), view, raw)
		require.NoError(t, err)

		assert.True(t, byIndex.SameRelease(byLiteral), "%s: index and literal disagree", raw)
		assert.Equal(t, byIndex, byLiteral)
	}
}

func TestResolve_CatalogDownDuringLiteral(t *testing.T) {
	c, f := newCatalog(t, 0, scenarioList)
	view, err := c.ListStable(t.Context(), 3)
	require.NoError(t, err)

	f.On("pyenv install --list", 2, "")
	_, err = c.Resolve(t.Context(), view, "3.9.1")
	assert.True(t, errors.Is(err, errors.ErrCatalogUnavailable))

	// Index lookups do not need the catalog.
	e, err := c.Resolve(t.Context(), view, "3")
	require.NoError(t, err)
	assert.Equal(t, "3.11.9", e.Raw)
}

func TestAll(t *testing.T) {
	c, _ := newCatalog(t, 0, scenarioList)

	all, err := c.All(t.Context())
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, Classified{Raw: "3.13.0rc1", Kind: Prerelease}, all[3])
	assert.Equal(t, NonCPython, all[4].Kind)
}

func TestEntryFields(t *testing.T) {
	e, ok := ParseStable("3.12.3")
	require.True(t, ok)
	assert.Equal(t, Entry{Raw: "3.12.3", Major: 3, Minor: 12, Patch: 3, Kind: Stable}, e)
	assert.Equal(t, "3.12.3", e.ID())

	_, ok = ParseStable("3.12.3rc1")
	assert.False(t, ok)
}
