package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/pyup/internal/catalog"
	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/runner"
)

const versionsListing = "Available versions:\n  3.11.9\n  3.12.4\n  3.13.0rc1\n  pypy3.10-7.3.16\n"

func versionsFake() *runner.Fake {
	f := pyenvFake()
	f.On("pyenv install --list", 0, versionsListing)
	f.On("pyenv versions --bare", 0, "3.12.4\n")
	return f
}

func resetVersionsFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		versionsLimit, versionsAll, versionsJSON, versionsPick = 0, false, false, false
	})
}

func TestRunVersions_JSON(t *testing.T) {
	resetVersionsFlags(t)
	withRunner(t, versionsFake())
	versionsJSON = true

	c, out := testCommand(t)
	require.NoError(t, runVersions(c, nil))

	var got []versionOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, []versionOutput{
		{Version: "3.12.4", Kind: catalog.Stable, Installed: true},
		{Version: "3.11.9", Kind: catalog.Stable, Installed: false},
	}, got)
}

func TestRunVersions_All(t *testing.T) {
	resetVersionsFlags(t)
	withRunner(t, versionsFake())
	versionsAll = true
	versionsJSON = true

	c, out := testCommand(t)
	require.NoError(t, runVersions(c, nil))

	var got []versionOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 4)
	assert.Equal(t, catalog.Prerelease, got[2].Kind)
	assert.Equal(t, catalog.NonCPython, got[3].Kind)
}

func TestRunVersions_Table(t *testing.T) {
	resetVersionsFlags(t)
	withRunner(t, versionsFake())

	c, out := testCommand(t)
	require.NoError(t, runVersions(c, nil))

	assert.Contains(t, out.String(), "  1)  3.12.4")
	assert.Contains(t, out.String(), "  2)  3.11.9")
	assert.NotContains(t, out.String(), "rc1")
}

func TestRunVersions_Pick(t *testing.T) {
	resetVersionsFlags(t)
	withRunner(t, versionsFake())
	versionsPick = true

	orig := pickVersion
	defer func() { pickVersion = orig }()
	var gotInstalled map[string]bool
	pickVersion = func(entries []catalog.Entry, installed map[string]bool) (catalog.Entry, error) {
		gotInstalled = installed
		return entries[1], nil
	}

	c, out := testCommand(t)
	require.NoError(t, runVersions(c, nil))

	assert.Equal(t, "3.11.9\n", out.String())
	assert.Equal(t, map[string]bool{"3.12.4": true}, gotInstalled)
}

func TestRunVersions_PyenvMissing(t *testing.T) {
	resetVersionsFlags(t)
	withRunner(t, runner.NewFake(runner.NewEnv("PATH=/usr/bin")))

	c, _ := testCommand(t)
	err := runVersions(c, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrToolMissing))
}

func TestRunVersions_CatalogUnavailable(t *testing.T) {
	resetVersionsFlags(t)
	f := pyenvFake()
	f.On("pyenv install --list", 1, "")
	withRunner(t, f)

	c, _ := testCommand(t)
	err := runVersions(c, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCatalogUnavailable))
}
