package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/pyup/internal/backup"
	"github.com/thoreinstein/pyup/internal/decision"
	"github.com/thoreinstein/pyup/internal/errors"
)

// backedUpProfile writes a profile, backs it up, then changes it.
func backedUpProfile(t *testing.T, mgr *backup.Manager) (path, id string) {
	t.Helper()
	path = filepath.Join(t.TempDir(), ".zshrc")
	require.NoError(t, os.WriteFile(path, []byte("export EDITOR=vim\n"), 0o644))

	m, err := mgr.Backup("append pyenv init", path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("export EDITOR=vim\n# pyenv\n"), 0o644))
	return path, m.ID
}

func TestRunBackupList_Empty(t *testing.T) {
	withBackups(t)
	c, out := testCommand(t)

	require.NoError(t, runBackupList(c, nil))
	assert.Contains(t, out.String(), "No backups yet")
}

func TestRunBackupList_JSON(t *testing.T) {
	mgr := withBackups(t)
	path, id := backedUpProfile(t, mgr)

	backupListJSON = true
	defer func() { backupListJSON = false }()

	c, out := testCommand(t)
	require.NoError(t, runBackupList(c, nil))

	var got []backupInfoOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "append pyenv init", got[0].Reason)
	assert.Equal(t, []string{path}, got[0].Files)
}

func TestRunBackupList_Table(t *testing.T) {
	mgr := withBackups(t)
	path, id := backedUpProfile(t, mgr)

	c, out := testCommand(t)
	require.NoError(t, runBackupList(c, nil))

	assert.Contains(t, out.String(), id)
	assert.Contains(t, out.String(), path)
}

func TestRunBackupRestore(t *testing.T) {
	mgr := withBackups(t)
	path, id := backedUpProfile(t, mgr)
	gate := decision.Yes()
	withPrompter(t, gate)

	c, out := testCommand(t)
	require.NoError(t, runBackupRestore(c, []string{id}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "export EDITOR=vim\n", string(data))
	assert.Equal(t, []string{"backup.restore"}, gate.Seen())
	assert.Contains(t, gate.Requests()[0].Detail, path)
	assert.Contains(t, out.String(), "Restored "+path)
}

func TestRunBackupRestore_Declined(t *testing.T) {
	mgr := withBackups(t)
	path, id := backedUpProfile(t, mgr)
	withPrompter(t, decision.No())

	c, out := testCommand(t)
	require.NoError(t, runBackupRestore(c, []string{id}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "export EDITOR=vim\n# pyenv\n", string(data))
	assert.Contains(t, out.String(), "Restore cancelled")
}

func TestRunBackupRestore_UnknownID(t *testing.T) {
	withBackups(t)
	gate := decision.Yes()
	withPrompter(t, gate)

	c, _ := testCommand(t)
	err := runBackupRestore(c, []string{"20200101T000000"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, backup.ErrNoBackupsFound))
	assert.Empty(t, gate.Seen())
	assert.Equal(t, errors.ExitUser, exitCode(err))
}
