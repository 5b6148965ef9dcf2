package shellrc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/pyup/internal/backup"
	"github.com/thoreinstein/pyup/internal/decision"
	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/runner"
)

type fixture struct {
	home    string
	backups *backup.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		home:    t.TempDir(),
		backups: backup.NewManager(backup.WithBackupDir(t.TempDir())),
	}
}

func (fx *fixture) writer(g decision.Gate) *Writer {
	return New(g, fx.backups, Options{Home: fx.home, PyenvRoot: filepath.Join(fx.home, ".pyenv")})
}

func TestKindFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      runner.Env
		override string
		want     Kind
	}{
		{name: "zsh from SHELL", env: runner.NewEnv("SHELL=/bin/zsh"), want: "zsh"},
		{name: "bash from SHELL", env: runner.NewEnv("SHELL=/usr/local/bin/bash"), want: "bash"},
		{name: "override wins", env: runner.NewEnv("SHELL=/bin/zsh"), override: "bash", want: "bash"},
		{name: "override as path", env: runner.NewEnv(), override: "/usr/bin/fish", want: "fish"},
		{name: "unknown", env: runner.NewEnv(), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindFromEnv(tt.env, tt.override))
		})
	}
}

func TestRCPath(t *testing.T) {
	tests := []struct {
		kind   Kind
		want   string
		wantOK bool
	}{
		{kind: "zsh", want: "/home/u/.zshrc", wantOK: true},
		{kind: "bash", want: "/home/u/.bashrc", wantOK: true},
		{kind: "sh", want: "/home/u/.profile", wantOK: true},
		{kind: "dash", want: "/home/u/.profile", wantOK: true},
		{kind: "ksh", want: "/home/u/.profile", wantOK: true},
		{kind: "fish", wantOK: false},
		{kind: "nu", wantOK: false},
		{kind: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got, ok := RCPath("/home/u", tt.kind)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSnippet(t *testing.T) {
	s := Snippet("/home/u", "/home/u/.pyenv")
	assert.True(t, strings.HasPrefix(s, BeginMarker+"\n"))
	assert.True(t, strings.HasSuffix(s, EndMarker+"\n"))
	assert.Contains(t, s, `export PYENV_ROOT="$HOME/.pyenv"`)
	assert.Contains(t, s, `eval "$(pyenv init -)"`)

	outside := Snippet("/home/u", "/opt/py$env")
	assert.Contains(t, outside, `export PYENV_ROOT="/opt/py\$env"`)
}

func TestEnsureInitSnippet_AppendsToExistingProfile(t *testing.T) {
	fx := newFixture(t)
	rc := filepath.Join(fx.home, ".zshrc")
	original := "alias ll='ls -l'"
	require.NoError(t, os.WriteFile(rc, []byte(original), 0o600))
	gate := decision.Yes()

	res, err := fx.writer(gate).EnsureInitSnippet(t.Context(), "zsh")
	require.NoError(t, err)
	assert.Equal(t, Appended, res.Outcome)
	assert.Equal(t, rc, res.Path)
	assert.NotEmpty(t, res.BackupID)

	got, err := os.ReadFile(rc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(got), original+"\n\n"+BeginMarker), "existing bytes are kept")
	assert.Equal(t, 1, strings.Count(string(got), BeginMarker))

	info, err := os.Stat(rc)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reqs := gate.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "profile.append", reqs[0].ID)
	assert.Contains(t, reqs[0].Detail, "+"+BeginMarker, "the gate sees a diff of the append")

	list, err := fx.backups.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, res.BackupID, list[0].ID)
}

func TestEnsureInitSnippet_SymlinkedProfile(t *testing.T) {
	fx := newFixture(t)
	dotfiles := filepath.Join(fx.home, "dotfiles")
	require.NoError(t, os.MkdirAll(dotfiles, 0o755))
	target := filepath.Join(dotfiles, "zshrc")
	original := "alias ll='ls -l'\n"
	require.NoError(t, os.WriteFile(target, []byte(original), 0o644))
	rc := filepath.Join(fx.home, ".zshrc")
	require.NoError(t, os.Symlink(filepath.Join("dotfiles", "zshrc"), rc))
	w := fx.writer(decision.Yes())

	res, err := w.EnsureInitSnippet(t.Context(), "zsh")
	require.NoError(t, err)
	assert.Equal(t, Appended, res.Outcome)
	assert.Equal(t, target, res.Path)
	assert.Equal(t, rc, res.Link)
	assert.Contains(t, res.Where(), "linked from "+rc)

	info, err := os.Lstat(rc)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "the profile link is kept")

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(got), original), "existing bytes are kept")
	assert.Contains(t, string(got), BeginMarker)

	list, err := fx.backups.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Len(t, list[0].Files, 1)
	assert.Equal(t, target, list[0].Files[0].OriginalPath, "the backup covers the real file")

	again, err := w.EnsureInitSnippet(t.Context(), "zsh")
	require.NoError(t, err)
	assert.Equal(t, AlreadyPresent, again.Outcome)
}

func TestEnsureInitSnippet_Idempotent(t *testing.T) {
	fx := newFixture(t)
	w := fx.writer(decision.Yes())

	first, err := w.EnsureInitSnippet(t.Context(), "bash")
	require.NoError(t, err)
	assert.Equal(t, Appended, first.Outcome)
	assert.Empty(t, first.BackupID, "a new file has nothing to back up")

	before, err := os.ReadFile(first.Path)
	require.NoError(t, err)

	second, err := w.EnsureInitSnippet(t.Context(), "bash")
	require.NoError(t, err)
	assert.Equal(t, AlreadyPresent, second.Outcome)

	after, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestEnsureInitSnippet_LegacyLine(t *testing.T) {
	fx := newFixture(t)
	rc := filepath.Join(fx.home, ".bashrc")
	require.NoError(t, os.WriteFile(rc, []byte("eval \"$(pyenv init -)\"\n"), 0o644))
	gate := decision.Yes()

	res, err := fx.writer(gate).EnsureInitSnippet(t.Context(), "bash")
	require.NoError(t, err)
	assert.Equal(t, AlreadyPresent, res.Outcome)
	assert.Empty(t, gate.Seen())
}

func TestEnsureInitSnippet_Declined(t *testing.T) {
	fx := newFixture(t)
	rc := filepath.Join(fx.home, ".zshrc")
	require.NoError(t, os.WriteFile(rc, []byte("x\n"), 0o644))

	res, err := fx.writer(decision.No()).EnsureInitSnippet(t.Context(), "zsh")
	require.NoError(t, err)
	assert.Equal(t, Skipped, res.Outcome)
	assert.Contains(t, res.Instructions, BeginMarker)

	got, err := os.ReadFile(rc)
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(got))

	_, err = fx.backups.List()
	assert.True(t, errors.Is(err, backup.ErrNoBackupsFound))
}

func TestEnsureInitSnippet_UnsupportedShell(t *testing.T) {
	fx := newFixture(t)
	gate := decision.Yes()

	res, err := fx.writer(gate).EnsureInitSnippet(t.Context(), "fish")
	require.NoError(t, err)
	assert.Equal(t, Skipped, res.Outcome)
	assert.Empty(t, res.Path)
	assert.Contains(t, res.Instructions, "config.fish")
	assert.Empty(t, gate.Seen())

	entries, err := os.ReadDir(fx.home)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEnsureInitSnippet_ProfileIsDirectory(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, os.Mkdir(filepath.Join(fx.home, ".zshrc"), 0o755))

	_, err := fx.writer(decision.Yes()).EnsureInitSnippet(t.Context(), "zsh")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrProfileWrite))
}

func TestStatus(t *testing.T) {
	fx := newFixture(t)
	w := fx.writer(decision.Yes())

	path, present, err := w.Status("zsh")
	require.NoError(t, err)
	assert.False(t, present)
	assert.Equal(t, filepath.Join(fx.home, ".zshrc"), path)

	_, err = w.EnsureInitSnippet(t.Context(), "zsh")
	require.NoError(t, err)

	_, present, err = w.Status("zsh")
	require.NoError(t, err)
	assert.True(t, present)

	path, _, err = w.Status("fish")
	require.NoError(t, err)
	assert.Empty(t, path)
}
