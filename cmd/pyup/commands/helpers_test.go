package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/pyup/internal/backup"
	"github.com/thoreinstein/pyup/internal/decision"
	"github.com/thoreinstein/pyup/internal/runner"
	"github.com/thoreinstein/pyup/internal/state"
)

// testCommand returns a bare command whose output is captured.
func testCommand(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	c := &cobra.Command{}
	c.SetOut(&buf)
	c.SetErr(&buf)
	c.SetIn(strings.NewReader(""))
	c.SetContext(t.Context())
	return c, &buf
}

func withRunner(t *testing.T, f *runner.Fake) {
	t.Helper()
	orig := newRunner
	newRunner = func(*cobra.Command) runner.Runner { return f }
	t.Cleanup(func() { newRunner = orig })
}

func withPrompter(t *testing.T, p decision.Prompter) {
	t.Helper()
	orig := newPrompter
	newPrompter = func(*cobra.Command) decision.Prompter { return p }
	t.Cleanup(func() { newPrompter = orig })
}

func withStore(t *testing.T) *state.Store {
	t.Helper()
	store := &state.Store{Path: filepath.Join(t.TempDir(), "state.toml")}
	orig := newStore
	newStore = func() *state.Store { return store }
	t.Cleanup(func() { newStore = orig })
	return store
}

func withBackups(t *testing.T) *backup.Manager {
	t.Helper()
	mgr := backup.NewManager(backup.WithBackupDir(t.TempDir()))
	orig := newBackupManager
	newBackupManager = func() *backup.Manager { return mgr }
	t.Cleanup(func() { newBackupManager = orig })
	return mgr
}

// pyenvFake returns a runner on which pyenv resolves.
func pyenvFake() *runner.Fake {
	f := runner.NewFake(runner.NewEnv("PATH=/usr/bin", "HOME=/home/u", "SHELL=/bin/zsh"))
	f.SetPresent(true, "pyenv")
	return f
}
