package runner

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/pyup/internal/errors"
)

func hostEnv(t *testing.T) Env {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
	return FromOS()
}

func TestExec_CapturesOutputAndCode(t *testing.T) {
	r := New(hostEnv(t))

	res, err := r.Run(t.Context(), Cmd{Name: "bash", Args: []string{"-c", `echo out; echo err >&2; exit 3`}})
	require.NoError(t, err, "non-zero exit is not an error")
	assert.Equal(t, 3, res.Code)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.False(t, res.OK())
}

func TestExec_ArgumentsAreNotShellInterpreted(t *testing.T) {
	r := New(hostEnv(t))

	hostile := `3.12.3; echo pwned`
	res, err := r.Run(t.Context(), Cmd{Name: "bash", Args: []string{"-c", `printf '%s' "$1"`, "pyup", hostile}})
	require.NoError(t, err)
	assert.Equal(t, hostile, res.Stdout)
}

func TestExec_Dir(t *testing.T) {
	r := New(hostEnv(t))
	dir := t.TempDir()

	res, err := r.Run(t.Context(), Cmd{Name: "bash", Args: []string{"-c", "pwd -P"}, Dir: dir})
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, want, strings.TrimSpace(res.Stdout))
}

func TestExec_UsesSnapshotEnv(t *testing.T) {
	r := New(hostEnv(t)).WithEnv(FromOS().With("PYUP_TEST_MARKER", "snap"))

	res, err := r.Run(t.Context(), Cmd{Name: "bash", Args: []string{"-c", `printf '%s' "$PYUP_TEST_MARKER"`}})
	require.NoError(t, err)
	assert.Equal(t, "snap", res.Stdout)
	_, set := os.LookupEnv("PYUP_TEST_MARKER")
	assert.False(t, set, "process environment must not change")
}

func TestExec_Interactive(t *testing.T) {
	var out bytes.Buffer
	r := New(hostEnv(t), WithStdio(strings.NewReader(""), &out, &out))

	res, err := r.Run(t.Context(), Cmd{Name: "bash", Args: []string{"-c", "echo streamed"}, Interactive: true})
	require.NoError(t, err)
	assert.Empty(t, res.Stdout, "interactive output is streamed, not captured")
	assert.Equal(t, "streamed\n", out.String())
}

func TestExec_NotAllowed(t *testing.T) {
	r := New(FromOS())

	_, err := r.Run(t.Context(), Cmd{Name: "rm", Args: []string{"-rf", "/"}})
	assert.True(t, errors.Is(err, ErrNotAllowed))
}

func TestExec_NotFound(t *testing.T) {
	r := New(NewEnv("PATH="+t.TempDir()), WithAllowed("pyenv"))

	_, err := r.Run(t.Context(), Cmd{Name: "pyenv", Args: []string{"--version"}})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, r.Probe("pyenv"))
}

func TestExec_Cancelled(t *testing.T) {
	r := New(hostEnv(t))
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := r.Run(ctx, Cmd{Name: "bash", Args: []string{"-c", "sleep 5"}})
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestExec_ProbeAfterRefresh(t *testing.T) {
	root := t.TempDir()
	bin := filepath.Join(root, "bin")
	require.NoError(t, os.MkdirAll(bin, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bin, "pyenv"), []byte("#!/bin/sh\n"), 0o755))

	var r Runner = New(NewEnv("PATH=/nonexistent"))
	assert.False(t, r.Probe("pyenv"))

	r = r.WithEnv(r.Env().Refresh(root))
	assert.True(t, r.Probe("pyenv"))
}

func TestResult_Lines(t *testing.T) {
	res := Result{Stdout: "  3.12.3\n\n3.11.9  \n"}
	assert.Equal(t, []string{"3.12.3", "3.11.9"}, res.Lines())
	assert.Nil(t, Result{}.Lines())
}

func TestFake(t *testing.T) {
	f := NewFake(NewEnv("PATH=/usr/bin"))
	f.SetPresent(true, "pyenv")
	f.On("pyenv versions --bare", 0, "3.12.3\n")

	res, err := f.Run(t.Context(), Cmd{Name: "pyenv", Args: []string{"versions", "--bare"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"3.12.3"}, res.Lines())

	res, err = f.Run(t.Context(), Cmd{Name: "git", Args: []string{"status"}})
	require.NoError(t, err)
	assert.True(t, res.OK(), "unscripted commands succeed")

	child := f.WithEnv(f.Env().With("X", "1"))
	_, _ = child.Run(t.Context(), Cmd{Name: "pyenv", Args: []string{"root"}})

	assert.Equal(t, []string{"pyenv versions --bare", "git status", "pyenv root"}, f.Commands())
	assert.Equal(t, "1", f.Calls()[2].Env.Get("X"))
	assert.True(t, f.Probe("pyenv"))
	assert.False(t, f.Probe("brew"))
	assert.Equal(t, 1, f.CountPrefix("git"))
}
