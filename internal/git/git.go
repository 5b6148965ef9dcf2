// Package git clones the pyenv repositories through the command runner.
package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/runner"
)

// IsURL returns true if s looks like a git repository URL.
// It checks for:
//   - URLs containing "://" (e.g., https://, ssh://)
//   - URLs ending with ".git"
//   - SSH-style URLs starting with "git@"
func IsURL(s string) bool {
	return strings.Contains(s, "://") ||
		strings.HasSuffix(s, ".git") ||
		strings.HasPrefix(s, "git@")
}

// Client runs git through a runner.Runner.
type Client struct {
	runner runner.Runner
}

// New returns a Client.
func New(r runner.Runner) *Client {
	return &Client{runner: r}
}

// CloneCmd returns the command Clone runs, for showing in a prompt.
func CloneCmd(url, dest string) runner.Cmd {
	return runner.Cmd{
		Name:        "git",
		Args:        []string{"clone", "--depth=1", url, dest},
		Interactive: true,
	}
}

// Clone shallow-clones url into dest with output streamed to the terminal
// so credential prompts and progress stay visible. A non-zero exit is
// returned as *errors.InstallStepError.
func (c *Client) Clone(ctx context.Context, url, dest string) error {
	cmd := CloneCmd(url, dest)
	res, err := c.runner.Run(ctx, cmd)
	if err != nil {
		return errors.Wrap(err, "git clone")
	}
	if !res.OK() {
		return errors.NewInstallStepError(res.Code, cmd.Name, cmd.Args...)
	}
	return nil
}

// IsRepo checks that dir is a git work tree by looking for its .git
// directory.
func IsRepo(dir string) error {
	gitDir := filepath.Join(dir, ".git")
	info, err := os.Stat(gitDir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Newf("not a git repository: %s", dir)
		}
		return errors.Wrap(err, "checking git directory")
	}
	if !info.IsDir() {
		return errors.Newf(".git is not a directory: %s", gitDir)
	}
	return nil
}

// IsCheckout checks that dir is a work tree holding every file in want.
// A clone that was interrupted fails here even when .git exists.
func IsCheckout(dir string, want ...string) error {
	if err := IsRepo(dir); err != nil {
		return err
	}
	for _, name := range want {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return errors.Newf("incomplete checkout: %s is missing from %s", name, dir)
		}
	}
	return nil
}
