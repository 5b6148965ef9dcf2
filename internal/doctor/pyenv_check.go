package doctor

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/thoreinstein/pyup/internal/runner"
	"github.com/thoreinstein/pyup/internal/toolinstall"
)

// PyenvCheck verifies that pyenv resolves and reports its version.
type PyenvCheck struct {
	runner runner.Runner
	root   string
}

var _ Check = (*PyenvCheck)(nil)

// NewPyenvCheck creates a pyenv presence check. r should carry the
// refreshed environment so a fresh install under root is found.
func NewPyenvCheck(r runner.Runner, root string) *PyenvCheck {
	return &PyenvCheck{runner: r, root: root}
}

// Name returns the unique identifier for this check.
func (c *PyenvCheck) Name() string { return "pyenv" }

// Category returns the grouping for this check.
func (c *PyenvCheck) Category() string { return "pyenv" }

// Run executes the check.
func (c *PyenvCheck) Run(ctx context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"pyenv_root": c.root},
	}

	if !c.runner.Probe("pyenv") {
		result.Status = SeverityError
		result.Message = "pyenv not found on PATH or under " + c.root
		result.FixHint = "Run: pyup setup"
		if info, err := os.Stat(c.root); err == nil && info.IsDir() {
			if err := toolinstall.CheckRoot(c.root); err != nil {
				result.Message = fmt.Sprintf("pyenv not found, and %s is not a complete pyenv checkout", c.root)
				result.Details["problem"] = err.Error()
				result.FixHint = fmt.Sprintf("Move it aside (mv %s %s.broken), then run: pyup setup", c.root, c.root)
			}
		}
		return result
	}

	res, err := c.runner.Run(ctx, runner.Cmd{Name: "pyenv", Args: []string{"--version"}})
	if err != nil || !res.OK() {
		result.Status = SeverityError
		result.Message = "pyenv resolves but `pyenv --version` failed"
		result.FixHint = "Check your pyenv installation under " + c.root
		return result
	}
	version := strings.TrimSpace(res.Stdout)
	result.Details["version"] = version

	if versions, err := c.runner.Run(ctx, runner.Cmd{Name: "pyenv", Args: []string{"versions", "--bare"}}); err == nil && versions.OK() {
		result.Details["installed_versions"] = versions.Lines()
	}

	if info, err := os.Stat(c.root); err != nil || !info.IsDir() {
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("%s found, but %s is not a directory", version, c.root)
		result.FixHint = "Set pyenv_root in pyup's config to pyenv's actual root (see `pyenv root`)"
		return result
	}

	result.Status = SeverityPass
	result.Message = version
	return result
}

// PluginCheck verifies that `pyenv virtualenv` works.
type PluginCheck struct {
	runner runner.Runner
}

var _ Check = (*PluginCheck)(nil)

// NewPluginCheck creates a pyenv-virtualenv check.
func NewPluginCheck(r runner.Runner) *PluginCheck {
	return &PluginCheck{runner: r}
}

// Name returns the unique identifier for this check.
func (c *PluginCheck) Name() string { return "pyenv-virtualenv" }

// Category returns the grouping for this check.
func (c *PluginCheck) Category() string { return "pyenv" }

// Run executes the check.
func (c *PluginCheck) Run(ctx context.Context) *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}

	if !c.runner.Probe("pyenv") {
		result.Status = SeverityInfo
		result.Message = "skipped: pyenv not found"
		return result
	}

	ok, err := toolinstall.HasPlugin(ctx, c.runner)
	switch {
	case err != nil:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("could not run pyenv: %v", err)
	case ok:
		result.Status = SeverityPass
		result.Message = "pyenv virtualenv is available"
	default:
		result.Status = SeverityWarning
		result.Message = "pyenv virtualenv is not available"
		result.FixHint = "Run: pyup setup (it offers to install the plugin)"
	}
	return result
}
