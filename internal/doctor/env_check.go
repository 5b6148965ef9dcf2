package doctor

import (
	"context"
	"strings"

	"github.com/thoreinstein/pyup/internal/runner"
)

// EnvironmentCheck reports the variables that steer pyenv and pyup.
type EnvironmentCheck struct {
	env runner.Env
}

var _ Check = (*EnvironmentCheck)(nil)

// NewEnvironmentCheck creates an environment check over env.
func NewEnvironmentCheck(env runner.Env) *EnvironmentCheck {
	return &EnvironmentCheck{env: env}
}

// Name returns the unique identifier for this check.
func (c *EnvironmentCheck) Name() string { return "environment" }

// Category returns the grouping for this check.
func (c *EnvironmentCheck) Category() string { return "shell" }

// Run executes the check.
func (c *EnvironmentCheck) Run(context.Context) *CheckResult {
	vars := map[string]string{}
	for _, kv := range c.env.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if k == "SHELL" || strings.HasPrefix(k, "PYENV_") || strings.HasPrefix(k, "PYUP_") {
			vars[k] = v
		}
	}

	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityPass,
		Message:  "no overrides that bypass .python-version",
		Details:  map[string]any{"variables": maskEnv(vars)},
	}

	if v := vars["PYENV_VERSION"]; v != "" {
		result.Status = SeverityWarning
		result.Message = "PYENV_VERSION=" + v + " overrides .python-version files in this shell"
		result.FixHint = "Run: unset PYENV_VERSION (or pyenv shell --unset)"
	}
	return result
}
