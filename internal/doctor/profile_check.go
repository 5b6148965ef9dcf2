package doctor

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/shellrc"
	"github.com/thoreinstein/pyup/internal/state"
)

// ProfileCheck verifies that the user's shell profile initialises pyenv.
type ProfileCheck struct {
	writer *shellrc.Writer
	kind   shellrc.Kind
}

var _ Check = (*ProfileCheck)(nil)

// NewProfileCheck creates a shell profile check for kind.
func NewProfileCheck(w *shellrc.Writer, kind shellrc.Kind) *ProfileCheck {
	return &ProfileCheck{writer: w, kind: kind}
}

// Name returns the unique identifier for this check.
func (c *ProfileCheck) Name() string { return "shell-profile" }

// Category returns the grouping for this check.
func (c *ProfileCheck) Category() string { return "shell" }

// Run executes the check.
func (c *ProfileCheck) Run(context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"shell": string(c.kind)},
	}

	path, present, err := c.writer.Status(c.kind)
	result.Details["path"] = path
	switch {
	case err != nil:
		result.Status = SeverityError
		result.Message = err.Error()
	case path == "":
		result.Status = SeverityInfo
		result.Message = fmt.Sprintf("shell %q is not managed by pyup; configure pyenv for it by hand", c.kind)
		result.FixHint = "See https://github.com/pyenv/pyenv#set-up-your-shell-environment-for-pyenv"
	case present:
		result.Status = SeverityPass
		result.Message = path + " initialises pyenv"
	default:
		result.Status = SeverityWarning
		result.Message = path + " does not initialise pyenv"
		result.FixHint = "Run: pyup profile"
	}
	return result
}

// StateCheck verifies that pyup's state file is readable and reports
// what it records.
type StateCheck struct {
	store *state.Store
}

var _ Check = (*StateCheck)(nil)

// NewStateCheck creates a state file check.
func NewStateCheck(s *state.Store) *StateCheck {
	return &StateCheck{store: s}
}

// Name returns the unique identifier for this check.
func (c *StateCheck) Name() string { return "state-file" }

// Category returns the grouping for this check.
func (c *StateCheck) Category() string { return "config" }

// Run executes the check.
func (c *StateCheck) Run(context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.store.Path},
	}

	if !fileExists(c.store.Path) {
		result.Status = SeverityInfo
		result.Message = "no state recorded yet"
		return result
	}

	st, err := c.store.Load()
	if err != nil {
		result.Status = SeverityError
		result.Message = formatTOMLError(err)
		result.FixHint = "Remove " + c.store.Path + "; pyup recreates it on the next run"
		return result
	}

	if st.Tool.Method != "" {
		result.Details["install_method"] = st.Tool.Method
	}
	if st.Python.LastVersion != "" {
		result.Details["last_version"] = st.Python.LastVersion
	}
	if st.Demo.EnvName != "" {
		result.Details["demo_env"] = st.Demo.EnvName
	}
	if st.LastRun.ID != "" {
		result.Details["last_run"] = st.LastRun.ID
	}
	result.Status = SeverityPass
	result.Message = "state file is readable"
	return result
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
