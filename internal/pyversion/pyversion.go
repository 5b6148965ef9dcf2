// Package pyversion installs CPython releases through pyenv.
//
// Ensure is idempotent: an interpreter already listed by
// `pyenv versions --bare` is reported as AlreadyPresent without building.
// A failed build is terminal for that version; nothing is retried and no
// dependency remediation is attempted.
package pyversion

import (
	"context"
	"fmt"

	"github.com/thoreinstein/pyup/internal/catalog"
	"github.com/thoreinstein/pyup/internal/decision"
	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/logging"
	"github.com/thoreinstein/pyup/internal/runner"
)

// Kind is the result of Ensure.
type Kind string

const (
	AlreadyPresent Kind = "already-present"
	Installed      Kind = "installed"
	Failed         Kind = "failed"
	// Declined means the user said no to the build.
	Declined Kind = "declined"
)

// Outcome reports what Ensure did.
type Outcome struct {
	Kind Kind
	// Code is the exit code of a Failed build.
	Code int
	// Hint points at the verbose re-run for a Failed build.
	Hint string
}

// Installer checks for and builds interpreter versions.
type Installer struct {
	runner runner.Runner
	gate   decision.Gate
}

// New returns an Installer.
func New(r runner.Runner, g decision.Gate) *Installer {
	return &Installer{runner: r, gate: g}
}

// Installed returns the versions and environments pyenv knows about. A
// failing listing is treated as empty.
func (i *Installer) Installed(ctx context.Context) ([]string, error) {
	res, err := i.runner.Run(ctx, runner.Cmd{Name: "pyenv", Args: []string{"versions", "--bare"}})
	if err != nil {
		return nil, errors.Wrap(err, "listing installed versions")
	}
	if !res.OK() {
		logging.FromContext(ctx).Info("pyenv versions failed, assuming none installed", "code", res.Code)
		return nil, nil
	}
	return res.Lines(), nil
}

// IsInstalled reports an exact match for e in the installed listing.
func (i *Installer) IsInstalled(ctx context.Context, e catalog.Entry) (bool, error) {
	installed, err := i.Installed(ctx)
	if err != nil {
		return false, err
	}
	for _, v := range installed {
		if v == e.Raw {
			return true, nil
		}
	}
	return false, nil
}

// Ensure installs e unless it is already present. The build runs
// interactively so its progress stays visible. A failed build returns a
// Failed outcome together with an *errors.InstallStepError.
func (i *Installer) Ensure(ctx context.Context, e catalog.Entry) (Outcome, error) {
	logger := logging.FromContext(ctx).With("version", e.Raw)

	present, err := i.IsInstalled(ctx, e)
	if err != nil {
		return Outcome{}, err
	}
	if present {
		logger.Info("version already installed")
		return Outcome{Kind: AlreadyPresent}, nil
	}

	cmd := runner.Cmd{Name: "pyenv", Args: []string{"install", e.Raw}, Interactive: true}
	ok, err := i.gate.Confirm(ctx, decision.Request{
		ID:       "version.install",
		Question: fmt.Sprintf("Python %s is not installed. Build it now? This may take several minutes.", e.Raw),
		Detail:   "Command: " + cmd.String(),
		Default:  true,
	})
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{Kind: Declined}, nil
	}

	res, err := i.runner.Run(ctx, cmd)
	if err != nil {
		return Outcome{}, errors.Wrapf(err, "installing Python %s", e.Raw)
	}
	if !res.OK() {
		hint := fmt.Sprintf("Re-run with verbose output to see the build log: pyenv install -v %s", e.Raw)
		stepErr := errors.NewInstallStepError(res.Code, cmd.Name, cmd.Args...)
		logger.Warn("build failed", "code", res.Code)
		return Outcome{Kind: Failed, Code: res.Code, Hint: hint}, errors.WithHint(stepErr, hint)
	}

	logger.Info("version installed")
	return Outcome{Kind: Installed}, nil
}

// SetGlobal offers to make e the global default. It returns whether the
// change was applied. Failures are returned for reporting only.
func (i *Installer) SetGlobal(ctx context.Context, e catalog.Entry) (bool, error) {
	cmd := runner.Cmd{Name: "pyenv", Args: []string{"global", e.Raw}}
	ok, err := i.gate.Confirm(ctx, decision.Request{
		ID:       "version.global",
		Question: fmt.Sprintf("Set Python %s as your global default pyenv version?", e.Raw),
		Detail:   "New shells will use it unless a directory pins another version.",
		Default:  false,
	})
	if err != nil || !ok {
		return false, err
	}

	res, err := i.runner.Run(ctx, cmd)
	if err != nil {
		return false, errors.Wrap(err, "setting global version")
	}
	if !res.OK() {
		return false, errors.NewInstallStepError(res.Code, cmd.Name, cmd.Args...)
	}
	return true, nil
}
