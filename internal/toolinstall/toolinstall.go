package toolinstall

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/thoreinstein/pyup/internal/decision"
	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/git"
	"github.com/thoreinstein/pyup/internal/logging"
	"github.com/thoreinstein/pyup/internal/paths"
	"github.com/thoreinstein/pyup/internal/platform"
	"github.com/thoreinstein/pyup/internal/runner"
	"github.com/thoreinstein/pyup/internal/state"
)

// ToolState records how pyenv got onto the host.
type ToolState string

const (
	NotInstalled               ToolState = "not-installed"
	InstalledViaPackageManager ToolState = "package-manager"
	InstalledViaOfficialScript ToolState = "official-script"
	InstalledViaSourceClone    ToolState = "source-clone"
	// InstalledUnknown means pyenv resolves but pyup did not install it.
	InstalledUnknown ToolState = "unknown"
)

// stateFor maps an install method to the state it produces.
var stateFor = map[platform.Method]ToolState{
	platform.MethodPackageManager: InstalledViaPackageManager,
	platform.MethodOfficialScript: InstalledViaOfficialScript,
	platform.MethodSourceClone:    InstalledViaSourceClone,
}

// Options configures an Installer.
type Options struct {
	PyenvRoot      string
	InstallerURL   string
	PyenvRepo      string
	VirtualenvRepo string
	// InstallPlugin offers the pyenv-virtualenv clone on source installs.
	InstallPlugin bool
}

// Report describes the outcome of EnsureInstalled.
type Report struct {
	State ToolState
	// Env is the snapshot to use for later steps.
	Env runner.Env
	// AlreadyPresent is set when pyenv resolved before anything ran.
	AlreadyPresent bool
	// PluginInstalled is set when this run installed pyenv-virtualenv.
	PluginInstalled bool
	// Skipped is set when the user declined installation.
	Skipped bool
	// Warnings are non-fatal problems for the user to read.
	Warnings []string
	// Notes are platform reminders and follow-up instructions.
	Notes []string
}

// Installer provisions pyenv.
type Installer struct {
	runner runner.Runner
	gate   decision.Gate
	git    *git.Client
	store  *state.Store
	opts   Options
	now    func() time.Time
}

// New returns an Installer. store may be nil to disable state recording.
func New(r runner.Runner, g decision.Gate, store *state.Store, opts Options) *Installer {
	return &Installer{
		runner: r,
		gate:   g,
		git:    git.New(r),
		store:  store,
		opts:   opts,
		now:    time.Now,
	}
}

// Present reports whether pyenv resolves, either on PATH or under the
// configured root. The returned Env is the one to use from now on.
func (i *Installer) Present() (runner.Env, bool) {
	env := i.runner.Env()
	if i.runner.Probe("pyenv") {
		return env, true
	}
	if i.runner.Probe(filepath.Join(i.opts.PyenvRoot, "bin", "pyenv")) {
		return env.Refresh(i.opts.PyenvRoot), true
	}
	return env, false
}

// EnsureInstalled makes pyenv available on p.
func (i *Installer) EnsureInstalled(ctx context.Context, p platform.Platform) (Report, error) {
	logger := logging.FromContext(ctx).With("platform", p.String())

	if env, ok := i.Present(); ok {
		logger.Info("pyenv already present")
		return Report{State: i.recordedState(), Env: env, AlreadyPresent: true}, nil
	}

	strategy := platform.For(p)
	if !strategy.Supported() {
		return Report{State: NotInstalled, Env: i.runner.Env()}, errors.WithHint(
			errors.Wrapf(errors.ErrUnsupportedPlatform, "cannot install pyenv on %s", p.Label()),
			strategy.Guidance(),
		)
	}

	ok, err := i.gate.Confirm(ctx, decision.Request{
		ID:       "install.pyenv",
		Question: "pyenv is not installed. Install it now?",
		Detail:   describeMethods(strategy),
		Default:  true,
	})
	if err != nil {
		return Report{}, err
	}
	if !ok {
		return Report{State: NotInstalled, Env: i.runner.Env(), Skipped: true}, nil
	}

	rep := Report{State: NotInstalled, Env: i.runner.Env()}
	for _, m := range strategy.Methods() {
		done, err := i.tryMethod(ctx, m, strategy, &rep)
		if err != nil {
			return rep, err
		}
		if done {
			rep.State = stateFor[m]
			break
		}
	}
	if rep.State == NotInstalled {
		rep.Skipped = true
		return rep, nil
	}

	if g := strategy.Guidance(); g != "" && p == platform.UbuntuCompat {
		rep.Notes = append(rep.Notes, g)
	}
	rep.Notes = append(rep.Notes, "Restart your shell or run 'exec $SHELL' so new terminals pick up pyenv.")

	rep.Env = i.runner.Env().Refresh(i.opts.PyenvRoot)
	if !i.runner.WithEnv(rep.Env).Probe("pyenv") {
		return rep, errors.WithHint(
			errors.Wrapf(errors.ErrToolMissing, "pyenv still not found after %s install", rep.State),
			"Install or configure pyenv manually, then re-run pyup.",
		)
	}

	i.record(ctx, rep.State)
	logger.Info("pyenv installed", "method", string(rep.State))
	return rep, nil
}

// tryMethod runs one install method. done is false when the method is not
// available or the user declined it, so the next method can be offered.
func (i *Installer) tryMethod(ctx context.Context, m platform.Method, s platform.Strategy, rep *Report) (bool, error) {
	switch m {
	case platform.MethodPackageManager:
		return i.installBrew(ctx, rep)
	case platform.MethodOfficialScript:
		return i.installScript(ctx, rep)
	case platform.MethodSourceClone:
		return i.installSource(ctx, s, rep)
	default:
		return false, errors.Newf("unknown install method %q", m)
	}
}

func (i *Installer) installBrew(ctx context.Context, rep *Report) (bool, error) {
	if !i.runner.Probe("brew") {
		rep.Warnings = append(rep.Warnings, "Homebrew was not found; offering the official installer instead.")
		return false, nil
	}

	ok, err := i.gate.Confirm(ctx, decision.Request{
		ID:       "install.brew",
		Question: "Install pyenv and pyenv-virtualenv with Homebrew?",
		Detail:   "Commands:\n  brew update\n  brew install pyenv pyenv-virtualenv",
		Default:  true,
	})
	if err != nil || !ok {
		return false, err
	}

	for _, args := range [][]string{{"update"}, {"install", "pyenv", "pyenv-virtualenv"}} {
		if err := i.run(ctx, runner.Cmd{Name: "brew", Args: args, Interactive: true}); err != nil {
			return false, err
		}
	}
	rep.PluginInstalled = true
	return true, nil
}

// scriptCmd pipes the installer into bash with the URL passed as a
// positional argument, never spliced into the script text.
func (i *Installer) scriptCmd() runner.Cmd {
	return runner.Cmd{
		Name:        "bash",
		Args:        []string{"-c", `set -o pipefail; curl -fsSL "$1" | bash`, "pyup", i.opts.InstallerURL},
		Interactive: true,
	}
}

func (i *Installer) installScript(ctx context.Context, rep *Report) (bool, error) {
	ok, err := i.gate.Confirm(ctx, decision.Request{
		ID:       "install.script",
		Question: "Download and run the official pyenv installer now? This executes remote code.",
		Detail: fmt.Sprintf("The installer from %s installs pyenv and its plugins under %s.\nCommand: curl -fsSL %s | bash",
			i.opts.InstallerURL, i.opts.PyenvRoot, i.opts.InstallerURL),
		Default: false,
	})
	if err != nil || !ok {
		return false, err
	}

	if err := i.run(ctx, i.scriptCmd()); err != nil {
		return false, err
	}
	rep.PluginInstalled = true
	return true, nil
}

func (i *Installer) installSource(ctx context.Context, s platform.Strategy, rep *Report) (bool, error) {
	deps := s.BuildDeps()
	ok, err := i.gate.Confirm(ctx, decision.Request{
		ID:       "install.apt",
		Question: "Install the Python build dependencies with apt? This uses sudo and may ask for your password.",
		Detail:   "Commands:\n  sudo apt-get update\n  sudo apt-get install -y " + strings.Join(deps, " "),
		Default:  true,
	})
	if err != nil {
		return false, err
	}
	if ok {
		if err := i.run(ctx, runner.Cmd{Name: "sudo", Args: []string{"apt-get", "update"}, Interactive: true}); err != nil {
			return false, err
		}
		args := append([]string{"apt-get", "install", "-y"}, deps...)
		if err := i.run(ctx, runner.Cmd{Name: "sudo", Args: args, Interactive: true}); err != nil {
			return false, err
		}
	} else {
		rep.Warnings = append(rep.Warnings, "Skipped build dependencies; building Python versions may fail.")
	}

	if !i.runner.Probe("git") {
		return false, errors.WithHint(
			errors.Wrap(errors.ErrToolMissing, "git is required to clone pyenv"),
			"Run: sudo apt-get install -y git",
		)
	}

	root := i.opts.PyenvRoot
	if !dirExists(root) {
		if err := i.git.Clone(ctx, i.opts.PyenvRepo, root); err != nil {
			return false, err
		}
	} else if err := CheckRoot(root); err != nil {
		return false, errors.WithHint(
			errors.Mark(errors.Wrapf(err, "%s is not a usable pyenv checkout", root), errors.ErrPathConflict),
			fmt.Sprintf("Move it aside (mv %s %s.broken) and re-run pyup.", root, root),
		)
	} else {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s already exists; skipping the pyenv clone.", root))
	}

	if i.opts.InstallPlugin {
		installed, err := i.clonePlugin(ctx, rep)
		if err != nil {
			return false, err
		}
		rep.PluginInstalled = installed
	}
	return true, nil
}

// clonePlugin offers the pyenv-virtualenv clone. It reports whether the
// clone ran.
func (i *Installer) clonePlugin(ctx context.Context, rep *Report) (bool, error) {
	dest := paths.PluginDir(i.opts.PyenvRoot)
	if dirExists(dest) {
		if err := checkPlugin(dest); err != nil {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s is not a usable plugin checkout (%v); remove it and re-run pyup to clone it again.", dest, err))
			return false, nil
		}
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s already exists; skipping the plugin clone.", dest))
		return false, nil
	}

	ok, err := i.gate.Confirm(ctx, decision.Request{
		ID:       "install.plugin",
		Question: "Install the pyenv-virtualenv plugin as well?",
		Detail:   "Command: " + git.CloneCmd(i.opts.VirtualenvRepo, dest).String(),
		Default:  true,
	})
	if err != nil || !ok {
		return false, err
	}
	if err := i.git.Clone(ctx, i.opts.VirtualenvRepo, dest); err != nil {
		return false, err
	}
	return true, nil
}

// run executes a required step. Non-zero exit becomes InstallStepError.
func (i *Installer) run(ctx context.Context, c runner.Cmd) error {
	res, err := i.runner.Run(ctx, c)
	if err != nil {
		return errors.Wrapf(err, "running %s", c.Name)
	}
	if !res.OK() {
		return errors.NewInstallStepError(res.Code, c.Name, c.Args...)
	}
	return nil
}

func (i *Installer) recordedState() ToolState {
	if i.store == nil {
		return InstalledUnknown
	}
	st, err := i.store.Load()
	if err != nil || st.Tool.Method == "" {
		return InstalledUnknown
	}
	return ToolState(st.Tool.Method)
}

func (i *Installer) record(ctx context.Context, ts ToolState) {
	if i.store == nil {
		return
	}
	err := i.store.Update(func(st *state.State) {
		st.Tool = state.Tool{Method: string(ts), PyenvRoot: i.opts.PyenvRoot, RecordedAt: i.now().UTC()}
	})
	if err != nil {
		logging.FromContext(ctx).Warn("could not record install method", "error", err)
	}
}

func describeMethods(s platform.Strategy) string {
	var b strings.Builder
	b.WriteString("Available methods, in order:")
	for n, m := range s.Methods() {
		fmt.Fprintf(&b, "\n  %d. %s", n+1, methodLabel[m])
	}
	return b.String()
}

var methodLabel = map[platform.Method]string{
	platform.MethodPackageManager: "Homebrew (brew install pyenv pyenv-virtualenv)",
	platform.MethodOfficialScript: "official installer script (https://pyenv.run)",
	platform.MethodSourceClone:    "apt build dependencies + git clone into ~/.pyenv",
}

// CheckRoot reports why root is not a complete pyenv clone, or nil.
func CheckRoot(root string) error {
	return git.IsCheckout(root, filepath.Join("bin", "pyenv"))
}

func checkPlugin(dir string) error {
	return git.IsCheckout(dir, filepath.Join("bin", "pyenv-virtualenv"))
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
