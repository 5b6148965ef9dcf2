// Package demo builds a small project directory pinned to a
// pyenv-virtualenv environment and proves, in a throwaway subshell, that
// entering the directory selects that environment.
package demo

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/pyup/internal/catalog"
	"github.com/thoreinstein/pyup/internal/decision"
	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/logging"
	"github.com/thoreinstein/pyup/internal/runner"
	"github.com/thoreinstein/pyup/internal/toolinstall"
	"github.com/thoreinstein/pyup/pkg/fileutil"
)

// PinFileName is the file pyenv reads to pick a version for a directory.
const PinFileName = ".python-version"

// verifyScript runs in a login bash with the demo directory as $1.
const verifyScript = `cd "$1" && python -V && command -v python`

// Environment is the demo project that was built or found.
type Environment struct {
	Name    string
	Version string
	Dir     string
	PinFile string
	// PinContent is the pin file's content without the trailing newline.
	PinContent string
}

// Step is the outcome of one idempotent step.
type Step int

const (
	StepSkipped Step = iota
	StepAlreadyPresent
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepAlreadyPresent:
		return "already present"
	case StepDone:
		return "done"
	default:
		return "skipped"
	}
}

// Verification is what the subshell reported.
type Verification struct {
	OK bool
	// PythonVersion is the `python -V` line, e.g. "Python 3.12.3".
	PythonVersion string
	// PythonPath is the interpreter that `command -v python` resolved.
	PythonPath string
	Output     string
}

// Report describes a Build.
type Report struct {
	Dir          Step
	Virtualenv   Step
	PinFile      Step
	Verification Verification
	Warnings     []string
	// Instructions are commands the user can try by hand afterwards.
	Instructions string
}

// Options configures a Builder.
type Options struct {
	EnvName string
}

// Builder builds the demo project.
type Builder struct {
	runner runner.Runner
	gate   decision.Gate
	opts   Options
}

// New returns a Builder.
func New(r runner.Runner, g decision.Gate, opts Options) *Builder {
	return &Builder{runner: r, gate: g, opts: opts}
}

// Build creates rootDir, a virtualenv backed by e and the pin file, then
// verifies the result in a subshell. It returns errors.ErrPluginMissing
// without side effects when pyenv-virtualenv is unavailable and
// errors.ErrPathConflict when rootDir exists but is not a directory.
func (b *Builder) Build(ctx context.Context, e catalog.Entry, rootDir string) (Environment, Report, error) {
	logger := logging.FromContext(ctx).With("env", b.opts.EnvName, "dir", rootDir)

	env := Environment{
		Name:       b.opts.EnvName,
		Version:    e.Raw,
		Dir:        rootDir,
		PinFile:    filepath.Join(rootDir, PinFileName),
		PinContent: b.opts.EnvName,
	}
	var rep Report

	ok, err := toolinstall.HasPlugin(ctx, b.runner)
	if err != nil {
		return env, rep, errors.Wrap(err, "checking pyenv-virtualenv")
	}
	if !ok {
		return env, rep, errors.WithHint(
			errors.Wrap(errors.ErrPluginMissing, "cannot build the demo project"),
			"Install pyenv-virtualenv, then run: pyup demo",
		)
	}

	if rep.Dir, err = ensureDir(rootDir); err != nil {
		return env, rep, err
	}

	if rep.Virtualenv, err = b.ensureVirtualenv(ctx, &env, &rep); err != nil {
		return env, rep, err
	}
	if rep.Virtualenv == StepSkipped {
		return env, rep, nil
	}

	if rep.PinFile, err = b.ensurePin(ctx, env); err != nil {
		return env, rep, err
	}
	pinned := rep.PinFile != StepSkipped

	// Without our pin the subshell would prove nothing about env.
	if pinned {
		rep.Verification, err = b.verify(ctx, rootDir)
		if err != nil {
			return env, rep, err
		}
		if !rep.Verification.OK {
			rep.Warnings = append(rep.Warnings, "The verification subshell failed; see its output above.")
		}
	} else {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf(
			"%s was kept, so %s does not select %s. Skipped the verification.",
			env.PinFile, rootDir, env.Name))
	}

	rep.Instructions = instructions(env, pinned)
	logger.Info("demo project ready", "version", env.Version, "verified", rep.Verification.OK)
	return env, rep, nil
}

func ensureDir(dir string) (Step, error) {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return StepAlreadyPresent, nil
	case err == nil:
		return StepSkipped, errors.Wrapf(errors.ErrPathConflict, "%s exists and is not a directory", dir)
	case !errors.Is(err, fs.ErrNotExist):
		return StepSkipped, errors.Wrapf(err, "checking %s", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return StepSkipped, errors.Wrapf(err, "creating %s", dir)
	}
	return StepDone, nil
}

// ensureVirtualenv reuses an environment with the configured name when
// pyenv already lists one. A listing failure counts as no environments.
func (b *Builder) ensureVirtualenv(ctx context.Context, env *Environment, rep *Report) (Step, error) {
	res, err := b.runner.Run(ctx, runner.Cmd{Name: "pyenv", Args: []string{"virtualenvs", "--bare"}})
	if err != nil {
		return StepSkipped, errors.Wrap(err, "listing virtualenvs")
	}
	if res.OK() {
		if found, base := findEnv(res.Lines(), env.Name); found {
			if base != "" && base != env.Version {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf(
					"%s already exists and uses Python %s, so the demo runs on %s instead of the selected %s. Remove it with 'pyenv virtualenv-delete %s' and re-run to rebuild it on %s.",
					env.Name, base, base, env.Version, env.Name, env.Version))
				env.Version = base
			}
			return StepAlreadyPresent, nil
		}
	}

	ok, err := b.gate.Confirm(ctx, decision.Request{
		ID:       "demo.virtualenv",
		Question: fmt.Sprintf("Create virtualenv %q from Python %s?", env.Name, env.Version),
		Detail:   fmt.Sprintf("Command: pyenv virtualenv %s %s", env.Version, env.Name),
		Default:  true,
	})
	if err != nil || !ok {
		return StepSkipped, err
	}

	c := runner.Cmd{Name: "pyenv", Args: []string{"virtualenv", env.Version, env.Name}, Interactive: true}
	res, err = b.runner.Run(ctx, c)
	if err != nil {
		return StepSkipped, errors.Wrap(err, "creating virtualenv")
	}
	if !res.OK() {
		return StepSkipped, errors.NewInstallStepError(res.Code, c.Name, c.Args...)
	}
	return StepDone, nil
}

// findEnv looks for name in `pyenv virtualenvs --bare` output, which lists
// both "<version>/envs/<name>" and "<name>". base is the version when the
// long form was seen.
func findEnv(lines []string, name string) (found bool, base string) {
	suffix := "/envs/" + name
	for _, l := range lines {
		l = strings.TrimSpace(l)
		switch {
		case l == name:
			found = true
		case strings.HasSuffix(l, suffix):
			found = true
			base = strings.TrimSuffix(l, suffix)
		}
	}
	return found, base
}

// ensurePin writes the pin file. A pin naming a different environment is
// user content and is only replaced after confirmation.
func (b *Builder) ensurePin(ctx context.Context, env Environment) (Step, error) {
	data, err := fileutil.ReadFileWithLimit(env.PinFile)
	switch {
	case err == nil:
		current := strings.TrimSpace(string(data))
		if current == env.PinContent {
			return StepAlreadyPresent, nil
		}
		ok, err := b.gate.Confirm(ctx, decision.Request{
			ID:       "demo.pin",
			Question: fmt.Sprintf("%s selects %q. Replace it with %q?", env.PinFile, current, env.PinContent),
			Default:  false,
		})
		if err != nil || !ok {
			return StepSkipped, err
		}
	case !errors.Is(err, fs.ErrNotExist):
		return StepSkipped, errors.Wrapf(err, "reading %s", env.PinFile)
	}

	if err := fileutil.AtomicWriteFile(env.PinFile, []byte(env.PinContent+"\n"), fileutil.DefaultPerm); err != nil {
		return StepSkipped, errors.Wrapf(err, "writing %s", env.PinFile)
	}
	return StepDone, nil
}

// verify runs the check in a child bash. PYENV_VERSION is removed so the
// pin file decides, and nothing the child does reaches this process.
func (b *Builder) verify(ctx context.Context, dir string) (Verification, error) {
	r := b.runner.WithEnv(b.runner.Env().Without("PYENV_VERSION"))
	res, err := r.Run(ctx, runner.Cmd{Name: "bash", Args: []string{"-lc", verifyScript, "pyup", dir}})
	if err != nil {
		return Verification{}, errors.Wrap(err, "running verification subshell")
	}

	v := Verification{OK: res.OK(), Output: strings.TrimSpace(res.Stdout + "\n" + res.Stderr)}
	for _, l := range res.Lines() {
		switch {
		case strings.HasPrefix(l, "Python "):
			v.PythonVersion = l
		case filepath.IsAbs(l):
			v.PythonPath = l
		}
	}
	// Python 2 printed its version on stderr.
	if v.PythonVersion == "" {
		for _, l := range strings.Split(res.Stderr, "\n") {
			if strings.HasPrefix(strings.TrimSpace(l), "Python ") {
				v.PythonVersion = strings.TrimSpace(l)
			}
		}
	}
	return v, nil
}

func instructions(env Environment, pinned bool) string {
	s := fmt.Sprintf(`Try it yourself:

  cd %s
  pyenv activate %s
  python -V
  which python
  pyenv deactivate`, env.Dir, env.Name)
	if pinned {
		s += fmt.Sprintf("\n\nEntering %s selects %q automatically because of its %s file.",
			env.Dir, env.Name, PinFileName)
	}
	return s
}
