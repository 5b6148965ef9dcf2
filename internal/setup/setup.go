// Package setup sequences the interactive flow: install pyenv, pick and
// build an interpreter, wire the shell profile and build the demo project.
//
// The Orchestrator is the only component that talks to the user. Every
// other package receives the same decision.Prompter as a Gate.
package setup

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thoreinstein/pyup/internal/backup"
	"github.com/thoreinstein/pyup/internal/catalog"
	"github.com/thoreinstein/pyup/internal/decision"
	"github.com/thoreinstein/pyup/internal/demo"
	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/logging"
	"github.com/thoreinstein/pyup/internal/platform"
	"github.com/thoreinstein/pyup/internal/pyversion"
	"github.com/thoreinstein/pyup/internal/runner"
	"github.com/thoreinstein/pyup/internal/shellrc"
	"github.com/thoreinstein/pyup/internal/state"
	"github.com/thoreinstein/pyup/internal/toolinstall"
)

// quitWords end the version prompt without an error.
var quitWords = map[string]bool{"q": true, "quit": true, "exit": true}

// Options configures a run.
type Options struct {
	Home           string
	PyenvRoot      string
	Shell          string
	CatalogLimit   int
	DemoDir        string
	DemoEnvName    string
	InstallPlugin  bool
	InstallerURL   string
	PyenvRepo      string
	VirtualenvRepo string
}

// Summary is what a run did.
type Summary struct {
	RunID    string
	Platform platform.Platform
	Tool     toolinstall.Report
	Plugin   toolinstall.PluginReport
	Profile  shellrc.Result
	// Version is zero when the user quit at the version prompt.
	Version catalog.Entry
	Install pyversion.Outcome
	Global  bool
	// Demo is nil when the demo was not attempted.
	Demo     *demo.Report
	Warnings []string
	Quit     bool
}

// Orchestrator runs the setup flow.
type Orchestrator struct {
	out      io.Writer
	prompter decision.Prompter
	runner   runner.Runner
	store    *state.Store
	backups  *backup.Manager
	opts     Options
	newID    func() string
	now      func() time.Time
}

// New returns an Orchestrator. store and backups may be nil.
func New(out io.Writer, p decision.Prompter, r runner.Runner, store *state.Store, backups *backup.Manager, opts Options) *Orchestrator {
	return &Orchestrator{
		out:      out,
		prompter: p,
		runner:   r,
		store:    store,
		backups:  backups,
		opts:     opts,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Run executes the flow on p. A required step that fails stops the flow
// and is returned; optional steps that fail are collected as warnings.
func (o *Orchestrator) Run(ctx context.Context, p platform.Platform) (Summary, error) {
	sum := Summary{RunID: o.newID(), Platform: p}
	logger := logging.FromContext(ctx).With("run_id", sum.RunID)
	ctx = logging.NewContext(ctx, logger)
	logger.Info("setup started", "platform", p.String())

	o.heading("Detected %s.", p.Label())

	inst := toolinstall.New(o.runner, o.prompter, o.store, toolinstall.Options{
		PyenvRoot:      o.opts.PyenvRoot,
		InstallerURL:   o.opts.InstallerURL,
		PyenvRepo:      o.opts.PyenvRepo,
		VirtualenvRepo: o.opts.VirtualenvRepo,
		InstallPlugin:  o.opts.InstallPlugin,
	})

	var err error
	sum.Tool, err = inst.EnsureInstalled(ctx, p)
	if err != nil {
		return sum, err
	}
	o.lines(sum.Tool.Warnings, &sum.Warnings)
	o.notes(sum.Tool.Notes)
	if sum.Tool.Skipped {
		return sum, errors.WithHint(
			errors.Wrap(errors.ErrToolMissing, "pyenv installation declined"),
			"Re-run pyup setup when you are ready to install pyenv.",
		)
	}
	if sum.Tool.AlreadyPresent {
		fmt.Fprintf(o.out, "pyenv is already installed (%s).\n", sum.Tool.State)
	}

	r := o.runner.WithEnv(sum.Tool.Env)

	if o.opts.InstallPlugin && !sum.Tool.PluginInstalled {
		sum.Plugin, err = inst.EnsurePlugin(ctx, p, sum.Tool.Env)
		if err := o.optional(err, &sum.Warnings, errors.ErrInstallStep); err != nil {
			return sum, err
		}
		o.notes(sum.Plugin.Notes)
	}

	writer := shellrc.New(o.prompter, o.backups, shellrc.Options{Home: o.opts.Home, PyenvRoot: o.opts.PyenvRoot})
	sum.Profile, err = writer.EnsureInitSnippet(ctx, shellrc.KindFromEnv(sum.Tool.Env, o.opts.Shell))
	if err := o.optional(err, &sum.Warnings, errors.ErrProfileWrite); err != nil {
		return sum, err
	}
	o.profile(sum.Profile)

	entry, quit, err := o.chooseVersion(ctx, catalog.New(r))
	if err != nil {
		return sum, err
	}
	if quit {
		sum.Quit = true
		fmt.Fprintln(o.out, "No version selected. Exiting.")
		return sum, nil
	}
	sum.Version = entry

	pv := pyversion.New(r, o.prompter)
	o.heading("Checking Python %s...", entry.Raw)
	sum.Install, err = pv.Ensure(ctx, entry)
	if err != nil {
		fmt.Fprintf(o.out, "pyenv failed to install Python %s.\n", entry.Raw)
		return sum, err
	}
	switch sum.Install.Kind {
	case pyversion.AlreadyPresent:
		fmt.Fprintf(o.out, "Python %s is already installed.\n", entry.Raw)
	case pyversion.Installed:
		fmt.Fprintf(o.out, "Python %s installed successfully via pyenv.\n", entry.Raw)
	case pyversion.Declined:
		fmt.Fprintf(o.out, "Skipping installation of Python %s.\n", entry.Raw)
		o.record(ctx, sum)
		return sum, nil
	}

	sum.Global, err = pv.SetGlobal(ctx, entry)
	if err := o.optional(err, &sum.Warnings, errors.ErrInstallStep); err != nil {
		return sum, err
	}
	if sum.Global {
		fmt.Fprintf(o.out, "Global pyenv version set to %s. New shells will use it unless a directory pins another version.\n", entry.Raw)
	}

	if err := o.runDemo(ctx, r, entry, &sum); err != nil {
		return sum, err
	}

	o.record(ctx, sum)
	fmt.Fprintln(o.out)
	fmt.Fprintln(o.out, "All done. You can re-run pyup at any time to install other versions.")
	logger.Info("setup finished", "version", entry.Raw, "warnings", len(sum.Warnings))
	return sum, nil
}

// chooseVersion shows the catalog and reads a choice until it resolves or
// the user quits. An unavailable catalog falls back to manual entry.
func (o *Orchestrator) chooseVersion(ctx context.Context, cat *catalog.Catalog) (catalog.Entry, bool, error) {
	o.heading("Retrieving available CPython versions from pyenv...")

	manual := false
	view, err := cat.ListStable(ctx, o.opts.CatalogLimit)
	switch {
	case errors.Is(err, errors.ErrCatalogUnavailable):
		manual = true
		fmt.Fprintf(o.out, "Could not list versions: %v\n", err)
		fmt.Fprintln(o.out, "Type an exact version such as 3.12.4 instead.")
	case err != nil:
		return catalog.Entry{}, false, err
	default:
		fmt.Fprintln(o.out, "Select a Python version to install:")
		for i, e := range view.Entries {
			fmt.Fprintf(o.out, "  %2d) %s\n", i+1, e.Raw)
		}
		fmt.Fprintln(o.out, "\nYou can choose by number, or type an exact version (e.g. 3.12.4).")
	}

	for {
		choice, err := o.prompter.Ask(ctx, "Your choice (or 'q' to quit)")
		if err != nil {
			return catalog.Entry{}, false, err
		}
		choice = strings.TrimSpace(choice)
		if choice == "" {
			continue
		}
		if quitWords[strings.ToLower(choice)] {
			return catalog.Entry{}, true, nil
		}

		e, err := cat.Resolve(ctx, view, choice)
		switch {
		case err == nil:
			return e, false, nil
		case errors.Is(err, errors.ErrCatalogUnavailable):
			// Nothing to validate against; let pyenv decide.
			if literal, ok := catalog.ParseStable(choice); ok && manual {
				return literal, false, nil
			}
			fmt.Fprintf(o.out, "Cannot check %q: %v\n", choice, err)
		case errors.Is(err, errors.ErrVersionNotFound):
			fmt.Fprintln(o.out, err.Error())
			if hint := errors.FlattenHints(err); hint != "" {
				fmt.Fprintln(o.out, hint)
			}
		default:
			return catalog.Entry{}, false, err
		}
	}
}

func (o *Orchestrator) runDemo(ctx context.Context, r runner.Runner, entry catalog.Entry, sum *Summary) error {
	ok, err := o.prompter.Confirm(ctx, decision.Request{
		ID:       "demo.create",
		Question: "Create a demo project using pyenv-virtualenv?",
		Detail:   fmt.Sprintf("Directory: %s\nEnvironment: %s (Python %s)", o.opts.DemoDir, o.opts.DemoEnvName, entry.Raw),
		Default:  true,
	})
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(o.out, "Skipping demo virtualenv creation.")
		return nil
	}

	o.heading("Setting up a demo project using pyenv-virtualenv...")
	b := demo.New(r, o.prompter, demo.Options{EnvName: o.opts.DemoEnvName})
	env, rep, err := b.Build(ctx, entry, o.opts.DemoDir)
	if errors.Is(err, errors.ErrPluginMissing) {
		fmt.Fprintln(o.out, "pyenv-virtualenv is not available; skipping the demo project.")
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintln(o.out, hint)
		}
		return nil
	}
	if err := o.optional(err, &sum.Warnings, errors.ErrPathConflict, errors.ErrInstallStep); err != nil {
		return err
	}
	if err != nil {
		return nil
	}

	sum.Demo = &rep
	o.lines(rep.Warnings, &sum.Warnings)
	if rep.Verification.OK {
		fmt.Fprintf(o.out, "Verified: %s at %s\n", rep.Verification.PythonVersion, rep.Verification.PythonPath)
	}
	if rep.Instructions != "" {
		fmt.Fprintln(o.out)
		fmt.Fprintln(o.out, rep.Instructions)
	}
	if o.store != nil && rep.Virtualenv != demo.StepSkipped {
		if err := o.store.Update(func(st *state.State) {
			st.Demo = state.Demo{EnvName: env.Name, Version: env.Version, Dir: env.Dir}
		}); err != nil {
			logging.FromContext(ctx).Warn("recording demo state failed", "error", err)
		}
	}
	return nil
}

// optional downgrades err to a warning when it matches one of marks. Any
// other error is returned unchanged.
func (o *Orchestrator) optional(err error, warnings *[]string, marks ...error) error {
	if err == nil {
		return nil
	}
	for _, m := range marks {
		if errors.Is(err, m) {
			msg := err.Error()
			if hint := errors.FlattenHints(err); hint != "" {
				msg += "\n  " + hint
			}
			o.lines([]string{msg}, warnings)
			return nil
		}
	}
	return err
}

// record persists the run in the state file. Failures are logged only.
func (o *Orchestrator) record(ctx context.Context, sum Summary) {
	if o.store == nil {
		return
	}
	err := o.store.Update(func(st *state.State) {
		st.LastRun = state.LastRun{ID: sum.RunID, Platform: sum.Platform.String(), At: o.now().UTC()}
		if sum.Install.Kind == pyversion.Installed || sum.Install.Kind == pyversion.AlreadyPresent {
			st.Python.LastVersion = sum.Version.Raw
		}
		if sum.Global {
			st.Python.Global = sum.Version.Raw
		}
	})
	if err != nil {
		logging.FromContext(ctx).Warn("recording run state failed", "error", err)
	}
}
