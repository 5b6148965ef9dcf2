package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/pyup/internal/catalog"
	"github.com/thoreinstein/pyup/internal/demo"
	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/pyversion"
	"github.com/thoreinstein/pyup/internal/state"
)

func init() {
	rootCmd.AddCommand(demoCmd)
}

var demoCmd = &cobra.Command{
	Use:   "demo [version]",
	Short: "Build the pyenv-virtualenv demo project",
	Long: `Create the demo directory, a virtualenv backed by an installed Python
version and a .python-version file that selects it, then check the result in
a subshell.

Without a version argument the version from the last 'pyup setup' run is
used. The version must already be installed.`,
	Example: `  # Use the version chosen during setup
  pyup demo

  # Use a specific installed version
  pyup demo 3.12.4

  See Also: pyup setup, pyup versions`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDemo,
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	c := currentConfig()

	r, err := pyenvRunner(cmd)
	if err != nil {
		return err
	}

	raw := ""
	if len(args) == 1 {
		raw = args[0]
	} else {
		st, err := newStore().Load()
		if err != nil {
			return err
		}
		raw = demoVersion(st)
	}
	if raw == "" {
		return errors.WithHint(
			errors.Wrap(errors.ErrVersionNotFound, "no version given and none recorded"),
			"Pass a version, for example: pyup demo 3.12.4",
		)
	}

	entry, ok := catalog.ParseStable(raw)
	if !ok {
		return errors.Wrapf(errors.ErrVersionNotFound, "%q is not a stable version", raw)
	}
	installed, err := pyversion.New(r, nil).IsInstalled(ctx, entry)
	if err != nil {
		return err
	}
	if !installed {
		return errors.WithHint(
			errors.Wrapf(errors.ErrVersionNotFound, "Python %s is not installed", raw),
			"Run: pyup setup",
		)
	}

	env, rep, err := demo.New(r, newPrompter(cmd), demo.Options{EnvName: c.Demo.EnvName}).Build(ctx, entry, c.Demo.Dir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Directory:   %s (%s)\n", env.Dir, rep.Dir)
	fmt.Fprintf(out, "Virtualenv:  %s on Python %s (%s)\n", env.Name, env.Version, rep.Virtualenv)
	fmt.Fprintf(out, "Pin file:    %s (%s)\n", env.PinFile, rep.PinFile)
	for _, w := range rep.Warnings {
		fmt.Fprintf(out, "! %s\n", w)
	}
	if rep.Verification.OK {
		fmt.Fprintf(out, "Verified:    %s at %s\n", rep.Verification.PythonVersion, rep.Verification.PythonPath)
	}
	if rep.Instructions != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, rep.Instructions)
	}

	if rep.Virtualenv != demo.StepSkipped {
		if err := newStore().Update(func(st *state.State) {
			st.Demo = state.Demo{EnvName: env.Name, Version: env.Version, Dir: env.Dir}
		}); err != nil {
			return errors.Wrap(err, "recording demo state")
		}
	}
	return nil
}

// demoVersion picks the recorded version to build the demo on.
func demoVersion(st *state.State) string {
	switch {
	case st.Python.LastVersion != "":
		return st.Python.LastVersion
	case st.Demo.Version != "":
		return st.Demo.Version
	default:
		return st.Python.Global
	}
}
