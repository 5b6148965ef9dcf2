package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/pyup/internal/doctor"
	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/paths"
	"github.com/thoreinstein/pyup/internal/shellrc"
)

var (
	doctorJSON    bool
	doctorQuiet   bool
	doctorVerbose bool
	doctorFix     bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false,
		"suppress output, exit code only")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "verbose", false,
		"show detailed check-by-check output")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"remove group and world write access from pyup's files")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose the pyenv installation",
	Long: `Run diagnostic checks on the host, pyenv, pyenv-virtualenv, the shell
profile and pyup's own files. Nothing is changed unless --fix is given.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --verbose   Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	Args:    cobra.NoArgs,
	PreRunE: validateDoctorFlags,
	RunE:    runDoctor,
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	count := 0
	for _, set := range []bool{doctorJSON, doctorQuiet, doctorVerbose} {
		if set {
			count++
		}
	}
	if count > 1 {
		return errors.NewUserError(
			errors.New("flags --json, --quiet, and --verbose are mutually exclusive"),
			"Pick one output mode.",
		)
	}
	return nil
}

// doctorChecks builds the checks for the current host.
func doctorChecks(cmd *cobra.Command) []doctor.Check {
	c := currentConfig()
	p := detectPlatform()
	r := newRunner(cmd)
	if env, ok := pyenvEnv(cmd); ok {
		r = r.WithEnv(env)
	}

	home, _ := resolveHome()
	writer := shellrc.New(nil, nil, shellrc.Options{Home: home, PyenvRoot: c.PyenvRoot})

	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = paths.ConfigFile()
	}
	store := newStore()

	return []doctor.Check{
		doctor.NewPlatformCheck(p),
		doctor.NewBuildToolsCheck(r, p),
		doctor.NewPyenvCheck(r, c.PyenvRoot),
		doctor.NewPluginCheck(r),
		doctor.NewProfileCheck(writer, shellrc.KindFromEnv(r.Env(), c.Shell)),
		doctor.NewEnvironmentCheck(r.Env()),
		doctor.NewConfigCheck(cfgPath, cfg),
		doctor.NewStateCheck(store),
		doctor.NewPathPermissionCheck(
			[]string{paths.ConfigDir(), paths.StateDir(), paths.ProfileBackupDir()},
			[]string{cfgPath, store.Path},
		),
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	runner := doctor.NewRunner()
	checks := doctorChecks(cmd)
	for _, c := range checks {
		runner.AddCheck(c)
	}

	report := runner.Run(commandContext(cmd))
	w := cmd.OutOrStdout()

	if err := outputDoctorReport(w, report); err != nil {
		return err
	}

	if doctorFix {
		applyFixes(w, checks)
	}

	switch {
	case report.HasErrors():
		return errors.NewExitError(nil, errors.ExitSystem)
	case report.HasWarnings():
		return errors.NewExitError(nil, errors.ExitUser)
	}
	return nil
}

func applyFixes(w io.Writer, checks []doctor.Check) {
	for _, c := range checks {
		fixer, ok := c.(doctor.Fixer)
		if !ok || !fixer.CanFix() {
			continue
		}
		for _, res := range fixer.Fix() {
			if doctorQuiet {
				continue
			}
			if res.Error != nil {
				fmt.Fprintf(w, "%s fix failed for %s: %v\n", color.RedString("✗"), res.Path, res.Error)
				continue
			}
			fmt.Fprintf(w, "%s %s\n", color.GreenString("✓"), res.Description)
		}
	}
}

func outputDoctorReport(w io.Writer, report *doctor.Report) error {
	if doctorQuiet {
		return nil
	}
	if doctorJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(report), "encoding JSON")
	}
	outputDoctorText(w, report)
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.Report) {
	// Normal mode shows only problems.
	showAll := doctorVerbose

	hasOutput := false
	for _, result := range report.Results {
		problem := result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning
		if !showAll && !problem {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)
		if result.FixHint != "" && problem {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
		if showAll {
			for _, k := range slices.Sorted(maps.Keys(result.Details)) {
				fmt.Fprintf(w, "  %s: %v\n", k, result.Details[k])
			}
		}
	}

	if hasOutput {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return color.GreenString("✓")
	case doctor.SeverityInfo:
		return color.CyanString("ℹ")
	case doctor.SeverityWarning:
		return color.YellowString("⚠")
	case doctor.SeverityError:
		return color.RedString("✗")
	default:
		return "?"
	}
}
