// Package commands implements the CLI commands for pyup.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	buildinfo "github.com/thoreinstein/pyup/cmd"
	"github.com/thoreinstein/pyup/internal/backup"
	"github.com/thoreinstein/pyup/internal/cli/prompt"
	"github.com/thoreinstein/pyup/internal/config"
	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/logging"
	"github.com/thoreinstein/pyup/internal/paths"
)

var (
	// verbosity holds the count of -v flags.
	verbosity int
	// quiet holds the value of the -q/--quiet flag.
	quiet bool
	// logFormat holds the value of the --log-format flag.
	logFormat string
	// logFile holds the path of the rotating JSON log.
	logFile string
	// configPath overrides the config file location.
	configPath string
	// plainPrompts forces line prompts instead of forms.
	plainPrompts bool
)

var (
	// cfg is the configuration loaded before any command runs.
	cfg *config.Config
	// configLoadErr holds any error that occurred during config loading.
	configLoadErr error
	// logCloser closes the --log-file writer.
	logCloser io.Closer
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error log output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"also write JSON logs to this file, rotated (bare flag: $XDG_STATE_HOME/pyup/pyup.log)")
	rootCmd.PersistentFlags().Lookup("log-file").NoOptDefVal = paths.LogFile()
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default $XDG_CONFIG_HOME/pyup/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&plainPrompts, "plain", false,
		"use plain line prompts instead of interactive forms")

	rootCmd.Version = buildinfo.Version
	backup.Version = buildinfo.Version
	rootCmd.SetVersionTemplate("pyup version {{.Version}}\n")

	// Silence errors and usage so Execute controls error output.
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	cfg, configLoadErr = config.Load(configPath)
}

var rootCmd = &cobra.Command{
	Use:   "pyup",
	Short: "Install pyenv and a Python version, interactively",
	Long: `pyup installs pyenv and pyenv-virtualenv on macOS and Ubuntu (including
Ubuntu under WSL), then walks you through picking, building and trying out a
CPython release.

Every step checks what is already there first, so pyup can be re-run at any
time. Nothing on your system changes without a yes from you.

Running pyup with no subcommand is the same as 'pyup setup'.`,
	Example: `  # Run the full interactive setup
  pyup

  # List the newest stable versions pyenv can build
  pyup versions

  # Check the installation
  pyup doctor

  See Also: pyup setup, pyup doctor, pyup config`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfig(cmd)
	},
	RunE: runSetup,
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("conflicting flags"), "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity
		if v == 0 {
			if val, ok := os.LookupEnv("PYUP_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2
				case "2":
					v = 3
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	handler := logging.NewConsoleHandler(logging.Config{
		Level:  level,
		Format: logging.Format(logFormat),
		Output: cmd.ErrOrStderr(),
	})

	if logFile != "" {
		fileHandler, closer := logging.NewFileHandler(logging.FileConfig{Path: logFile})
		logCloser = closer
		handler = logging.NewFanout(handler, fileHandler)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))
	return nil
}

// checkConfig reports a config load failure, except for commands that
// must work with a broken config.
func checkConfig(cmd *cobra.Command) error {
	switch cmd.Name() {
	case "help", "version", "doctor":
		return nil
	}
	if cmd == configCmd || cmd.Parent() == configCmd {
		// The config commands are how a broken file gets fixed.
		return nil
	}
	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}
	if problems := config.Validate(cfg); len(problems) > 0 {
		return errors.NewConfigError(errors.Wrap(problems[0], "invalid configuration"))
	}
	return nil
}

// Execute runs the root command and returns the process exit code.
// SIGINT and SIGTERM cancel the command context, which kills any child.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if logCloser != nil {
		_ = logCloser.Close()
	}
	return reportError(rootCmd.ErrOrStderr(), err)
}

// reportError prints err the way users see it and returns the exit code.
func reportError(w io.Writer, err error) int {
	if err == nil {
		return errors.ExitSuccess
	}

	if errors.Is(err, prompt.ErrCancelled) || errors.Is(err, context.Canceled) {
		fmt.Fprintln(w, "\nInterrupted by user.")
		return errors.ExitUser
	}

	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		// Already reported, e.g. doctor findings.
		return exitErr.Code
	}

	fmt.Fprintf(w, "Error: %v\n", err)
	suggestion := errors.FlattenHints(err)
	if exitErr != nil && exitErr.Suggestion != "" {
		suggestion = exitErr.Suggestion
	}
	if suggestion != "" {
		fmt.Fprintf(w, "Suggestion: %s\n", suggestion)
	}
	return exitCode(err)
}

// exitCode maps an error to ExitUser or ExitSystem.
func exitCode(err error) int {
	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	for _, userErr := range []error{
		errors.ErrUnsupportedPlatform,
		errors.ErrToolMissing,
		errors.ErrVersionNotFound,
		errors.ErrInvalidConfig,
		errors.ErrDeclined,
		errors.ErrNotFound,
		backup.ErrNoBackupsFound,
		backup.ErrInvalidID,
	} {
		if errors.Is(err, userErr) {
			return errors.ExitUser
		}
	}
	return errors.ExitSystem
}
