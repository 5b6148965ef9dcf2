package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/pyup/internal/backup"
	"github.com/thoreinstein/pyup/internal/cli/prompt"
	"github.com/thoreinstein/pyup/internal/config"
	"github.com/thoreinstein/pyup/internal/decision"
	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/paths"
	"github.com/thoreinstein/pyup/internal/platform"
	"github.com/thoreinstein/pyup/internal/runner"
	"github.com/thoreinstein/pyup/internal/state"
	"github.com/thoreinstein/pyup/internal/toolinstall"
)

// Seams replaced in tests.
var (
	detectPlatform = platform.DetectHost
	resolveHome    = paths.ResolveHome

	newRunner = func(cmd *cobra.Command) runner.Runner {
		return runner.New(runner.FromOS(),
			runner.WithStdio(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr()))
	}

	newPrompter = func(cmd *cobra.Command) decision.Prompter {
		if !plainPrompts {
			if fp := prompt.NewFormPrompter(); fp.Interactive() {
				return fp
			}
		}
		return prompt.NewLinePrompterWithIO(cmd.InOrStdin(), cmd.OutOrStdout())
	}

	newStore = state.DefaultStore

	newBackupManager = func() *backup.Manager {
		return backup.NewManager(backup.WithRetentionCount(currentConfig().Backup.Retention))
	}
)

// currentConfig returns the loaded config, or the defaults when loading
// failed and the command tolerates that.
func currentConfig() *config.Config {
	if cfg != nil {
		return cfg
	}
	return &config.Config{
		Version:        1,
		PyenvRoot:      mustExpand(config.DefaultPyenvRoot()),
		CatalogLimit:   config.DefaultCatalogLimit,
		InstallPlugin:  true,
		InstallerURL:   config.DefaultInstallerURL,
		PyenvRepo:      config.DefaultPyenvRepo,
		VirtualenvRepo: config.DefaultVirtualenvRepo,
		Demo: config.DemoConfig{
			Dir:     mustExpand(paths.DefaultDemoDir),
			EnvName: config.DefaultEnvName,
		},
		Backup: config.BackupConfig{Retention: config.DefaultRetention},
	}
}

func mustExpand(p string) string {
	if expanded, err := paths.Expand(p); err == nil {
		return expanded
	}
	return p
}

// pyenvEnv returns the snapshot under which pyenv resolves, if it does.
func pyenvEnv(cmd *cobra.Command) (runner.Env, bool) {
	inst := toolinstall.New(newRunner(cmd), nil, nil, toolinstall.Options{PyenvRoot: currentConfig().PyenvRoot})
	return inst.Present()
}

// pyenvRunner returns a runner whose PATH finds pyenv, or ErrToolMissing.
func pyenvRunner(cmd *cobra.Command) (runner.Runner, error) {
	env, ok := pyenvEnv(cmd)
	if !ok {
		return nil, errors.WithHint(
			errors.Wrap(errors.ErrToolMissing, "pyenv is not installed"),
			"Run: pyup setup",
		)
	}
	return newRunner(cmd).WithEnv(env), nil
}

// commandContext returns cmd's context, never nil.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
