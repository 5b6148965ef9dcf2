package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/pyup/internal/setup"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run the full interactive setup",
	Long: `Detect the platform, install pyenv and pyenv-virtualenv if needed, add
pyenv to your shell profile, then pick a Python version to build and
optionally create a demo project that uses it.

Each step asks before it changes anything and is skipped when its result is
already in place.`,
	Example: `  # Run setup
  pyup setup

  # Use plain prompts, e.g. over a serial console
  pyup setup --plain

  See Also: pyup versions, pyup demo, pyup profile`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func runSetup(cmd *cobra.Command, _ []string) error {
	home, err := resolveHome()
	if err != nil {
		return err
	}
	c := currentConfig()

	o := setup.New(cmd.OutOrStdout(), newPrompter(cmd), newRunner(cmd), newStore(), newBackupManager(), setup.Options{
		Home:           home,
		PyenvRoot:      c.PyenvRoot,
		Shell:          c.Shell,
		CatalogLimit:   c.CatalogLimit,
		DemoDir:        c.Demo.Dir,
		DemoEnvName:    c.Demo.EnvName,
		InstallPlugin:  c.InstallPlugin,
		InstallerURL:   c.InstallerURL,
		PyenvRepo:      c.PyenvRepo,
		VirtualenvRepo: c.VirtualenvRepo,
	})

	_, err = o.Run(commandContext(cmd), detectPlatform())
	return err
}
