package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/pyup/internal/shellrc"
)

var profileShell string

func init() {
	profileCmd.Flags().StringVar(&profileShell, "shell", "",
		"shell to configure (default from config, then $SHELL)")
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Add pyenv initialization to your shell profile",
	Long: `Append the pyenv init block to the startup file of your shell:
~/.zshrc for zsh, ~/.bashrc for bash and ~/.profile for sh, dash and ksh.

The block is only added once. You are shown a diff and asked before the file
changes, and the previous version is saved as a backup you can restore with
'pyup backup restore'.`,
	Example: `  # Update the profile of your login shell
  pyup profile

  # Update ~/.bashrc even though your shell is zsh
  pyup profile --shell bash

  See Also: pyup backup list, pyup doctor`,
	Args: cobra.NoArgs,
	RunE: runProfile,
}

func runProfile(cmd *cobra.Command, _ []string) error {
	home, err := resolveHome()
	if err != nil {
		return err
	}
	c := currentConfig()

	override := c.Shell
	if profileShell != "" {
		override = profileShell
	}
	kind := shellrc.KindFromEnv(newRunner(cmd).Env(), override)

	w := shellrc.New(newPrompter(cmd), newBackupManager(), shellrc.Options{Home: home, PyenvRoot: c.PyenvRoot})
	res, err := w.EnsureInitSnippet(commandContext(cmd), kind)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch res.Outcome {
	case shellrc.AlreadyPresent:
		fmt.Fprintf(out, "%s already initializes pyenv. Nothing to do.\n", res.Where())
	case shellrc.Appended:
		fmt.Fprintf(out, "Added pyenv init to %s.\n", res.Where())
		if res.BackupID != "" {
			fmt.Fprintf(out, "Previous version saved as backup %s.\n", res.BackupID)
		}
		fmt.Fprintln(out, "Restart your shell or run: exec \"$SHELL\"")
	case shellrc.Skipped:
		fmt.Fprintln(out, strings.TrimRight(res.Instructions, "\n"))
	}
	return nil
}
