package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	buildinfo "github.com/thoreinstein/pyup/cmd"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print pyup's version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), buildinfo.BuildInfo())
	},
}
