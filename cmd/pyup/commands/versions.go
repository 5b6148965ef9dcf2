package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/pyup/internal/catalog"
	"github.com/thoreinstein/pyup/internal/cli/prompt"
	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/pyversion"
)

var (
	versionsLimit int
	versionsAll   bool
	versionsJSON  bool
	versionsPick  bool
)

// pickVersion is replaced in tests.
var pickVersion = prompt.PickVersion

func init() {
	versionsCmd.Flags().IntVarP(&versionsLimit, "limit", "n", 0,
		"number of versions to show (default from config, 0 in config means all)")
	versionsCmd.Flags().BoolVar(&versionsAll, "all", false,
		"show every catalog line with its classification")
	versionsCmd.Flags().BoolVar(&versionsJSON, "json", false,
		"output as JSON")
	versionsCmd.Flags().BoolVar(&versionsPick, "pick", false,
		"choose a version with a fuzzy finder and print it")
	versionsCmd.MarkFlagsMutuallyExclusive("all", "pick")
	versionsCmd.MarkFlagsMutuallyExclusive("json", "pick")
	rootCmd.AddCommand(versionsCmd)
}

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List stable Python versions pyenv can build",
	Long: `List the newest stable CPython releases from 'pyenv install --list',
newest first. Release candidates, development builds and other
implementations are left out unless --all is given.

Versions already installed are marked.`,
	Example: `  # Newest stable versions
  pyup versions

  # The 25 newest
  pyup versions --limit 25

  # Every line with its classification
  pyup versions --all

  # Choose interactively and print the choice
  pyup versions --pick

  See Also: pyup setup`,
	Args: cobra.NoArgs,
	RunE: runVersions,
}

// versionOutput is one entry in --json output.
type versionOutput struct {
	Version   string       `json:"version"`
	Kind      catalog.Kind `json:"kind"`
	Installed bool         `json:"installed"`
}

func runVersions(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	r, err := pyenvRunner(cmd)
	if err != nil {
		return err
	}

	cat := catalog.New(r)
	installedList, err := pyversion.New(r, nil).Installed(ctx)
	if err != nil {
		return err
	}
	installed := make(map[string]bool, len(installedList))
	for _, v := range installedList {
		installed[v] = true
	}

	w := cmd.OutOrStdout()

	if versionsAll {
		all, err := cat.All(ctx)
		if err != nil {
			return err
		}
		out := make([]versionOutput, len(all))
		for i, c := range all {
			out[i] = versionOutput{Version: c.Raw, Kind: c.Kind, Installed: installed[c.Raw]}
		}
		return writeVersions(w, out)
	}

	limit := versionsLimit
	if !cmd.Flags().Changed("limit") {
		limit = currentConfig().CatalogLimit
	}
	view, err := cat.ListStable(ctx, limit)
	if err != nil {
		return err
	}

	if versionsPick {
		e, err := pickVersion(view.Entries, installed)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, e.Raw)
		return nil
	}

	out := make([]versionOutput, view.Len())
	for i, e := range view.Entries {
		out[i] = versionOutput{Version: e.Raw, Kind: e.Kind, Installed: installed[e.Raw]}
	}
	return writeVersions(w, out)
}

func writeVersions(w io.Writer, out []versionOutput) error {
	if versionsJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(out), "encoding JSON")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, v := range out {
		mark := ""
		if v.Installed {
			mark = color.GreenString("installed")
		}
		if versionsAll {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Version, v.Kind, mark)
			continue
		}
		fmt.Fprintf(tw, "%3d)\t%s\t%s\n", i+1, v.Version, mark)
	}
	return errors.Wrap(tw.Flush(), "writing versions")
}
