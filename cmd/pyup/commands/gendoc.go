package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	buildinfo "github.com/thoreinstein/pyup/cmd"
	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/paths"
)

var (
	genDocDir    string
	genDocFormat string
)

var genDocCmd = &cobra.Command{
	Use:    "gen-doc",
	Short:  "Generate reference documentation for the CLI",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE:   runGenDoc,
}

func init() {
	genDocCmd.Flags().StringVarP(&genDocDir, "dir", "d", "", "output directory for documentation")
	genDocCmd.Flags().StringVar(&genDocFormat, "format", "markdown", "output format: markdown, man")
	rootCmd.AddCommand(genDocCmd)
}

func runGenDoc(cmd *cobra.Command, _ []string) error {
	if genDocDir == "" {
		return errors.NewUserError(errors.New("output directory is required"), "Pass --dir.")
	}
	if err := paths.EnsureDir(genDocDir, 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}

	var err error
	switch genDocFormat {
	case "markdown":
		err = doc.GenMarkdownTreeCustom(rootCmd, genDocDir, filePrepender, linkHandler)
	case "man":
		err = doc.GenManTree(rootCmd, &doc.GenManHeader{
			Title:   "PYUP",
			Section: "1",
			Source:  "pyup " + buildinfo.Version,
		}, genDocDir)
	default:
		return errors.NewUserError(errors.Newf("unknown format %q", genDocFormat), "Use markdown or man.")
	}
	if err != nil {
		return errors.Wrapf(err, "generating %s", genDocFormat)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Documentation generated in %s\n", genDocDir)
	return nil
}

// filePrepender adds front matter, e.g. pyup_backup_list.md gets the
// title "pyup backup list".
func filePrepender(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	title := strings.ReplaceAll(base, "_", " ")
	return fmt.Sprintf("---\ntitle: %q\ndescription: \"Reference for %s\"\n---\n", title, title)
}

func linkHandler(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + "/"
}
