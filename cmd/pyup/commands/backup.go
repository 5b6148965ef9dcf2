package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/pyup/internal/backup"
	"github.com/thoreinstein/pyup/internal/decision"
	"github.com/thoreinstein/pyup/internal/errors"
)

var backupListJSON bool

func init() {
	backupListCmd.Flags().BoolVar(&backupListJSON, "json", false, "output in JSON format")
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage shell profile backups",
	Long: `pyup saves a copy of your shell startup file every time it changes it.
List those copies and put one back.`,
	Example: `  # List backups
  pyup backup list

  # Restore one
  pyup backup restore 20260412T093012

  See Also: pyup profile`,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available backups",
	Long:  `List shell profile backups, most recent first.`,
	Example: `  # List backups
  pyup backup list

  # Output as JSON
  pyup backup list --json

  See Also: pyup backup restore`,
	Args: cobra.NoArgs,
	RunE: runBackupList,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Restore a backup",
	Long: `Write the files of a backup back to where they came from.

The current files are backed up first, so a restore can itself be undone.`,
	Example: `  # Restore a backup by ID
  pyup backup restore 20260412T093012

  See Also: pyup backup list`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupRestore,
}

// backupInfoOutput represents a single backup in JSON output.
type backupInfoOutput struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Reason      string    `json:"reason,omitempty"`
	Files       []string  `json:"files"`
	PyupVersion string    `json:"pyup_version"`
}

func runBackupList(cmd *cobra.Command, _ []string) error {
	manifests, err := newBackupManager().List()
	if err != nil && !errors.Is(err, backup.ErrNoBackupsFound) {
		return errors.Wrap(err, "listing backups")
	}

	w := cmd.OutOrStdout()
	if backupListJSON {
		return outputBackupListJSON(w, manifests)
	}
	if len(manifests) == 0 {
		fmt.Fprintln(w, "No backups yet. pyup makes one whenever it changes your shell profile.")
		return nil
	}
	return outputBackupListTabular(w, manifests)
}

func outputBackupListJSON(w io.Writer, manifests []backup.Manifest) error {
	out := make([]backupInfoOutput, len(manifests))
	for i, m := range manifests {
		out[i] = backupInfoOutput{
			ID:          m.ID,
			CreatedAt:   m.CreatedAt,
			Reason:      m.Reason,
			Files:       originalPaths(m),
			PyupVersion: m.PyupVersion,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(out), "encoding JSON")
}

func outputBackupListTabular(w io.Writer, manifests []backup.Manifest) error {
	bold := color.New(color.Bold).SprintFunc()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", bold("ID"), bold("CREATED"), bold("REASON"), bold("FILES"))
	for _, m := range manifests {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			color.GreenString(m.ID),
			m.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			m.Reason,
			strings.Join(originalPaths(m), ", "))
	}
	return errors.Wrap(tw.Flush(), "writing backups")
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	id := args[0]
	mgr := newBackupManager()

	manifest, err := mgr.Get(id)
	if err != nil {
		return errors.WithHint(err, "Run 'pyup backup list' to see available backups.")
	}

	files := originalPaths(*manifest)
	ok, err := newPrompter(cmd).Confirm(commandContext(cmd), decision.Request{
		ID:       "backup.restore",
		Question: fmt.Sprintf("Restore backup %s?", id),
		Detail:   "This overwrites:\n  " + strings.Join(files, "\n  "),
		Default:  false,
	})
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "Restore cancelled. Nothing changed.")
		return nil
	}

	if _, err := mgr.Restore(id); err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintf(cmd.OutOrStdout(), "%s Restored %s\n", color.GreenString("✓"), f)
	}
	return nil
}

func originalPaths(m backup.Manifest) []string {
	out := make([]string, len(m.Files))
	for i, f := range m.Files {
		out[i] = f.OriginalPath
	}
	return out
}
