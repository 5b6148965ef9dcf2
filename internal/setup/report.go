package setup

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/thoreinstein/pyup/internal/shellrc"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	warnColor    = color.New(color.FgYellow)
	okColor      = color.New(color.FgGreen)
)

// heading prints a blank line and a highlighted step title.
func (o *Orchestrator) heading(format string, args ...any) {
	fmt.Fprintln(o.out)
	headingColor.Fprintf(o.out, format+"\n", args...)
}

// lines prints warnings and appends them to dst.
func (o *Orchestrator) lines(msgs []string, dst *[]string) {
	for _, m := range msgs {
		fmt.Fprintln(o.out, warnColor.Sprint("! ")+m)
	}
	*dst = append(*dst, msgs...)
}

func (o *Orchestrator) notes(msgs []string) {
	for _, m := range msgs {
		fmt.Fprintln(o.out, strings.TrimRight(m, "\n"))
	}
}

func (o *Orchestrator) profile(res shellrc.Result) {
	switch res.Outcome {
	case shellrc.AlreadyPresent:
		fmt.Fprintf(o.out, "%s already initializes pyenv.\n", res.Where())
	case shellrc.Appended:
		okColor.Fprintf(o.out, "✓ Added pyenv init to %s\n", res.Where())
		if res.BackupID != "" {
			fmt.Fprintf(o.out, "  Previous version saved as backup %s (pyup backup restore %s)\n", res.BackupID, res.BackupID)
		}
		fmt.Fprintln(o.out, "  Restart your shell or run: exec \"$SHELL\"")
	case shellrc.Skipped:
		if res.Instructions != "" {
			fmt.Fprintln(o.out, strings.TrimRight(res.Instructions, "\n"))
		}
	}
}
