// Package shellrc adds pyenv's init snippet to the user's shell profile.
//
// The change is append-only and idempotent: a profile that already carries
// the pyup markers, or any "pyenv init" line, is left untouched. The user
// sees a diff of the append before confirming, and the previous profile is
// backed up first.
package shellrc

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	udiff "github.com/aymanbagabas/go-udiff"

	"github.com/thoreinstein/pyup/internal/backup"
	"github.com/thoreinstein/pyup/internal/decision"
	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/logging"
	"github.com/thoreinstein/pyup/internal/runner"
	"github.com/thoreinstein/pyup/pkg/fileutil"
)

// Markers delimit the block pyup appends.
const (
	BeginMarker = "# >>> pyup pyenv init >>>"
	EndMarker   = "# <<< pyup pyenv init <<<"
)

// legacyMarker is how profiles edited by hand or by older tooling are
// recognised.
const legacyMarker = "pyenv init"

// Kind is a shell name as found in the basename of $SHELL.
type Kind string

// KindFromEnv returns override when set, else the basename of $SHELL in
// env. It returns "" when neither is known.
func KindFromEnv(env runner.Env, override string) Kind {
	if override != "" {
		return Kind(filepath.Base(override))
	}
	if sh := env.Get("SHELL"); sh != "" {
		return Kind(filepath.Base(sh))
	}
	return ""
}

// rcFiles maps POSIX-compatible shells to the profile they read.
var rcFiles = map[Kind]string{
	"zsh":  ".zshrc",
	"bash": ".bashrc",
	"sh":   ".profile",
	"dash": ".profile",
	"ksh":  ".profile",
}

// RCPath returns the profile for kind under home. ok is false for shells
// whose syntax the snippet does not fit.
func RCPath(home string, kind Kind) (path string, ok bool) {
	name, ok := rcFiles[kind]
	if !ok {
		return "", false
	}
	return filepath.Join(home, name), true
}

// Outcome is what EnsureInitSnippet did.
type Outcome int

const (
	AlreadyPresent Outcome = iota
	Appended
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case AlreadyPresent:
		return "already present"
	case Appended:
		return "appended"
	default:
		return "skipped"
	}
}

// Result reports the outcome for one profile.
type Result struct {
	Outcome Outcome
	Kind    Kind
	// Path is the file read and written. For a symlinked profile it is
	// the link's target.
	Path string
	// Link is the profile path when it is a symlink to Path.
	Link string
	// BackupID names the backup taken before appending, if any.
	BackupID string
	// Instructions is set on Skipped: what to add by hand.
	Instructions string
}

// Where names the profile for messages.
func (r Result) Where() string {
	if r.Link != "" {
		return fmt.Sprintf("%s (linked from %s)", r.Path, r.Link)
	}
	return r.Path
}

// Options configures a Writer.
type Options struct {
	Home      string
	PyenvRoot string
}

// Writer edits one shell profile.
type Writer struct {
	gate    decision.Gate
	backups *backup.Manager
	opts    Options
}

// New returns a Writer. backups may be nil to skip backups.
func New(g decision.Gate, backups *backup.Manager, opts Options) *Writer {
	return &Writer{gate: g, backups: backups, opts: opts}
}

// Snippet returns the block appended to profiles, markers included.
func (w *Writer) Snippet() string {
	return Snippet(w.opts.Home, w.opts.PyenvRoot)
}

// Snippet renders the init block for a pyenv root. A root under home is
// written relative to $HOME.
func Snippet(home, pyenvRoot string) string {
	lines := []string{
		BeginMarker,
		"export PYENV_ROOT=" + shellPath(home, pyenvRoot),
		`command -v pyenv >/dev/null || export PATH="$PYENV_ROOT/bin:$PATH"`,
		`eval "$(pyenv init -)"`,
		`if command -v pyenv-virtualenv-init >/dev/null 2>&1; then`,
		`  eval "$(pyenv virtualenv-init -)"`,
		`fi`,
		EndMarker,
	}
	return strings.Join(lines, "\n") + "\n"
}

func shellPath(home, p string) string {
	if home != "" {
		if rel, err := filepath.Rel(home, p); err == nil && !strings.HasPrefix(rel, "..") {
			if rel == "." {
				return `"$HOME"`
			}
			return `"$HOME/` + escapeDoubleQuoted(filepath.ToSlash(rel)) + `"`
		}
	}
	return `"` + escapeDoubleQuoted(p) + `"`
}

func escapeDoubleQuoted(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "`", "\\`").Replace(s)
}

// HasSnippet reports whether content already initialises pyenv.
func HasSnippet(content string) bool {
	return strings.Contains(content, BeginMarker) || strings.Contains(content, legacyMarker)
}

// Status reports the profile for kind and whether it already initialises
// pyenv. path is "" for shells without a supported profile.
func (w *Writer) Status(kind Kind) (path string, present bool, err error) {
	path, ok := RCPath(w.opts.Home, kind)
	if !ok {
		return "", false, nil
	}
	content, _, err := readProfile(path)
	if err != nil {
		return path, false, err
	}
	return path, HasSnippet(content), nil
}

// EnsureInitSnippet appends the init snippet to the profile for kind,
// after confirmation, unless it is already there. Failures match
// errors.ErrProfileWrite.
func (w *Writer) EnsureInitSnippet(ctx context.Context, kind Kind) (Result, error) {
	logger := logging.FromContext(ctx).With("shell", string(kind))

	path, ok := RCPath(w.opts.Home, kind)
	if !ok {
		return Result{Outcome: Skipped, Kind: kind, Instructions: w.instructions(kind)}, nil
	}
	res := Result{Outcome: Skipped, Kind: kind, Path: path}

	// Dotfile managers link profiles into place. Writing through the link
	// keeps it intact.
	target, err := fileutil.ResolveLink(path)
	if err != nil {
		return res, errors.Mark(err, errors.ErrProfileWrite)
	}
	if target != path {
		res.Link = path
		res.Path = target
		path = target
	}

	content, exists, err := readProfile(path)
	if err != nil {
		return res, err
	}
	if HasSnippet(content) {
		res.Outcome = AlreadyPresent
		return res, nil
	}

	addition := w.Snippet()
	proposed := content
	if proposed != "" && !strings.HasSuffix(proposed, "\n") {
		proposed += "\n"
	}
	if proposed != "" {
		addition = "\n" + addition
	}
	proposed += addition

	ok, err = w.gate.Confirm(ctx, decision.Request{
		ID:       "profile.append",
		Question: fmt.Sprintf("Add pyenv initialisation to %s?", path),
		Detail:   strings.TrimSpace(udiff.Unified(path+" (current)", path+" (proposed)", content, proposed)),
		Default:  true,
	})
	if err != nil {
		return res, err
	}
	if !ok {
		res.Instructions = w.instructions(kind)
		return res, nil
	}

	if exists && w.backups != nil {
		manifest, err := w.backups.Backup("append pyenv init", path)
		if manifest == nil {
			return res, errors.Mark(errors.Wrapf(err, "backing up %s", path), errors.ErrProfileWrite)
		}
		if err != nil {
			logger.Warn("backup pruning failed", "error", err)
		}
		res.BackupID = manifest.ID
	}

	if err := fileutil.AtomicAppend(path, []byte(addition)); err != nil {
		return res, errors.Mark(errors.Wrapf(err, "updating %s", path), errors.ErrProfileWrite)
	}

	res.Outcome = Appended
	logger.Info("appended pyenv init", "path", path, "link", res.Link, "backup", res.BackupID)
	return res, nil
}

func (w *Writer) instructions(kind Kind) string {
	var b strings.Builder
	switch kind {
	case "fish":
		b.WriteString("fish needs its own syntax. Add this to ~/.config/fish/config.fish:\n\n")
		b.WriteString("  set -Ux PYENV_ROOT " + w.opts.PyenvRoot + "\n")
		b.WriteString("  fish_add_path $PYENV_ROOT/bin\n")
		b.WriteString("  pyenv init - fish | source\n")
		return b.String()
	case "":
		b.WriteString("Could not tell which shell you use. ")
	}
	b.WriteString("Add this to your shell's startup file:\n\n")
	b.WriteString(w.Snippet())
	return b.String()
}

// readProfile returns the profile content. A missing file is empty.
func readProfile(path string) (content string, exists bool, err error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Mark(errors.Wrapf(err, "reading %s", path), errors.ErrProfileWrite)
	}
	if !info.Mode().IsRegular() {
		return "", false, errors.Mark(errors.Newf("%s is not a regular file", path), errors.ErrProfileWrite)
	}
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return "", false, errors.Mark(errors.Wrapf(err, "reading %s", path), errors.ErrProfileWrite)
	}
	return string(data), true, nil
}
