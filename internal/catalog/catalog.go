package catalog

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/logging"
	"github.com/thoreinstein/pyup/internal/runner"
)

// listCmd is the pyenv command printing every installable version.
var listCmd = runner.Cmd{Name: "pyenv", Args: []string{"install", "--list"}}

// View is the menu shown to the user: stable entries, newest first, unique.
type View struct {
	Entries []Entry
}

// Len returns the number of entries.
func (v View) Len() int { return len(v.Entries) }

// At returns the entry for a 1-based menu index.
func (v View) At(index int) (Entry, bool) {
	if index < 1 || index > len(v.Entries) {
		return Entry{}, false
	}
	return v.Entries[index-1], true
}

// Strings returns the raw identifiers in menu order.
func (v View) Strings() []string {
	out := make([]string, len(v.Entries))
	for i, e := range v.Entries {
		out[i] = e.Raw
	}
	return out
}

// Catalog queries pyenv for installable versions.
type Catalog struct {
	runner runner.Runner
}

// New returns a Catalog using r.
func New(r runner.Runner) *Catalog {
	return &Catalog{runner: r}
}

// ListStable returns the newest limit stable releases. A limit of zero or
// less returns all of them.
func (c *Catalog) ListStable(ctx context.Context, limit int) (View, error) {
	lines, err := c.query(ctx)
	if err != nil {
		return View{}, err
	}

	view := BuildView(lines, limit)
	if view.Len() == 0 {
		return View{}, errors.WithHint(
			errors.Wrap(errors.ErrCatalogUnavailable, "no stable versions in `pyenv install --list` output"),
			"Type an exact version such as 3.12.4 instead.",
		)
	}

	logging.FromContext(ctx).Debug("catalog built", "lines", len(lines), "shown", view.Len())
	return view, nil
}

// BuildView filters, sorts, de-duplicates and truncates raw catalog lines.
func BuildView(lines []string, limit int) View {
	seen := make(map[string]bool)
	var entries []Entry
	for _, line := range lines {
		e, ok := ParseStable(line)
		if !ok || seen[e.ID()] {
			continue
		}
		seen[e.ID()] = true
		entries = append(entries, e)
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.Compare(a)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return View{Entries: entries}
}

// Resolve turns user input into an Entry. Numeric input is first tried as
// a 1-based index into view; anything else, including an out-of-range
// number, is looked up as a literal version in a fresh full catalog.
func (c *Catalog) Resolve(ctx context.Context, view View, choice string) (Entry, error) {
	choice = strings.TrimSpace(choice)
	if choice == "" {
		return Entry{}, errors.Wrap(errors.ErrVersionNotFound, "empty choice")
	}

	if n, err := strconv.Atoi(choice); err == nil {
		if e, ok := view.At(n); ok {
			return e, nil
		}
	}

	want, ok := ParseStable(choice)
	if !ok {
		return Entry{}, errors.WithHint(
			errors.Wrapf(errors.ErrVersionNotFound, "%q is not a menu number or a stable version", choice),
			"Choose a number from the list or type a version like 3.12.4.",
		)
	}

	lines, err := c.query(ctx)
	if err != nil {
		return Entry{}, err
	}
	for _, line := range lines {
		if e, ok := ParseStable(line); ok && e.ID() == want.ID() {
			return e, nil
		}
	}
	return Entry{}, errors.Wrapf(errors.ErrVersionNotFound, "%s is not installable by pyenv", choice)
}

// All returns every line of the catalog with its classification, in pyenv's
// order. Used by `pyup versions --all`.
func (c *Catalog) All(ctx context.Context) ([]Classified, error) {
	lines, err := c.query(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Classified, len(lines))
	for i, l := range lines {
		out[i] = Classified{Raw: l, Kind: Classify(l)}
	}
	return out, nil
}

// Classified is a raw catalog line and its Kind.
type Classified struct {
	Raw  string
	Kind Kind
}

func (c *Catalog) query(ctx context.Context) ([]string, error) {
	res, err := c.runner.Run(ctx, listCmd)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "listing versions"), errors.ErrCatalogUnavailable)
	}
	if !res.OK() {
		return nil, errors.Wrapf(errors.ErrCatalogUnavailable, "%q exited with code %d", listCmd.String(), res.Code)
	}

	lines := res.Lines()
	// pyenv prints a header line.
	if len(lines) > 0 && strings.HasPrefix(lines[0], "Available versions") {
		lines = lines[1:]
	}
	return lines, nil
}
