package prompt

import (
	"fmt"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/pyup/internal/catalog"
	"github.com/thoreinstein/pyup/internal/errors"
)

// findFunc is replaced in tests.
var findFunc = func(items []catalog.Entry, label func(int) string, opts ...fuzzyfinder.Option) (int, error) {
	return fuzzyfinder.Find(items, label, opts...)
}

// PickVersion opens a fuzzy finder over entries and returns the chosen one.
// Aborting the finder returns ErrCancelled.
func PickVersion(entries []catalog.Entry, installed map[string]bool) (catalog.Entry, error) {
	if len(entries) == 0 {
		return catalog.Entry{}, ErrNothingToSelect
	}

	idx, err := findFunc(
		entries,
		func(i int) string {
			if installed[entries[i].Raw] {
				return entries[i].Raw + " (installed)"
			}
			return entries[i].Raw
		},
		fuzzyfinder.WithPromptString("python> "),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i < 0 {
				return ""
			}
			e := entries[i]
			return fmt.Sprintf("Version: %s\nSeries:  %d.%d\nInstalled: %t", e.Raw, e.Major, e.Minor, installed[e.Raw])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return catalog.Entry{}, ErrCancelled
		}
		return catalog.Entry{}, errors.Wrap(err, "picking version")
	}
	return entries[idx], nil
}
