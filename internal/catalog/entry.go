package catalog

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Kind classifies a catalog line.
type Kind string

const (
	Stable     Kind = "stable"
	Prerelease Kind = "prerelease"
	NonCPython Kind = "noncpython"
)

var (
	stablePattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	numericStart  = regexp.MustCompile(`^\d`)
)

// Entry is one installable interpreter release.
type Entry struct {
	// Raw is the identifier exactly as pyenv printed it.
	Raw   string
	Major uint64
	Minor uint64
	Patch uint64
	Kind  Kind
}

// Classify tags a raw catalog line.
func Classify(raw string) Kind {
	raw = strings.TrimSpace(raw)
	switch {
	case stablePattern.MatchString(raw):
		return Stable
	case numericStart.MatchString(raw):
		return Prerelease
	default:
		return NonCPython
	}
}

// ParseStable parses a stable identifier. ok is false for anything else.
func ParseStable(raw string) (Entry, bool) {
	raw = strings.TrimSpace(raw)
	if Classify(raw) != Stable {
		return Entry{}, false
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return Entry{}, false
	}
	return Entry{
		Raw:   raw,
		Major: v.Major(),
		Minor: v.Minor(),
		Patch: v.Patch(),
		Kind:  Stable,
	}, true
}

// ID is the normalized identifier used for de-duplication and matching,
// so "3.12.03" and "3.12.3" are the same release.
func (e Entry) ID() string {
	return e.version().String()
}

// String returns the identifier to pass to pyenv.
func (e Entry) String() string {
	return e.Raw
}

// Compare orders entries by their semantic tuple.
func (e Entry) Compare(o Entry) int {
	return e.version().Compare(o.version())
}

// SameRelease reports whether e and o share a semantic tuple.
func (e Entry) SameRelease(o Entry) bool {
	return e.Major == o.Major && e.Minor == o.Minor && e.Patch == o.Patch
}

func (e Entry) version() *semver.Version {
	return semver.New(e.Major, e.Minor, e.Patch, "", "")
}
