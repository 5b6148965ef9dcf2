// Package doctor diagnoses a pyup installation: the host platform, pyenv
// and its plugin, build tooling, the shell profile and pyup's own files.
package doctor

import (
	"time"

	"github.com/thoreinstein/pyup/internal/errors"
)

// Severity orders check outcomes from harmless to blocking.
type Severity int

const (
	SeverityPass Severity = iota
	SeverityInfo
	// SeverityWarning marks something that works now but will surprise the
	// user, such as a profile without the init block.
	SeverityWarning
	// SeverityError marks something that stops pyenv from working.
	SeverityError
)

var severityNames = [...]string{"pass", "info", "warning", "error"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// MarshalText renders the severity by name in JSON output.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a name written by MarshalText.
func (s *Severity) UnmarshalText(b []byte) error {
	for i, n := range severityNames {
		if n == string(b) {
			*s = Severity(i)
			return nil
		}
	}
	return errors.Newf("unknown severity %q", b)
}

// CheckResult is what one check found.
type CheckResult struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Status   Severity `json:"status"`
	Message  string   `json:"message"`

	// Details holds check-specific values shown with --verbose.
	Details map[string]any `json:"details,omitempty"`

	// Fixable means `pyup doctor --fix` can repair it.
	Fixable bool   `json:"fixable,omitempty"`
	FixHint string `json:"fix_hint,omitempty"`

	// Duration is filled in by Runner.
	Duration time.Duration `json:"duration_ns"`
}

// Summary counts results per severity.
type Summary struct {
	Passed   int `json:"passed"`
	Info     int `json:"info"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

func (s *Summary) add(sev Severity) {
	switch sev {
	case SeverityPass:
		s.Passed++
	case SeverityInfo:
		s.Info++
	case SeverityWarning:
		s.Warnings++
	default:
		s.Errors++
	}
}
