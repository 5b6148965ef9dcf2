package doctor

import (
	"fmt"
	"os"

	"github.com/thoreinstein/pyup/internal/errors"
)

// Fixer is implemented by checks that can repair what they found.
// CanFix and Fix must be called after Run.
type Fixer interface {
	CanFix() bool
	Fix() []FixResult
}

// FixResult describes the outcome of one attempted fix.
type FixResult struct {
	Path        string
	Fixed       bool
	Description string
	Error       error
}

// PermissionFixer removes group and world write bits from the paths a
// PathPermissionCheck flagged.
type PermissionFixer struct {
	issues []pathIssue
}

// CanFix returns true if there are any fixable permission issues.
func (f *PermissionFixer) CanFix() bool {
	return f.CountFixable() > 0
}

// CountFixable returns the number of fixable issues.
func (f *PermissionFixer) CountFixable() int {
	n := 0
	for _, issue := range f.issues {
		if issue.Fixable {
			n++
		}
	}
	return n
}

// Fix attempts every fixable issue and reports each outcome.
func (f *PermissionFixer) Fix() []FixResult {
	results := make([]FixResult, 0, f.CountFixable())
	for _, issue := range f.issues {
		if issue.Fixable {
			results = append(results, fixIssue(issue))
		}
	}
	return results
}

func fixIssue(issue pathIssue) FixResult {
	result := FixResult{Path: issue.Path}

	info, err := os.Stat(issue.Path)
	if err != nil {
		result.Description = fmt.Sprintf("cannot stat: %v", err)
		result.Error = errors.Wrapf(err, "stat %s", issue.Path)
		return result
	}

	target := info.Mode().Perm() &^ 0o022
	if err := os.Chmod(issue.Path, target); err != nil {
		result.Description = fmt.Sprintf("failed to chmod %04o: %v", target, err)
		result.Error = errors.Wrapf(err, "chmod %04o %s", target, issue.Path)
		return result
	}

	result.Fixed = true
	result.Description = fmt.Sprintf("chmod %04o", target)
	return result
}

func (f *PermissionFixer) setIssues(issues []pathIssue) {
	f.issues = issues
}
