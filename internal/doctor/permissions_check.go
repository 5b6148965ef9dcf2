package doctor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strings"

	"github.com/thoreinstein/pyup/internal/errors"
)

// PathPermissionCheck validates the directories and files pyup writes:
// they must be of the right type, writable, and not writable by others.
type PathPermissionCheck struct {
	PermissionFixer

	dirs  []string
	files []string
}

var (
	_ Check = (*PathPermissionCheck)(nil)
	_ Fixer = (*PathPermissionCheck)(nil)
)

// NewPathPermissionCheck creates a permission check over dirs and files.
// Paths that do not exist are skipped.
func NewPathPermissionCheck(dirs, files []string) *PathPermissionCheck {
	return &PathPermissionCheck{dirs: dirs, files: files}
}

// Name returns the unique identifier for this check.
func (c *PathPermissionCheck) Name() string { return "path-permissions" }

// Category returns the grouping for this check.
func (c *PathPermissionCheck) Category() string { return "filesystem" }

// pathIssue represents a single path or permission problem.
type pathIssue struct {
	Path        string
	Type        string // "file" or "directory"
	Problem     string
	Severity    Severity
	Permissions string
	Fixable     bool
	FixHint     string
}

// Run executes the path and permission check.
func (c *PathPermissionCheck) Run(context.Context) *CheckResult {
	var issues []pathIssue
	checked := 0

	for _, d := range c.dirs {
		dirIssues, ok := c.checkPath(d, true)
		if ok {
			checked++
		}
		issues = append(issues, dirIssues...)
	}
	for _, f := range c.files {
		fileIssues, ok := c.checkPath(f, false)
		if ok {
			checked++
		}
		issues = append(issues, fileIssues...)
	}

	c.setIssues(issues)
	return c.buildResult(issues, checked)
}

// checkPath validates one path. ok is false when it does not exist.
func (c *PathPermissionCheck) checkPath(path string, wantDir bool) (issues []pathIssue, ok bool) {
	kind := "file"
	if wantDir {
		kind = "directory"
	}

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false
	}
	if err != nil {
		return []pathIssue{{
			Path:     path,
			Type:     kind,
			Problem:  fmt.Sprintf("cannot stat %s: %v", kind, err),
			Severity: SeverityError,
		}}, true
	}

	if info.IsDir() != wantDir {
		return []pathIssue{{
			Path:     path,
			Type:     kind,
			Problem:  fmt.Sprintf("expected %s but found something else", kind),
			Severity: SeverityError,
		}}, true
	}

	if wantDir && !isDirectoryWritable(path) {
		issues = append(issues, pathIssue{
			Path:        path,
			Type:        kind,
			Problem:     "directory is not writable",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(info.Mode()),
			FixHint:     "chmod u+w " + path,
		})
	}

	// Unix permission bits mean nothing on Windows.
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o002 != 0 {
		issues = append(issues, pathIssue{
			Path:        path,
			Type:        kind,
			Problem:     kind + " is world-writable (security risk)",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(info.Mode()),
			Fixable:     true,
			FixHint:     "chmod go-w " + path,
		})
	}

	return issues, true
}

func isDirectoryWritable(path string) bool {
	tmp, err := os.CreateTemp(path, ".pyup-doctor-*")
	if err != nil {
		return false
	}
	name := tmp.Name()
	tmp.Close()
	os.Remove(name)
	return true
}

// buildResult constructs the final CheckResult from accumulated issues.
func (c *PathPermissionCheck) buildResult(issues []pathIssue, checked int) *CheckResult {
	if len(issues) == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityPass,
			Message:  fmt.Sprintf("all %d paths have valid permissions", checked),
		}
	}

	status := SeverityWarning
	issueDetails := make([]map[string]any, 0, len(issues))
	var fixHints []string
	fixable := false
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			status = SeverityError
		}
		m := map[string]any{
			"path":     issue.Path,
			"type":     issue.Type,
			"problem":  issue.Problem,
			"severity": issue.Severity.String(),
		}
		if issue.Permissions != "" {
			m["permissions"] = issue.Permissions
		}
		if issue.FixHint != "" {
			m["fix_hint"] = issue.FixHint
			fixHints = append(fixHints, issue.FixHint)
		}
		fixable = fixable || issue.Fixable
		issueDetails = append(issueDetails, m)
	}

	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   status,
		Message:  fmt.Sprintf("found %d permission issue(s) across %d paths", len(issues), checked),
		Details: map[string]any{
			"checked_paths": checked,
			"issue_count":   len(issues),
			"issues":        issueDetails,
		},
		Fixable: fixable,
		FixHint: strings.Join(fixHints, "; "),
	}
}

// formatPermissions returns the octal permission bits, e.g. "0644".
func formatPermissions(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode.Perm())
}
