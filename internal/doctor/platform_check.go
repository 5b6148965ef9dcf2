package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/thoreinstein/pyup/internal/platform"
	"github.com/thoreinstein/pyup/internal/runner"
)

// PlatformCheck reports which host variant was detected.
type PlatformCheck struct {
	platform platform.Platform
}

var _ Check = (*PlatformCheck)(nil)

// NewPlatformCheck creates a platform detection check for p.
func NewPlatformCheck(p platform.Platform) *PlatformCheck {
	return &PlatformCheck{platform: p}
}

// Name returns the unique identifier for this check.
func (c *PlatformCheck) Name() string { return "platform-detection" }

// Category returns the grouping for this check.
func (c *PlatformCheck) Category() string { return "platform" }

// Run executes the platform detection check and returns its result.
func (c *PlatformCheck) Run(context.Context) *CheckResult {
	s := platform.For(c.platform)
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details: map[string]any{
			"platform": c.platform.String(),
			"methods":  s.Methods(),
		},
	}

	if !s.Supported() {
		result.Status = SeverityError
		result.Message = fmt.Sprintf("%s cannot be provisioned by pyup", c.platform.Label())
		result.FixHint = s.Guidance()
		return result
	}

	result.Status = SeverityPass
	result.Message = "detected " + c.platform.Label()
	return result
}

// BuildToolsCheck looks for the tools pyenv needs to download and compile
// CPython.
type BuildToolsCheck struct {
	runner   runner.Runner
	platform platform.Platform
}

var _ Check = (*BuildToolsCheck)(nil)

// NewBuildToolsCheck creates a build tooling check.
func NewBuildToolsCheck(r runner.Runner, p platform.Platform) *BuildToolsCheck {
	return &BuildToolsCheck{runner: r, platform: p}
}

// Name returns the unique identifier for this check.
func (c *BuildToolsCheck) Name() string { return "build-tools" }

// Category returns the grouping for this check.
func (c *BuildToolsCheck) Category() string { return "platform" }

// compilers are tried in order; any one is enough.
var compilers = []string{"cc", "gcc", "clang"}

// Run probes for git, curl and a C compiler.
func (c *BuildToolsCheck) Run(context.Context) *CheckResult {
	result := &CheckResult{Name: c.Name(), Category: c.Category()}
	s := platform.For(c.platform)
	if !s.Supported() {
		result.Status = SeverityInfo
		result.Message = "not applicable on " + c.platform.Label()
		return result
	}

	found := map[string]bool{}
	var missing []string
	for _, tool := range []string{"git", "curl"} {
		found[tool] = c.runner.Probe(tool)
		if !found[tool] {
			missing = append(missing, tool)
		}
	}
	compiler := ""
	for _, cc := range compilers {
		if c.runner.Probe(cc) {
			compiler = cc
			break
		}
	}
	if compiler == "" {
		missing = append(missing, "C compiler")
	}
	result.Details = map[string]any{"git": found["git"], "curl": found["curl"], "compiler": compiler}

	if len(missing) == 0 {
		result.Status = SeverityPass
		result.Message = "git, curl and a C compiler are available"
		return result
	}

	result.Status = SeverityWarning
	result.Message = "missing " + strings.Join(missing, ", ")
	switch {
	case c.platform == platform.MacOS:
		result.FixHint = "Run: xcode-select --install"
	case c.platform.IsUbuntuLike():
		result.FixHint = "Run: sudo apt-get install -y " + strings.Join(s.BuildDeps(), " ")
	}
	return result
}
