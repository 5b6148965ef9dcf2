package doctor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strconv"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/pyup/internal/config"
	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/logging"
)

// ConfigCheck validates the syntax of pyup's config file and, when a
// loaded configuration is supplied, its values.
type ConfigCheck struct {
	path string
	cfg  *config.Config
}

var _ Check = (*ConfigCheck)(nil)

// NewConfigCheck creates a config check. cfg may be nil when loading
// failed; only the syntax is checked then.
func NewConfigCheck(path string, cfg *config.Config) *ConfigCheck {
	return &ConfigCheck{path: path, cfg: cfg}
}

// Name returns the unique identifier for this check.
func (c *ConfigCheck) Name() string { return "config" }

// Category returns the grouping for this check.
func (c *ConfigCheck) Category() string { return "config" }

// Run executes the check.
func (c *ConfigCheck) Run(context.Context) *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.path},
	}

	data, err := os.ReadFile(c.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		result.Status = SeverityInfo
		result.Message = "no config file; using defaults"
	case errors.Is(err, fs.ErrPermission):
		result.Status = SeverityError
		result.Message = fmt.Sprintf("permission denied: %v", err)
		return result
	case err != nil:
		result.Status = SeverityError
		result.Message = fmt.Sprintf("read error: %v", err)
		return result
	default:
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			result.Status = SeverityError
			result.Message = formatYAMLError(err)
			result.FixHint = "Fix the syntax, or run: pyup config edit"
			return result
		}
	}

	if c.cfg != nil {
		if errs := config.Validate(c.cfg); len(errs) > 0 {
			problems := make([]string, len(errs))
			for i, e := range errs {
				problems[i] = e.Error()
			}
			result.Status = SeverityError
			result.Message = fmt.Sprintf("%d invalid setting(s)", len(errs))
			result.Details["problems"] = problems
			result.FixHint = "Run: pyup config set <key> <value>"
			return result
		}
		result.Details["installer_url"] = logging.RedactURL(c.cfg.InstallerURL)
		result.Details["pyenv_repo"] = logging.RedactURL(c.cfg.PyenvRepo)
		result.Details["virtualenv_repo"] = logging.RedactURL(c.cfg.VirtualenvRepo)
	}

	if result.Status != SeverityInfo {
		result.Status = SeverityPass
		result.Message = "config file is valid"
	}
	return result
}

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// formatYAMLError adds the line number yaml.v3 reports to the message.
func formatYAMLError(err error) string {
	if m := yamlLinePattern.FindStringSubmatch(err.Error()); m != nil {
		if line, convErr := strconv.Atoi(m[1]); convErr == nil {
			return fmt.Sprintf("YAML syntax error at line %d: %v", line, err)
		}
	}
	return fmt.Sprintf("YAML error: %v", err)
}

// formatTOMLError extracts position information from TOML decode errors.
func formatTOMLError(err error) string {
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Sprintf("TOML syntax error at line %d, column %d: %s", row, col, decodeErr.Error())
	}
	return fmt.Sprintf("TOML error: %v", err)
}
