package config

import (
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/git"
)

// Validation errors for configuration fields.
var (
	// ErrVersionTooLow indicates the version field is below the minimum.
	ErrVersionTooLow = errors.New("version must be >= 1")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrOutOfRange indicates a numeric setting outside its allowed range.
	ErrOutOfRange = errors.New("value out of range")

	// ErrInvalidName indicates an environment name pyenv-virtualenv would reject.
	ErrInvalidName = errors.New("invalid environment name")

	// ErrInvalidURL indicates a URL setting that cannot be fetched.
	ErrInvalidURL = errors.New("invalid URL")
)

// MaxCatalogLimit bounds catalog_limit.
const MaxCatalogLimit = 100

var envNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Validate checks a Config for validity.
// Returns nil if valid, or every validation error found.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version < 1 {
		errs = append(errs, ErrVersionTooLow)
	}

	if cfg.CatalogLimit < 1 || cfg.CatalogLimit > MaxCatalogLimit {
		errs = append(errs, &FieldError{Field: "catalog_limit", Value: strconv.Itoa(cfg.CatalogLimit), Err: ErrOutOfRange})
	}
	if cfg.Backup.Retention < 1 {
		errs = append(errs, &FieldError{Field: "backup.retention", Value: strconv.Itoa(cfg.Backup.Retention), Err: ErrOutOfRange})
	}

	for _, f := range []struct{ name, value string }{
		{"pyenv_root", cfg.PyenvRoot},
		{"demo.dir", cfg.Demo.Dir},
	} {
		if err := validatePath(f.value); err != nil {
			errs = append(errs, &FieldError{Field: f.name, Value: f.value, Err: err})
		}
	}

	if !envNamePattern.MatchString(cfg.Demo.EnvName) {
		errs = append(errs, &FieldError{Field: "demo.env_name", Value: cfg.Demo.EnvName, Err: ErrInvalidName})
	}

	if err := validateURL(cfg.InstallerURL, "https"); err != nil {
		errs = append(errs, &FieldError{Field: "installer_url", Value: cfg.InstallerURL, Err: err})
	}
	for _, f := range []struct{ name, value string }{
		{"pyenv_repo", cfg.PyenvRepo},
		{"virtualenv_repo", cfg.VirtualenvRepo},
	} {
		if !git.IsURL(f.value) {
			errs = append(errs, &FieldError{Field: f.name, Value: f.value, Err: ErrInvalidURL})
		}
	}

	return errs
}

// validatePath requires an absolute path once "~" has been expanded.
func validatePath(path string) error {
	if path == "" || strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}
	if !filepath.IsAbs(path) {
		return errors.Wrap(ErrInvalidPath, "must be absolute")
	}
	return nil
}

func validateURL(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Host == "" && u.Scheme != "file") {
		return ErrInvalidURL
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return errors.Wrapf(ErrInvalidURL, "scheme %q not allowed", u.Scheme)
}

// FieldError represents an error for a specific config key.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
