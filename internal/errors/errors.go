package errors

import (
	"fmt"
	"strings"

	crdb "github.com/cockroachdb/errors"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid input, configuration, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, network, permissions, etc.).
	ExitSystem = 2
)

// Sentinel errors for the setup flow.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = crdb.New("resource not found")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = crdb.New("invalid configuration")

	// ErrUnsupportedPlatform indicates the host cannot be provisioned automatically.
	ErrUnsupportedPlatform = crdb.New("unsupported platform")

	// ErrToolMissing indicates pyenv could not be found after the install step.
	ErrToolMissing = crdb.New("pyenv not found")

	// ErrPluginMissing indicates pyenv-virtualenv is not available.
	ErrPluginMissing = crdb.New("pyenv-virtualenv not available")

	// ErrInstallStep is the mark carried by every InstallStepError.
	ErrInstallStep = crdb.New("install step failed")

	// ErrCatalogUnavailable indicates the version list could not be produced.
	ErrCatalogUnavailable = crdb.New("version catalog unavailable")

	// ErrVersionNotFound indicates a requested version is not installable.
	ErrVersionNotFound = crdb.New("version not found")

	// ErrPathConflict indicates a path exists with the wrong type.
	ErrPathConflict = crdb.New("path conflict")

	// ErrProfileWrite indicates the shell profile could not be updated.
	ErrProfileWrite = crdb.New("shell profile write failed")

	// ErrDeclined indicates the user declined a gated action.
	ErrDeclined = crdb.New("declined by user")
)

// InstallStepError reports an external command that exited non-zero during a
// required step. It matches ErrInstallStep via errors.Is.
type InstallStepError struct {
	// Command is the argument vector that was executed.
	Command []string

	// ExitCode is the exit status reported by the child process.
	ExitCode int
}

// NewInstallStepError builds an InstallStepError for the given argv and code.
func NewInstallStepError(code int, name string, args ...string) *InstallStepError {
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, name)
	argv = append(argv, args...)
	return &InstallStepError{Command: argv, ExitCode: code}
}

// Error returns a plain-language description naming the command and exit code.
func (e *InstallStepError) Error() string {
	return fmt.Sprintf("command %q exited with code %d", strings.Join(e.Command, " "), e.ExitCode)
}

// Is reports whether target is ErrInstallStep.
func (e *InstallStepError) Is(target error) bool {
	return target == ErrInstallStep
}

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
// If err is nil, the returned ExitError will have a nil Err field.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// NewConfigError creates an ExitError with ExitUser code and a standard suggestion.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: "Run: pyup doctor",
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// Thin re-exports so callers import a single errors package.

// New creates an error with a stack trace.
func New(msg string) error { return crdb.New(msg) }

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...any) error { return crdb.Newf(format, args...) }

// Wrap annotates err with msg. Returns nil if err is nil.
func Wrap(err error, msg string) error { return crdb.Wrap(err, msg) }

// Wrapf annotates err with a formatted message. Returns nil if err is nil.
func Wrapf(err error, format string, args ...any) error { return crdb.Wrapf(err, format, args...) }

// WithHint attaches a user-facing hint to err.
func WithHint(err error, hint string) error { return crdb.WithHint(err, hint) }

// FlattenHints returns all hints attached to err, joined by newlines.
func FlattenHints(err error) string { return crdb.FlattenHints(err) }

// Mark makes err match reference via Is while keeping err's own chain.
func Mark(err, reference error) error { return crdb.Mark(err, reference) }

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return crdb.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return crdb.As(err, target) }
