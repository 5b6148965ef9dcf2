// Package errors provides error handling conventions for the pyup CLI.
//
// This package defines sentinel errors for the expected failure modes of the
// setup flow, an [InstallStepError] naming the external command that failed,
// an ExitError type for CLI exit code handling, and exit code constants
// following standard Unix conventions. Wrapping helpers are thin re-exports
// of github.com/cockroachdb/errors.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [Is]:
//
//	if errors.Is(err, errors.ErrCatalogUnavailable) {
//	    // fall back to manual entry
//	}
//
// # Install steps
//
// A required external command that exits non-zero is reported as an
// [InstallStepError]. It always matches [ErrInstallStep]:
//
//	var stepErr *errors.InstallStepError
//	if errors.As(err, &stepErr) {
//	    fmt.Println(stepErr.Command, stepErr.ExitCode)
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, unsupported platform, etc.)
//   - ExitSystem (2): System-related error (I/O, failed install step, etc.)
package errors
