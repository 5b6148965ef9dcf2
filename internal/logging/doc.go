// Package logging provides structured logging for the pyup CLI using slog.
//
// Two sinks are supported: a colorized text (or JSON) handler on stderr for
// the person at the terminal, and an optional rotating JSON log file for
// post-mortem inspection of a setup run. [Fanout] combines them.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  logging.LevelFromVerbosity(1),
//		Format: logging.FormatText,
//	})
//	ctx = logging.NewContext(ctx, logger)
//
// Components retrieve the logger with [FromContext], which never returns nil.
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	logger := logging.ForTest(t)
package logging
