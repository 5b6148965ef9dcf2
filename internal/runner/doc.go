// Package runner executes the external commands pyup depends on.
//
// Every command is an argument vector; nothing is ever passed through a
// shell as an interpolated string. Only allowlisted programs may run.
//
// A Runner is bound to an immutable [Env] snapshot. Installing pyenv does not
// change the process environment; instead the caller refreshes the snapshot
// and rebinds:
//
//	env := r.Env().Refresh(pyenvRoot)
//	r = r.WithEnv(env)
//	r.Probe("pyenv") // now true
//
// Non-zero exit codes are reported in [Result.Code] and are not errors. Only
// a failure to start the process, a disallowed program, or cancellation of
// the context is returned as an error.
//
// [Fake] is a scripted Runner for tests in other packages.
package runner
