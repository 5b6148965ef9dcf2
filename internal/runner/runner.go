package runner

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/logging"
)

// ErrNotAllowed indicates a program outside the allowlist.
var ErrNotAllowed = errors.New("command not allowed")

// ErrNotFound indicates a program that does not resolve on the snapshot PATH.
var ErrNotFound = errors.New("command not found")

// DefaultAllowed lists the programs pyup runs.
var DefaultAllowed = []string{"pyenv", "brew", "git", "sudo", "apt-get", "bash", "curl"}

// Cmd describes one external command.
type Cmd struct {
	Name string
	Args []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Interactive connects the child to the terminal instead of capturing
	// its output. Used for builds and anything that may prompt.
	Interactive bool
}

// Argv returns Name followed by Args.
func (c Cmd) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the argv for messages and logs.
func (c Cmd) String() string {
	return strings.Join(c.Argv(), " ")
}

// Result is the outcome of a command that started.
type Result struct {
	Code   int
	Stdout string
	Stderr string
}

// OK reports a zero exit code.
func (r Result) OK() bool { return r.Code == 0 }

// Lines splits Stdout into trimmed, non-empty lines.
func (r Result) Lines() []string {
	var out []string
	for _, line := range strings.Split(r.Stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Runner probes for and runs external commands against an Env snapshot.
type Runner interface {
	// Probe reports whether name resolves on the snapshot PATH.
	Probe(name string) bool
	// Run executes c. A non-zero exit is reported in Result, not as an error.
	Run(ctx context.Context, c Cmd) (Result, error)
	// Env returns the bound snapshot.
	Env() Env
	// WithEnv returns a Runner bound to env.
	WithEnv(env Env) Runner
}

// Exec runs real processes.
type Exec struct {
	env     Env
	allowed map[string]bool
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// Option configures an Exec.
type Option func(*Exec)

// WithStdio sets the streams used by interactive commands.
func WithStdio(in io.Reader, out, errOut io.Writer) Option {
	return func(e *Exec) {
		e.stdin, e.stdout, e.stderr = in, out, errOut
	}
}

// WithAllowed replaces the allowlist.
func WithAllowed(names ...string) Option {
	return func(e *Exec) {
		e.allowed = make(map[string]bool, len(names))
		for _, n := range names {
			e.allowed[n] = true
		}
	}
}

// New returns an Exec bound to env.
func New(env Env, opts ...Option) *Exec {
	e := &Exec{
		env:    env,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	WithAllowed(DefaultAllowed...)(e)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Env returns the bound snapshot.
func (e *Exec) Env() Env { return e.env }

// WithEnv returns a copy of e bound to env.
func (e *Exec) WithEnv(env Env) Runner {
	c := *e
	c.env = env
	return &c
}

// Probe reports whether name resolves on the snapshot PATH.
func (e *Exec) Probe(name string) bool {
	_, ok := e.env.LookPath(name)
	return ok
}

// Run executes c with the snapshot environment.
func (e *Exec) Run(ctx context.Context, c Cmd) (Result, error) {
	logger := logging.FromContext(ctx)

	if !e.allowed[filepath.Base(c.Name)] {
		return Result{}, errors.Wrapf(ErrNotAllowed, "%s", c.Name)
	}
	path, ok := e.env.LookPath(c.Name)
	if !ok {
		logger.Warn("command not found", "cmd", c.Name)
		return Result{}, errors.Wrapf(ErrNotFound, "%s", c.Name)
	}

	logger.Debug("running command", "cmd", c.String(), "dir", c.Dir, "interactive", c.Interactive)

	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = e.env.Environ()

	var stdout, stderr bytes.Buffer
	if c.Interactive {
		cmd.Stdin = e.stdin
		cmd.Stdout = e.stdout
		cmd.Stderr = e.stderr
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		res.Code = -1
		return res, errors.Wrapf(ctxErr, "running %s", c.Name)
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		res.Code = exitErr.ExitCode()
		logger.Info("command exited non-zero", "cmd", c.String(), "code", res.Code)
	default:
		logger.Warn("command failed to start", "cmd", c.String(), "error", err)
		return res, errors.Wrapf(err, "starting %s", c.Name)
	}

	return res, nil
}

var _ Runner = (*Exec)(nil)
