package doctor

import (
	"context"
	"fmt"
	"time"
)

// DefaultCheckTimeout bounds a single check. Checks that shell out to
// pyenv can hang on a broken shim.
const DefaultCheckTimeout = 15 * time.Second

// Check is one diagnostic.
type Check interface {
	Name() string
	// Category groups related checks in output, e.g. "pyenv" or "shell".
	Category() string
	Run(ctx context.Context) *CheckResult
}

// Runner runs checks in registration order.
type Runner struct {
	checks  []Check
	timeout time.Duration
	now     func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithCheckTimeout sets the per-check deadline. Zero disables it.
func WithCheckTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) { r.timeout = d }
}

// NewRunner returns a Runner with DefaultCheckTimeout.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{timeout: DefaultCheckTimeout, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddCheck registers c.
func (r *Runner) AddCheck(c Check) {
	r.checks = append(r.checks, c)
}

// Run executes every check and tallies the results. It stops early once
// ctx is done; a check that panics or runs out of time is reported as an
// error instead of aborting the run.
func (r *Runner) Run(ctx context.Context) *Report {
	report := &Report{
		Timestamp: r.now().UTC(),
		Results:   make([]*CheckResult, 0, len(r.checks)),
	}

	for _, c := range r.checks {
		if ctx.Err() != nil {
			break
		}
		start := r.now()
		res := r.runOne(ctx, c)
		res.Duration = r.now().Sub(start)

		report.Results = append(report.Results, res)
		report.Summary.add(res.Status)
	}
	return report
}

func (r *Runner) runOne(ctx context.Context, c Check) (res *CheckResult) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	defer func() {
		if p := recover(); p != nil {
			res = failed(c, fmt.Sprintf("check crashed: %v", p))
		}
	}()

	res = c.Run(ctx)
	switch {
	case res == nil:
		res = failed(c, "check returned no result")
	case ctx.Err() == context.DeadlineExceeded && res.Status < SeverityWarning:
		res.Status = SeverityWarning
		res.Message = fmt.Sprintf("timed out after %s", r.timeout)
	}
	return res
}

func failed(c Check, msg string) *CheckResult {
	return &CheckResult{Name: c.Name(), Category: c.Category(), Status: SeverityError, Message: msg}
}

// Report is the outcome of one Runner.Run.
type Report struct {
	Timestamp time.Time      `json:"timestamp"`
	Results   []*CheckResult `json:"results"`
	Summary   Summary        `json:"summary"`
}

// HasErrors reports whether any check failed.
func (r *Report) HasErrors() bool { return r.Summary.Errors > 0 }

// HasWarnings reports whether any check warned.
func (r *Report) HasWarnings() bool { return r.Summary.Warnings > 0 }
