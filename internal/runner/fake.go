package runner

import (
	"context"
	"strings"
	"sync"
)

// HandlerFunc scripts the response to one command in a Fake.
type HandlerFunc func(c Cmd, env Env) (Result, error)

// Call records one command a Fake received.
type Call struct {
	Cmd Cmd
	Env Env
}

// Fake is a scripted Runner. Unscripted commands succeed with no output.
// Copies made by WithEnv share the script and the call log.
type Fake struct {
	*fakeState
	env Env
}

type fakeState struct {
	mu       sync.Mutex
	present  map[string]bool
	handlers map[string]HandlerFunc
	calls    []Call
	probes   []string
}

// NewFake returns a Fake bound to env.
func NewFake(env Env) *Fake {
	return &Fake{
		fakeState: &fakeState{
			present:  make(map[string]bool),
			handlers: make(map[string]HandlerFunc),
		},
		env: env,
	}
}

// SetPresent marks names as resolvable (or not) by Probe.
func (f *Fake) SetPresent(present bool, names ...string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range names {
		f.present[n] = present
	}
	return f
}

// On scripts a fixed result for the command whose argv joins to argv.
func (f *Fake) On(argv string, code int, stdout string) *Fake {
	return f.Handle(argv, func(Cmd, Env) (Result, error) {
		return Result{Code: code, Stdout: stdout}, nil
	})
}

// Handle scripts a function for the command whose argv joins to argv.
func (f *Fake) Handle(argv string, fn HandlerFunc) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[argv] = fn
	return f
}

// Env returns the bound snapshot.
func (f *Fake) Env() Env { return f.env }

// WithEnv returns a Fake bound to env sharing script and call log.
func (f *Fake) WithEnv(env Env) Runner {
	return &Fake{fakeState: f.fakeState, env: env}
}

// Probe consults SetPresent.
func (f *Fake) Probe(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes = append(f.probes, name)
	return f.present[name]
}

// Run records c and returns the scripted result.
func (f *Fake) Run(ctx context.Context, c Cmd) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{Code: -1}, err
	}
	f.mu.Lock()
	f.calls = append(f.calls, Call{Cmd: c, Env: f.env})
	fn := f.handlers[c.String()]
	f.mu.Unlock()

	if fn == nil {
		return Result{}, nil
	}
	return fn(c, f.env)
}

// Calls returns every recorded command.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Commands returns the recorded commands rendered as strings.
func (f *Fake) Commands() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Cmd.String()
	}
	return out
}

// Count returns how many times the command joining to argv ran.
func (f *Fake) Count(argv string) int {
	n := 0
	for _, c := range f.Commands() {
		if c == argv {
			n++
		}
	}
	return n
}

// CountPrefix returns how many recorded commands start with prefix.
func (f *Fake) CountPrefix(prefix string) int {
	n := 0
	for _, c := range f.Commands() {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Probes returns every name passed to Probe.
func (f *Fake) Probes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.probes...)
}

// Reset clears the call and probe logs but keeps the script.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
	f.probes = nil
}

var _ Runner = (*Fake)(nil)
