package runner

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Env is an immutable snapshot of environment variables. Methods that
// change a variable return a new Env and leave the receiver untouched.
type Env struct {
	vars []string
}

// FromOS snapshots the current process environment.
func FromOS() Env {
	return Env{vars: os.Environ()}
}

// NewEnv builds a snapshot from KEY=value pairs.
func NewEnv(pairs ...string) Env {
	return Env{vars: slices.Clone(pairs)}
}

// Environ returns a copy of the KEY=value pairs, suitable for exec.Cmd.Env.
func (e Env) Environ() []string {
	return slices.Clone(e.vars)
}

// Get returns the value of key, or "" when unset.
func (e Env) Get(key string) string {
	v, _ := e.Lookup(key)
	return v
}

// Lookup returns the value of key and whether it is set. Later entries win.
func (e Env) Lookup(key string) (string, bool) {
	prefix := key + "="
	for i := len(e.vars) - 1; i >= 0; i-- {
		if v, ok := strings.CutPrefix(e.vars[i], prefix); ok {
			return v, true
		}
	}
	return "", false
}

// With returns a snapshot where key is set to value.
func (e Env) With(key, value string) Env {
	out := e.Without(key)
	out.vars = append(out.vars, key+"="+value)
	return out
}

// Without returns a snapshot where key is unset.
func (e Env) Without(key string) Env {
	prefix := key + "="
	vars := make([]string, 0, len(e.vars)+1)
	for _, kv := range e.vars {
		if !strings.HasPrefix(kv, prefix) {
			vars = append(vars, kv)
		}
	}
	return Env{vars: vars}
}

// PathList returns the PATH entries in order.
func (e Env) PathList() []string {
	p := e.Get("PATH")
	if p == "" {
		return nil
	}
	return filepath.SplitList(p)
}

// PrependPath returns a snapshot with dirs at the front of PATH. Existing
// occurrences of dirs are removed so repeated refreshes do not grow PATH.
func (e Env) PrependPath(dirs ...string) Env {
	rest := slices.DeleteFunc(e.PathList(), func(d string) bool {
		return slices.Contains(dirs, d)
	})
	all := append(slices.Clone(dirs), rest...)
	return e.With("PATH", strings.Join(all, string(os.PathListSeparator)))
}

// Refresh returns the snapshot a shell would have after pyenv's init:
// PYENV_ROOT set to root and root/bin plus root/shims first on PATH.
// It is best-effort and affects only processes started from the result.
func (e Env) Refresh(root string) Env {
	return e.With("PYENV_ROOT", root).
		PrependPath(filepath.Join(root, "bin"), filepath.Join(root, "shims"))
}

// LookPath resolves name against the snapshot's PATH. Names containing a
// path separator are checked directly.
func (e Env) LookPath(name string) (string, bool) {
	if strings.ContainsRune(name, filepath.Separator) {
		return name, isExecutable(name)
	}
	for _, dir := range e.PathList() {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
