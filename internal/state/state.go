// Package state persists what pyup learned in earlier runs, such as how
// pyenv was installed, so later runs and `pyup doctor` can report it.
//
// The file is TOML and is always rewritten atomically.
package state

import (
	"io/fs"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/paths"
	"github.com/thoreinstein/pyup/pkg/fileutil"
)

// SchemaVersion is written into every state file.
const SchemaVersion = 1

// State is the persisted run state.
type State struct {
	Version int     `toml:"version"`
	Tool    Tool    `toml:"tool"`
	Python  Python  `toml:"python"`
	Demo    Demo    `toml:"demo"`
	LastRun LastRun `toml:"last_run"`
}

// Tool records how pyenv got onto the host.
type Tool struct {
	// Method is a toolinstall.ToolState value.
	Method     string    `toml:"method,omitempty"`
	PyenvRoot  string    `toml:"pyenv_root,omitempty"`
	RecordedAt time.Time `toml:"recorded_at,omitempty"`
}

// Python records the last interpreter pyup installed or selected.
type Python struct {
	LastVersion string `toml:"last_version,omitempty"`
	Global      string `toml:"global,omitempty"`
}

// Demo records the demo environment.
type Demo struct {
	EnvName string `toml:"env_name,omitempty"`
	Version string `toml:"version,omitempty"`
	Dir     string `toml:"dir,omitempty"`
}

// LastRun identifies the most recent setup run.
type LastRun struct {
	ID       string    `toml:"id,omitempty"`
	Platform string    `toml:"platform,omitempty"`
	At       time.Time `toml:"at,omitempty"`
}

// Store reads and writes the state file at Path.
type Store struct {
	Path string
}

// DefaultStore returns a Store at the XDG state location.
func DefaultStore() *Store {
	return &Store{Path: paths.StateFile()}
}

// Load reads the state file. A missing file yields an empty State.
func (s *Store) Load() (*State, error) {
	data, err := fileutil.ReadFileWithLimit(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return &State{Version: SchemaVersion}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading state")
	}

	var st State
	if err := toml.Unmarshal(data, &st); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", s.Path)
	}
	return &st, nil
}

// Save writes st, creating the directory if needed.
func (s *Store) Save(st *State) error {
	if err := paths.EnsureDir(filepath.Dir(s.Path), 0); err != nil {
		return errors.Wrap(err, "creating state directory")
	}
	st.Version = SchemaVersion
	return fileutil.AtomicWriteTOML(s.Path, st, 0o600)
}

// Update loads the state, applies fn and saves the result.
func (s *Store) Update(fn func(*State)) error {
	st, err := s.Load()
	if err != nil {
		return err
	}
	fn(st)
	return s.Save(st)
}
