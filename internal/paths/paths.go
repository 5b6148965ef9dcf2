package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"

	"github.com/thoreinstein/pyup/internal/errors"
)

// AppName names pyup's directories under the XDG roots.
const AppName = "pyup"

// Home-relative defaults.
const (
	DefaultPyenvRoot = "~/.pyenv"
	DefaultDemoDir   = "~/pyenv_virtualenv_demo"
)

// ErrHomeDirNotFound indicates the user's home directory could not be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// DefaultDirPerm is the permission for directories pyup creates for itself.
const DefaultDirPerm = 0o700

// EnsureDir creates path and any missing parents. A zero perm means
// DefaultDirPerm. It is a no-op when the directory already exists.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// ResolveHome returns the user's home directory.
func ResolveHome() (string, error) {
	home, err := homedir.Dir()
	if err != nil || home == "" {
		return "", errors.Wrapf(ErrHomeDirNotFound, "%v", err)
	}
	return home, nil
}

// Expand resolves a leading "~" and cleans the result. Empty input stays empty.
func Expand(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", errors.Wrapf(err, "expanding %q", path)
	}
	return filepath.Clean(expanded), nil
}

// ConfigDir returns <ConfigHome>/pyup.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ConfigFile returns the default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StateDir returns <StateHome>/pyup.
func StateDir() string {
	return filepath.Join(xdg.StateHome, AppName)
}

// StateFile returns the path of the persisted run state.
func StateFile() string {
	return filepath.Join(StateDir(), "state.toml")
}

// LogFile returns the default --log-file target.
func LogFile() string {
	return filepath.Join(StateDir(), AppName+".log")
}

// ProfileBackupDir returns the root holding shell profile backups.
func ProfileBackupDir() string {
	return filepath.Join(ConfigDir(), "backups", "profile")
}

// PluginDir returns where pyenv-virtualenv lives under a pyenv root.
func PluginDir(pyenvRoot string) string {
	return filepath.Join(pyenvRoot, "plugins", "pyenv-virtualenv")
}
