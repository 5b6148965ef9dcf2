package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/paths"
)

// Repository and installer defaults.
const (
	DefaultInstallerURL   = "https://pyenv.run"
	DefaultPyenvRepo      = "https://github.com/pyenv/pyenv.git"
	DefaultVirtualenvRepo = "https://github.com/pyenv/pyenv-virtualenv.git"
	DefaultCatalogLimit   = 10
	DefaultEnvName        = "demo-env"
	DefaultRetention      = 5
)

// pyenvRootEnv lists the variables that set pyenv_root, first match wins.
// PYENV_ROOT is pyenv's own, so an existing install keeps its root.
var pyenvRootEnv = []string{"PYUP_PYENV_ROOT", "PYENV_ROOT"}

// DefaultPyenvRoot returns pyenv_root as the environment sets it, or
// ~/.pyenv. The result is not expanded.
func DefaultPyenvRoot() string {
	for _, name := range pyenvRootEnv {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return paths.DefaultPyenvRoot
}

// Config represents the top-level configuration structure.
type Config struct {
	Version        int          `mapstructure:"version" yaml:"version"`
	PyenvRoot      string       `mapstructure:"pyenv_root" yaml:"pyenv_root"`
	CatalogLimit   int          `mapstructure:"catalog_limit" yaml:"catalog_limit"`
	Shell          string       `mapstructure:"shell" yaml:"shell"`
	InstallPlugin  bool         `mapstructure:"install_plugin" yaml:"install_plugin"`
	InstallerURL   string       `mapstructure:"installer_url" yaml:"installer_url"`
	PyenvRepo      string       `mapstructure:"pyenv_repo" yaml:"pyenv_repo"`
	VirtualenvRepo string       `mapstructure:"virtualenv_repo" yaml:"virtualenv_repo"`
	Demo           DemoConfig   `mapstructure:"demo" yaml:"demo"`
	Backup         BackupConfig `mapstructure:"backup" yaml:"backup"`
}

// DemoConfig locates the demonstration project.
type DemoConfig struct {
	Dir     string `mapstructure:"dir" yaml:"dir"`
	EnvName string `mapstructure:"env_name" yaml:"env_name"`
}

// BackupConfig controls shell profile backups.
type BackupConfig struct {
	Retention int `mapstructure:"retention" yaml:"retention"`
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix("PYUP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv(append([]string{"pyenv_root"}, pyenvRootEnv...)...)

	viper.SetDefault("version", 1)
	viper.SetDefault("pyenv_root", paths.DefaultPyenvRoot)
	viper.SetDefault("catalog_limit", DefaultCatalogLimit)
	viper.SetDefault("shell", "")
	viper.SetDefault("install_plugin", true)
	viper.SetDefault("installer_url", DefaultInstallerURL)
	viper.SetDefault("pyenv_repo", DefaultPyenvRepo)
	viper.SetDefault("virtualenv_repo", DefaultVirtualenvRepo)
	viper.SetDefault("demo.dir", paths.DefaultDemoDir)
	viper.SetDefault("demo.env_name", DefaultEnvName)
	viper.SetDefault("backup.retention", DefaultRetention)
}

// Load reads the configuration file.
// An explicit path must exist; otherwise a missing file means defaults.
// Home-relative paths in the result are expanded.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Defaults only.
		case errors.As(err, &notFound):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	return Current()
}

// Current decodes the settings viper holds now, including values changed
// with viper.Set since Load.
func Current() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	var err error
	if cfg.PyenvRoot, err = paths.Expand(cfg.PyenvRoot); err != nil {
		return nil, errors.Wrap(err, "pyenv_root")
	}
	if cfg.Demo.Dir, err = paths.Expand(cfg.Demo.Dir); err != nil {
		return nil, errors.Wrap(err, "demo.dir")
	}

	return &cfg, nil
}
