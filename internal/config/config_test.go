package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	viper.Reset()
	Init()

	assert.Equal(t, 1, viper.GetInt("version"))
	assert.Equal(t, DefaultCatalogLimit, viper.GetInt("catalog_limit"))
	assert.Equal(t, DefaultEnvName, viper.GetString("demo.env_name"))
	assert.True(t, viper.GetBool("install_plugin"))
}

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("PYENV_ROOT", "")
	t.Setenv("PYUP_PYENV_ROOT", "")
	Init()

	cfg, err := Load("")
	require.NoError(t, err)

	home, err := homedir.Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".pyenv"), cfg.PyenvRoot)
	assert.Equal(t, filepath.Join(home, "pyenv_virtualenv_demo"), cfg.Demo.Dir)
	assert.Equal(t, DefaultInstallerURL, cfg.InstallerURL)
	assert.Equal(t, DefaultRetention, cfg.Backup.Retention)
	assert.Empty(t, Validate(cfg))
}

func TestLoad_WithConfigFile(t *testing.T) {
	viper.Reset()
	t.Setenv("PYENV_ROOT", "")
	t.Setenv("PYUP_PYENV_ROOT", "")

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := []byte("catalog_limit: 3\npyenv_root: /opt/pyenv\ndemo:\n  env_name: scratch\n")
	require.NoError(t, os.WriteFile(configPath, content, 0o600))

	Init()
	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.CatalogLimit)
	assert.Equal(t, "/opt/pyenv", cfg.PyenvRoot)
	assert.Equal(t, "scratch", cfg.Demo.EnvName)
	// Untouched nested default survives.
	assert.NotEmpty(t, cfg.Demo.Dir)
}

func TestLoad_EnvOverride(t *testing.T) {
	viper.Reset()
	t.Setenv("PYUP_CATALOG_LIMIT", "7")
	t.Setenv("PYUP_DEMO_ENV_NAME", "from-env")

	Init()
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.CatalogLimit)
	assert.Equal(t, "from-env", cfg.Demo.EnvName)
}

func TestLoad_PyenvRootFromEnv(t *testing.T) {
	tests := []struct {
		name      string
		pyenvRoot string
		pyupRoot  string
		want      string
	}{
		{name: "pyenv's own variable", pyenvRoot: "/opt/pyenv", want: "/opt/pyenv"},
		{name: "pyup variable wins", pyenvRoot: "/opt/pyenv", pyupRoot: "/srv/pyenv", want: "/srv/pyenv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Setenv("PYENV_ROOT", tt.pyenvRoot)
			t.Setenv("PYUP_PYENV_ROOT", tt.pyupRoot)

			Init()
			cfg, err := Load("")
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.PyenvRoot)
			assert.Equal(t, tt.want, DefaultPyenvRoot())
		})
	}
}

func TestDefaultPyenvRoot_Unset(t *testing.T) {
	t.Setenv("PYENV_ROOT", "")
	t.Setenv("PYUP_PYENV_ROOT", "")
	assert.Equal(t, "~/.pyenv", DefaultPyenvRoot())
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	viper.Reset()
	Init()

	_, err := Load("/non/existent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	viper.Reset()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("catalog_limit: [unclosed\n"), 0o600))

	Init()
	_, err := Load(configPath)
	assert.Error(t, err)
}
