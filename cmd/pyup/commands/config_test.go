package commands

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/pyup/internal/config"
	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/runner"
)

func setupTestConfig(t *testing.T) string {
	t.Helper()
	viper.Reset()
	config.Init()

	path := filepath.Join(t.TempDir(), "pyup", "config.yaml")
	viper.SetConfigFile(path)

	orig := configPath
	configPath = path
	t.Cleanup(func() {
		configPath = orig
		viper.Reset()
	})
	return path
}

func readConfigFile(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))
	return got
}

func TestRunConfigSet(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  any
	}{
		{"int", "catalog_limit", "20", 20},
		{"bool", "install_plugin", "false", false},
		{"nested string", "demo.env_name", "scratch", "scratch"},
		{"key is case insensitive", "Shell", "bash", "bash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := setupTestConfig(t)
			c, out := testCommand(t)

			require.NoError(t, runConfigSet(c, []string{tt.key, tt.value}))

			assert.Contains(t, out.String(), "Set ")
			assert.Equal(t, tt.want, viper.Get(tt.key))
			assert.FileExists(t, path)
		})
	}
}

func TestRunConfigSet_WritesNestedYAML(t *testing.T) {
	path := setupTestConfig(t)
	c, _ := testCommand(t)

	require.NoError(t, runConfigSet(c, []string{"demo.env_name", "scratch"}))

	got := readConfigFile(t, path)
	demo, ok := got["demo"].(map[string]any)
	require.True(t, ok, "demo should be a nested mapping")
	assert.Equal(t, "scratch", demo["env_name"])
	assert.Equal(t, 10, got["catalog_limit"])
}

func TestRunConfigSet_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "colour", "blue"},
		{"parent key", "demo", "x"},
		{"not a number", "catalog_limit", "lots"},
		{"not a bool", "install_plugin", "maybe"},
		{"out of range", "catalog_limit", "500"},
		{"relative path", "pyenv_root", "relative/dir"},
		{"http installer", "installer_url", "http://pyenv.run"},
		{"bad env name", "demo.env_name", "-bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := setupTestConfig(t)
			before := viper.Get(tt.key)
			c, _ := testCommand(t)

			err := runConfigSet(c, []string{tt.key, tt.value})
			require.Error(t, err)

			var exitErr *errors.ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, errors.ExitUser, exitErr.Code)
			assert.Equal(t, before, viper.Get(tt.key), "rejected value must not stick")
			assert.NoFileExists(t, path)
		})
	}
}

func TestRunConfigGet(t *testing.T) {
	setupTestConfig(t)
	c, out := testCommand(t)

	require.NoError(t, runConfigGet(c, []string{"demo.env_name"}))
	assert.Equal(t, "demo-env\n", out.String())

	err := runConfigGet(c, []string{"nope"})
	require.Error(t, err)
}

func TestRunConfigList(t *testing.T) {
	setupTestConfig(t)
	c, out := testCommand(t)

	require.NoError(t, runConfigList(c, nil))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 10, got["catalog_limit"])
	assert.Equal(t, config.DefaultInstallerURL, got["installer_url"])
}

func TestRunConfigEdit_CreatesFileFirst(t *testing.T) {
	path := setupTestConfig(t)

	orig := openEditor
	defer func() { openEditor = orig }()
	var opened string
	openEditor = func(_ context.Context, _ runner.Env, p string, _ io.Reader, _, _ io.Writer) error {
		opened = p
		return nil
	}

	c, out := testCommand(t)
	require.NoError(t, runConfigEdit(c, nil))

	assert.Equal(t, path, opened)
	assert.FileExists(t, path)
	assert.Contains(t, out.String(), "Created "+path)
	assert.Equal(t, "demo-env", readConfigFile(t, path)["demo"].(map[string]any)["env_name"])
}
