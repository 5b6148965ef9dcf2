package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/pyup/internal/config"
	"github.com/thoreinstein/pyup/internal/editor"
	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/paths"
	"github.com/thoreinstein/pyup/internal/runner"
	"github.com/thoreinstein/pyup/pkg/fileutil"
)

// openEditor is replaced in tests.
var openEditor = editor.Open

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage pyup configuration",
	Long: `Manage pyup configuration stored in ~/.config/pyup/config.yaml.

Every key can also be set through the environment with a PYUP_ prefix, for
example PYUP_CATALOG_LIMIT=20 or PYUP_DEMO_ENV_NAME=scratch.

Without a subcommand, lists all configuration values.`,
	Example: `  # List all configuration
  pyup config

  # Get a specific value
  pyup config get catalog_limit

  # Set a value
  pyup config set demo.env_name scratch

  See Also: pyup doctor`,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key.

Nested keys use dot notation, for example demo.dir.`,
	Example: `  # Where the demo project goes
  pyup config get demo.dir

  See Also: pyup config set, pyup config list`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save the config file.

The value is checked before anything is written: numbers and booleans must
parse, paths must be absolute or start with ~, and URLs must be fetchable.`,
	Example: `  # Show more versions in the setup menu
  pyup config set catalog_limit 20

  # Do not install pyenv-virtualenv
  pyup config set install_plugin false

  See Also: pyup config get, pyup config list`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all configuration",
	Long:  `List all configuration values in YAML format.`,
	Example: `  # List all configuration
  pyup config list

  See Also: pyup config get, pyup config set`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open configuration in $EDITOR",
	Long: `Open the configuration file in your editor.

Uses $EDITOR, then $VISUAL, then nano, then vi. If the file does not exist
yet it is created with the defaults first.`,
	Example: `  # Open config in default editor
  pyup config edit

  # Open with a specific editor
  EDITOR=nano pyup config edit

  See Also: pyup config list`,
	Args: cobra.NoArgs,
	RunE: runConfigEdit,
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(args[0])
	if !knownKey(key) {
		return unknownKeyError(key)
	}
	fmt.Fprintln(cmd.OutOrStdout(), viper.GetString(key))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(args[0])
	if !knownKey(key) {
		return unknownKeyError(key)
	}

	value, err := parseConfigValue(key, args[1])
	if err != nil {
		return err
	}

	previous := viper.Get(key)
	viper.Set(key, value)

	updated, err := config.Current()
	if err == nil {
		if problems := config.Validate(updated); len(problems) > 0 {
			err = problems[0]
		}
	}
	if err != nil {
		viper.Set(key, previous)
		return errors.NewUserError(
			errors.Wrapf(errors.ErrInvalidConfig, "%s: %v", key, err),
			"Check the value and try again.",
		)
	}

	path := configFilePath()
	if err := writeConfig(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, value)
	return nil
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	data, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	path := configFilePath()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeConfig(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Created %s with default settings.\n", path)
	}

	return openEditor(commandContext(cmd), runner.FromOS(), path,
		cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// knownKey reports whether key is a leaf setting pyup understands.
func knownKey(key string) bool {
	return slices.Contains(viper.AllKeys(), key)
}

func unknownKeyError(key string) error {
	keys := viper.AllKeys()
	slices.Sort(keys)
	return errors.NewUserError(
		errors.Newf("unknown config key %q", key),
		"Valid keys: "+strings.Join(keys, ", "),
	)
}

// parseConfigValue converts raw to the type of key's current value.
func parseConfigValue(key, raw string) (any, error) {
	switch viper.Get(key).(type) {
	case int, int64:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.NewUserError(errors.Newf("%s must be a number, got %q", key, raw), "")
		}
		return n, nil
	case bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.NewUserError(errors.Newf("%s must be true or false, got %q", key, raw), "")
		}
		return b, nil
	default:
		return raw, nil
	}
}

// configFilePath returns the file config set and edit write to.
func configFilePath() string {
	switch {
	case configPath != "":
		return configPath
	case viper.ConfigFileUsed() != "":
		return viper.ConfigFileUsed()
	default:
		return paths.ConfigFile()
	}
}

// writeConfig writes the current viper settings to path.
func writeConfig(path string) error {
	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	if err := fileutil.AtomicWriteYAML(path, viper.AllSettings()); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return nil
}
