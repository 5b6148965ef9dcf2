// Package config provides configuration management for the pyup CLI.
//
// Settings come from, in increasing precedence: built-in defaults, the YAML
// file at ~/.config/pyup/config.yaml (or ./config.yaml, or --config), and
// PYUP_* environment variables. Nested keys use an underscore in the
// environment, so demo.env_name is PYUP_DEMO_ENV_NAME.
//
//	version: 1
//	pyenv_root: ~/.pyenv
//	catalog_limit: 10
//	shell: ""            # empty means $SHELL
//	install_plugin: true
//	installer_url: https://pyenv.run
//	demo:
//	  dir: ~/pyenv_virtualenv_demo
//	  env_name: demo-env
//	backup:
//	  retention: 5
//
// Paths starting with "~" are expanded by [Load]. [Validate] reports every
// problem at once rather than stopping at the first.
package config
