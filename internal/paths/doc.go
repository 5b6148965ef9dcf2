// Package paths resolves every location pyup reads or writes.
//
// pyup's own files follow the XDG Base Directory Specification through
// github.com/adrg/xdg:
//
//	| File        | Location                                   |
//	|-------------|--------------------------------------------|
//	| config      | <ConfigHome>/pyup/config.yaml              |
//	| state       | <StateHome>/pyup/state.toml                |
//	| backups     | <ConfigHome>/pyup/backups/profile/<id>/    |
//	| log file    | <StateHome>/pyup/pyup.log (when enabled)   |
//
// Files owned by pyenv and the shell are home-relative. User-supplied paths
// may start with "~", which [Expand] resolves via github.com/mitchellh/go-homedir.
package paths
