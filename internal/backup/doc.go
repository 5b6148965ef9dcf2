// Package backup keeps copies of shell profiles that pyup is about to
// change, so an edit can be undone with `pyup backup restore`.
//
// Each backup is a timestamped directory holding the copied files and a
// manifest.json with their SHA-256 hashes and permission bits:
//
//	$XDG_CONFIG_HOME/pyup/backups/profile/
//	└── 20260123T100712/
//	    ├── manifest.json
//	    └── home/user/.zshrc
//
// [Manager.Restore] verifies every hash before touching the original
// location and writes files back atomically. If the current file differs
// from the backup it is itself backed up first. Backups beyond the
// retention count are removed oldest first.
package backup
