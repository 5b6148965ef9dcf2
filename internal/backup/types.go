package backup

import (
	"io/fs"
	"time"

	"github.com/thoreinstein/pyup/internal/errors"
)

// ManifestVersion is written into every manifest.
const ManifestVersion = 1

// DefaultRetentionCount is the number of backups kept when unconfigured.
const DefaultRetentionCount = 5

// idLayout formats backup IDs. It contains no colons so IDs are valid
// directory names everywhere.
const idLayout = "20060102T150405"

var (
	// ErrNoBackupsFound indicates the backup directory is empty or the
	// requested ID does not exist.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates a backed-up file no longer matches the
	// hash recorded in its manifest.
	ErrBackupCorrupted = errors.New("backup corrupted")

	// ErrNothingToBackUp indicates none of the given paths exist.
	ErrNothingToBackUp = errors.New("nothing to back up")

	// ErrInvalidID indicates a backup ID that is not a plain directory name.
	ErrInvalidID = errors.New("invalid backup ID")
)

// Manifest describes one backup. It is stored as manifest.json.
type Manifest struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	// Reason says what pyup was about to do, e.g. "append pyenv init".
	Reason      string `json:"reason,omitempty"`
	Files       []File `json:"files"`
	PyupVersion string `json:"pyup_version"`

	// ID is the directory name. It is filled in on load, not stored.
	ID string `json:"-"`
}

// File is one backed-up file.
type File struct {
	OriginalPath string      `json:"original_path"`
	RelPath      string      `json:"rel_path"`
	SHA256Hash   string      `json:"sha256_hash"`
	Mode         fs.FileMode `json:"mode"`
}
