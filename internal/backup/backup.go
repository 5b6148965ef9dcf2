package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/thoreinstein/pyup/internal/errors"
	"github.com/thoreinstein/pyup/internal/paths"
	"github.com/thoreinstein/pyup/pkg/fileutil"
)

// Version is recorded in manifests. The command layer sets it from build
// info.
var Version = "dev"

const manifestName = "manifest.json"

// Manager creates, lists, restores and prunes backups under one directory.
type Manager struct {
	rootDir        string
	retentionCount int
	now            func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the directory backups are stored in.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		m.rootDir = dir
	}
}

// WithRetentionCount sets how many backups Backup keeps. Values below one
// are ignored.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retentionCount = n
		}
	}
}

// NewManager returns a Manager for the profile backup directory.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir:        paths.ProfileBackupDir(),
		retentionCount: DefaultRetentionCount,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the directory backups are stored in.
func (m *Manager) Dir() string { return m.rootDir }

// Backup copies the files at paths into a new backup and then prunes old
// ones. Missing paths are skipped; if none exist ErrNothingToBackUp is
// returned. Directories are not accepted.
func (m *Manager) Backup(reason string, files ...string) (*Manifest, error) {
	var existing []string
	for _, p := range files {
		info, err := os.Stat(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", p)
		}
		if info.IsDir() {
			return nil, errors.Newf("%s is a directory", p)
		}
		existing = append(existing, p)
	}
	if len(existing) == 0 {
		return nil, ErrNothingToBackUp
	}

	id, dir, err := m.claimDir()
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{
		Version:     ManifestVersion,
		CreatedAt:   m.now().UTC(),
		Reason:      reason,
		PyupVersion: Version,
		ID:          id,
	}
	for _, src := range existing {
		bf, err := backupFile(src, dir)
		if err != nil {
			_ = os.RemoveAll(dir)
			return nil, errors.Wrapf(err, "backing up %s", src)
		}
		manifest.Files = append(manifest.Files, *bf)
	}

	if err := fileutil.AtomicWriteJSON(filepath.Join(dir, manifestName), manifest); err != nil {
		_ = os.RemoveAll(dir)
		return nil, errors.Wrap(err, "writing manifest")
	}

	if err := m.Prune(m.retentionCount); err != nil {
		return manifest, errors.Wrap(err, "pruning old backups")
	}
	return manifest, nil
}

// claimDir creates a fresh backup directory. Two backups in the same
// second get "-2", "-3" suffixes.
func (m *Manager) claimDir() (string, string, error) {
	if err := paths.EnsureDir(m.rootDir, 0); err != nil {
		return "", "", errors.Wrap(err, "creating backup directory")
	}

	base := m.now().UTC().Format(idLayout)
	id := base
	for n := 2; ; n++ {
		dir := filepath.Join(m.rootDir, id)
		err := os.Mkdir(dir, paths.DefaultDirPerm)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", "", errors.Wrap(err, "creating backup directory")
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

func backupFile(src, backupDir string) (*File, error) {
	rel := generateRelPath(src)
	dst := filepath.Join(backupDir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), paths.DefaultDirPerm); err != nil {
		return nil, errors.Wrap(err, "creating parent directory")
	}

	hash, mode, err := copyFile(src, dst)
	if err != nil {
		return nil, err
	}
	return &File{OriginalPath: src, RelPath: rel, SHA256Hash: hash, Mode: mode}, nil
}

// Restore writes the files of backup id back to their original
// locations. Every file is verified before any is written.
func (m *Manager) Restore(id string) (*Manifest, error) {
	manifest, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(m.rootDir, id)
	contents := make([][]byte, len(manifest.Files))
	for i, bf := range manifest.Files {
		data, err := os.ReadFile(filepath.Join(dir, bf.RelPath))
		if err != nil {
			return nil, errors.Wrapf(err, "reading backup file %s", bf.RelPath)
		}
		if hashBytes(data) != bf.SHA256Hash {
			return nil, errors.Wrapf(ErrBackupCorrupted, "file %s hash mismatch", bf.RelPath)
		}
		contents[i] = data
	}

	var changed []string
	for _, bf := range manifest.Files {
		current, err := hashFile(bf.OriginalPath)
		if err == nil && current == bf.SHA256Hash {
			continue
		}
		changed = append(changed, bf.OriginalPath)
	}
	if len(changed) > 0 {
		if _, err := m.Backup("before restoring "+id, changed...); err != nil && !errors.Is(err, ErrNothingToBackUp) {
			return nil, errors.Wrap(err, "backing up current files")
		}
	}

	for i, bf := range manifest.Files {
		// A symlink at the original path is kept; its target is rewritten.
		dest, err := fileutil.ResolveLink(bf.OriginalPath)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(dest), paths.DefaultDirPerm); err != nil {
			return nil, errors.Wrapf(err, "creating directory for %s", bf.OriginalPath)
		}
		if err := fileutil.AtomicWriteFile(dest, contents[i], bf.Mode.Perm()); err != nil {
			return nil, errors.Wrapf(err, "restoring %s", bf.OriginalPath)
		}
	}
	return manifest, nil
}

// List returns all backups, newest first.
func (m *Manager) List() ([]Manifest, error) {
	entries, err := os.ReadDir(m.rootDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoBackupsFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading backup directory")
	}

	manifests := make([]Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.Get(entry.Name())
		if err != nil {
			// Not a backup.
			continue
		}
		manifests = append(manifests, *manifest)
	}
	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}

	slices.SortFunc(manifests, func(a, b Manifest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(b.ID, a.ID)
	})
	return manifests, nil
}

// Prune removes all but the keep most recent backups.
func (m *Manager) Prune(keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}

	manifests, err := m.List()
	if errors.Is(err, ErrNoBackupsFound) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, old := range manifests[min(keep, len(manifests)):] {
		if err := os.RemoveAll(filepath.Join(m.rootDir, old.ID)); err != nil {
			return errors.Wrapf(err, "removing backup %s", old.ID)
		}
	}
	return nil
}

// Get loads the manifest of backup id.
func (m *Manager) Get(id string) (*Manifest, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	data, err := fileutil.ReadFileWithLimit(filepath.Join(m.rootDir, id, manifestName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrapf(ErrNoBackupsFound, "backup %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}
	manifest.ID = id
	return &manifest, nil
}

func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return errors.Wrapf(ErrInvalidID, "%q", id)
	}
	return nil
}

// compareIDs orders "20260101T000000-10" after "20260101T000000-9".
func compareIDs(a, b string) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return strings.Compare(a, b)
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening file")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(err, "reading file")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyFile copies src to dst and returns the content hash and src's mode.
func copyFile(src, dst string) (hash string, mode fs.FileMode, err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return "", 0, errors.Wrap(err, "opening source file")
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return "", 0, errors.Wrap(err, "stat source file")
	}
	mode = srcInfo.Mode().Perm()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", 0, errors.Wrap(err, "creating destination file")
	}

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(dstFile, h), srcFile); err != nil {
		dstFile.Close()
		return "", 0, errors.Wrap(err, "copying file")
	}
	if err := dstFile.Close(); err != nil {
		return "", 0, errors.Wrap(err, "closing destination file")
	}
	return hex.EncodeToString(h.Sum(nil)), mode, nil
}

// generateRelPath maps an absolute path to its location inside a backup
// directory: the leading separator and any colons are dropped.
func generateRelPath(absPath string) string {
	clean := filepath.Clean(absPath)
	clean = strings.TrimPrefix(clean, string(filepath.Separator))
	return strings.ReplaceAll(clean, ":", "")
}
