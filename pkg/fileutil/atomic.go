// Package fileutil provides file system helpers for writing user files
// without leaving them half-written.
package fileutil

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/pyup/internal/errors"
)

// DefaultPerm is applied to files that do not exist yet.
const DefaultPerm os.FileMode = 0o644

// AtomicWriteFile writes data to path through a temp file in the same
// directory followed by a rename. An interrupted write leaves the previous
// content intact.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	// Same directory so the rename stays on one filesystem.
	tmp, err := os.CreateTemp(dir, ".pyup-*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "setting file permissions")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "syncing temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}
	renamed = true
	return nil
}

// maxLinkHops bounds the symlink chains ResolveLink follows.
const maxLinkHops = 40

// ResolveLink follows symlinks at path and returns the file they end at.
// A dangling final link resolves to its missing target so the target can
// be created. Anything that is not a link is returned unchanged.
func ResolveLink(path string) (string, error) {
	current := path
	for range maxLinkHops {
		info, err := os.Lstat(current)
		if errors.Is(err, fs.ErrNotExist) {
			return current, nil
		}
		if err != nil {
			return "", errors.Wrapf(err, "resolving %s", path)
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			return current, nil
		}
		target, err := os.Readlink(current)
		if err != nil {
			return "", errors.Wrapf(err, "resolving %s", path)
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(current), target)
		}
		current = target
	}
	return "", errors.Newf("resolving %s: too many levels of symbolic links", path)
}

// AtomicAppend appends data to the file at path. Existing bytes are kept
// exactly as they are and the file mode is preserved; a missing file is
// created with DefaultPerm. If the current content does not end in a
// newline, one is inserted before data.
//
// A symlinked path stays a symlink: the write lands on the file it points at.
func AtomicAppend(path string, data []byte) error {
	path, err := ResolveLink(path)
	if err != nil {
		return err
	}

	existing, err := ReadFileWithLimit(path)
	perm := DefaultPerm
	switch {
	case err == nil:
		info, statErr := os.Stat(path)
		if statErr != nil {
			return errors.Wrap(statErr, "stating file")
		}
		perm = info.Mode().Perm()
	case errors.Is(err, fs.ErrNotExist):
		existing = nil
	default:
		return err
	}

	var buf bytes.Buffer
	buf.Grow(len(existing) + len(data) + 1)
	buf.Write(existing)
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.Write(data)

	return AtomicWriteFile(path, buf.Bytes(), perm)
}

// AtomicWriteJSON encodes v as indented JSON and writes it to path
// atomically with DefaultPerm.
func AtomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling JSON")
	}
	return AtomicWriteFile(path, append(data, '\n'), DefaultPerm)
}

// AtomicWriteTOML encodes v as TOML and writes it to path atomically.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteTOML(path string, v any, perm os.FileMode) error {
	data, err := toml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling TOML")
	}
	return AtomicWriteFile(path, data, perm)
}

// AtomicWriteYAML encodes v as YAML and writes it to path atomically with
// DefaultPerm.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteYAML(path string, v any) (err error) {
	// yaml.Marshal panics on unmarshalable types.
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("marshaling YAML: %v", r)
		}
	}()

	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling YAML")
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	return AtomicWriteFile(path, data, DefaultPerm)
}
