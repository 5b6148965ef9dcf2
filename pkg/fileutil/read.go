package fileutil

import (
	"io"
	"os"

	"github.com/thoreinstein/pyup/internal/errors"
)

// MaxFileSize bounds every file pyup reads back: shell profiles, pin files,
// backup manifests and the state file.
const MaxFileSize = 1 << 20

// ErrFileTooLarge matches every error returned for an oversized file.
var ErrFileTooLarge = errors.New("file too large")

// ReadFileWithLimit reads path if it is at most MaxFileSize bytes.
func ReadFileWithLimit(path string) ([]byte, error) {
	return ReadLimited(path, MaxFileSize)
}

// ReadLimited reads path if it is at most limit bytes. The size is checked
// again while reading, so a file growing underneath is still caught. Open
// failures keep their fs error for errors.Is(err, fs.ErrNotExist).
func ReadLimited(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	tooLarge := func() error {
		return errors.Wrapf(ErrFileTooLarge, "%s exceeds %d bytes", path, limit)
	}

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if info.Size() > limit {
		return nil, tooLarge()
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	switch {
	case err != nil:
		return nil, errors.Wrapf(err, "reading %s", path)
	case int64(len(data)) > limit:
		return nil, tooLarge()
	}
	return data, nil
}
