// Package fsutil writes generated artifacts (reports, README, manifests)
// under an advisory file lock so concurrent scheduled jobs never interleave.
package fsutil

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
)

// WriteFile writes data to path while holding an exclusive lock on it,
// creating parent directories as needed.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := lockedfile.Write(path, bytes.NewReader(data), perm); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// ReadFile reads path while holding a shared lock on it
func ReadFile(path string) ([]byte, error) {
	data, err := lockedfile.Read(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return data, nil
}

// Transform rewrites path in place under an exclusive lock. A missing file is
// passed to fn as empty content.
func Transform(path string, fn func([]byte) ([]byte, error)) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := lockedfile.Transform(path, fn); err != nil {
		return errors.Wrapf(err, "failed to update %s", path)
	}
	return nil
}

// Exists reports whether path exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", dir)
	}
	return nil
}
