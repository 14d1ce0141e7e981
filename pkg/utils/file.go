package utils

import (
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to a sibling temp file and renames it over
// path, so a crash mid-write never leaves a partially written file behind.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return err
	}

	// CreateTemp defaults to 0600.
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)

		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)

		return err
	}

	return nil
}
