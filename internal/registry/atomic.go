package registry

import (
	"os"
	"path/filepath"
)

// writeFileAtomic replaces path with data via a sibling temp file and rename.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IoError{Op: "create directory", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return &IoError{Op: "create temp file", Path: path, Err: err}
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &IoError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return &IoError{Op: "chmod", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IoError{Op: "close", Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &IoError{Op: "replace", Path: path, Err: err}
	}
	return nil
}
