package registry

import (
	"errors"
	"os"
	"strings"

	"bap/internal/paths"
)

// LocalOverride is the .localrc pin for a single directory. Parent
// directories are never consulted: a pin applies to exactly the directory it
// was written in.
type LocalOverride struct {
	path string
}

// NewLocalOverride returns the override for dir.
func NewLocalOverride(dir string) *LocalOverride {
	return &LocalOverride{path: paths.LocalMarker(dir)}
}

// Path returns the marker file.
func (o *LocalOverride) Path() string { return o.path }

// Set pins id for the directory, replacing any previous pin.
func (o *LocalOverride) Set(id string) error {
	return writeFileAtomic(o.path, []byte(strings.TrimSpace(id)), 0o644)
}

// Get returns the pinned version. A missing or blank marker reports false.
func (o *LocalOverride) Get() (string, bool, error) {
	data, err := os.ReadFile(o.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, &IoError{Op: "read", Path: o.path, Err: err}
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return "", false, nil
	}
	return v, true, nil
}
