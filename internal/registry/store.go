package registry

import (
	"errors"
	"os"
	"strings"
)

// VersionStore is the flat list of installed versions, one per line.
type VersionStore struct {
	path string
}

// NewVersionStore returns a store backed by the file at path.
func NewVersionStore(path string) *VersionStore {
	return &VersionStore{path: path}
}

// Path returns the backing file.
func (s *VersionStore) Path() string { return s.path }

// List returns the recorded versions in insertion order. A missing or empty
// file yields an empty list.
func (s *VersionStore) List() ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, &IoError{Op: "read", Path: s.path, Err: err}
	}
	return parseVersions(string(data)), nil
}

// Contains reports whether id is recorded.
func (s *VersionStore) Contains(id string) (bool, error) {
	versions, err := s.List()
	if err != nil {
		return false, err
	}
	id = strings.TrimSpace(id)
	for _, v := range versions {
		if v == id {
			return true, nil
		}
	}
	return false, nil
}

// Add records id. Adding a version that is already present is a no-op.
func (s *VersionStore) Add(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	versions, err := s.List()
	if err != nil {
		return err
	}
	for _, v := range versions {
		if v == id {
			return nil
		}
	}
	return s.write(append(versions, id))
}

// Remove drops every entry equal to id. Removing an absent version is a no-op.
func (s *VersionStore) Remove(id string) error {
	id = strings.TrimSpace(id)
	versions, err := s.List()
	if err != nil {
		return err
	}
	kept := versions[:0]
	for _, v := range versions {
		if v != id {
			kept = append(kept, v)
		}
	}
	return s.write(kept)
}

func (s *VersionStore) write(versions []string) error {
	var b strings.Builder
	for _, v := range versions {
		b.WriteString(v)
		b.WriteByte('\n')
	}
	return writeFileAtomic(s.path, []byte(b.String()), 0o644)
}

// parseVersions trims each line, skips blanks and collapses duplicates so a
// hand-edited file still reads as a set.
func parseVersions(content string) []string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		v := strings.TrimSpace(line)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
