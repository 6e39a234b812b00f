package install

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

type releaseCacheEntry struct {
	Releases  []Release `json:"releases"`
	FetchedAt time.Time `json:"fetched_at"`
}

type releaseCacheFile struct {
	Entries map[string]releaseCacheEntry `json:"entries"`
}

// ReleaseCache keeps the last remote listing on disk for a short time so
// repeated list-remote calls do not walk every API page again. Failures to
// read or write it are ignored.
type ReleaseCache struct {
	path string
	ttl  time.Duration
	now  func() time.Time
}

// NewReleaseCache returns a cache at path. A zero ttl disables it.
func NewReleaseCache(path string, ttl time.Duration) *ReleaseCache {
	return &ReleaseCache{path: path, ttl: ttl, now: time.Now}
}

func (c *ReleaseCache) load() releaseCacheFile {
	empty := releaseCacheFile{Entries: map[string]releaseCacheEntry{}}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return empty
	}
	var rc releaseCacheFile
	if err := json.Unmarshal(data, &rc); err != nil {
		return empty
	}
	if rc.Entries == nil {
		rc.Entries = map[string]releaseCacheEntry{}
	}
	return rc
}

// Load returns the cached listing for repo if present and not expired.
func (c *ReleaseCache) Load(repo string) ([]Release, bool) {
	if c == nil || c.ttl <= 0 {
		return nil, false
	}
	entry, ok := c.load().Entries[repo]
	if !ok || len(entry.Releases) == 0 {
		return nil, false
	}
	if c.now().Sub(entry.FetchedAt) > c.ttl {
		return nil, false
	}
	return entry.Releases, true
}

// Store records the listing for repo.
func (c *ReleaseCache) Store(repo string, releases []Release) {
	if c == nil || c.ttl <= 0 {
		return
	}
	rc := c.load()
	rc.Entries[repo] = releaseCacheEntry{Releases: releases, FetchedAt: c.now()}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return
	}
	data, err := json.MarshalIndent(rc, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(c.path, data, 0o644)
}
