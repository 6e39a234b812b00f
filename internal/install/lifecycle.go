package install

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"bap/internal/config"
	"bap/internal/logx"
	"bap/internal/paths"
	"bap/internal/registry"
)

const stagingPrefix = ".staging-"

// Lifecycle installs and removes agent versions and keeps the version store
// consistent with the bin directory. The directory is the ground truth for
// "installed"; the store is an index over it.
type Lifecycle struct {
	paths    paths.RootPaths
	store    *registry.VersionStore
	global   *registry.GlobalConfigFile
	fetcher  Fetcher
	platform Platform
	agent    config.AgentSettings
	logger   *log.Logger

	// mu serializes read-modify-write of the store and the global config.
	mu sync.Mutex
}

// Result describes a completed install.
type Result struct {
	Version     string `json:"version"`
	Dir         string `json:"dir"`
	Reinstalled bool   `json:"reinstalled"`
}

// UninstallResult describes a completed uninstall.
type UninstallResult struct {
	Version        string `json:"version"`
	Dir            string `json:"dir"`
	ClearedDefault bool   `json:"cleared_default"`
}

// New wires a lifecycle over the root layout.
func New(pp paths.RootPaths, fetcher Fetcher, platform Platform, agent config.AgentSettings) *Lifecycle {
	return &Lifecycle{
		paths:    pp,
		store:    registry.NewVersionStore(pp.VersionsFile),
		global:   registry.NewGlobalConfigFile(pp.ConfigFile),
		fetcher:  fetcher,
		platform: platform,
		agent:    agent,
		logger:   logx.Discard(),
	}
}

// SetLogger routes lifecycle diagnostics to logger.
func (l *Lifecycle) SetLogger(logger *log.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// VersionDir returns the installed directory for id.
func (l *Lifecycle) VersionDir(id string) string {
	return l.paths.VersionDir(registry.Normalize(id))
}

// AgentPath returns the agent executable inside the version directory.
func (l *Lifecycle) AgentPath(id string) string {
	return filepath.Join(l.VersionDir(id), l.agent.Binary)
}

// ConfigPath returns the agent config file inside the version directory.
func (l *Lifecycle) ConfigPath(id string) string {
	return filepath.Join(l.VersionDir(id), l.agent.ConfigFile)
}

// IsInstalled reports whether the version directory exists.
func (l *Lifecycle) IsInstalled(id string) (bool, error) {
	version := registry.Normalize(id)
	if err := ValidateVersion(version); err != nil {
		return false, err
	}
	dir := l.paths.VersionDir(version)
	ok, err := paths.DirExists(dir)
	if err != nil {
		return false, &registry.IoError{Op: "stat", Path: dir, Err: err}
	}
	return ok, nil
}

// Install fetches id and registers it. Installing a version that is already
// present downloads it again and replaces the directory.
func (l *Lifecycle) Install(ctx context.Context, id string) (Result, error) {
	version := registry.Normalize(id)
	if err := ValidateVersion(version); err != nil {
		return Result{}, err
	}

	unlock, err := acquireInstallLock(ctx, l.paths.BinDir, version)
	if err != nil {
		return Result{}, err
	}
	defer unlock()

	dest := l.paths.VersionDir(version)
	existed, err := paths.DirExists(dest)
	if err != nil {
		return Result{}, &registry.IoError{Op: "stat", Path: dest, Err: err}
	}

	l.sweepStaging(version)
	staging, err := os.MkdirTemp(l.paths.BinDir, stagingPrefix+version+"-")
	if err != nil {
		return Result{}, &registry.IoError{Op: "create staging dir", Path: l.paths.BinDir, Err: err}
	}
	defer func() { _ = os.RemoveAll(staging) }()
	if err := os.Chmod(staging, 0o755); err != nil {
		return Result{}, &registry.IoError{Op: "chmod", Path: staging, Err: err}
	}

	l.logger.Printf("install %s: fetching for %s into %s", version, l.platform, staging)
	unpacked, err := l.fetcher.FetchAndUnpack(ctx, version, l.platform, staging)
	if err != nil {
		l.logger.Printf("install %s: fetch failed: %v", version, err)
		return Result{}, err
	}
	if unpacked == "" {
		unpacked = staging
	}

	if err := os.RemoveAll(dest); err != nil {
		return Result{}, &registry.IoError{Op: "replace", Path: dest, Err: err}
	}
	if err := os.Rename(unpacked, dest); err != nil {
		return Result{}, &registry.IoError{Op: "commit", Path: dest, Err: err}
	}

	l.mu.Lock()
	err = l.store.Add(version)
	l.mu.Unlock()
	if err != nil {
		return Result{}, err
	}
	l.logger.Printf("install %s: registered (reinstall=%v)", version, existed)
	return Result{Version: version, Dir: dest, Reinstalled: existed}, nil
}

// Uninstall deletes the version directory, then drops the version from the
// store and clears the global default if it pointed at it. If the directory
// cannot be removed nothing else is touched. Local .localrc pins are left
// alone.
func (l *Lifecycle) Uninstall(id string) (UninstallResult, error) {
	version := registry.Normalize(id)
	if err := ValidateVersion(version); err != nil {
		return UninstallResult{}, err
	}

	dir := l.paths.VersionDir(version)
	exists, err := paths.DirExists(dir)
	if err != nil {
		return UninstallResult{}, &registry.IoError{Op: "stat", Path: dir, Err: err}
	}
	if !exists {
		return UninstallResult{}, &registry.NotInstalledError{Version: version}
	}

	if err := os.RemoveAll(dir); err != nil {
		return UninstallResult{}, &registry.IoError{Op: "remove", Path: dir, Err: err}
	}
	l.logger.Printf("uninstall %s: removed %s", version, dir)

	l.mu.Lock()
	cleared, err := l.unregister(version)
	l.mu.Unlock()
	if err != nil {
		return UninstallResult{}, err
	}
	if cleared {
		l.logger.Printf("uninstall %s: cleared global default", version)
	}
	return UninstallResult{Version: version, Dir: dir, ClearedDefault: cleared}, nil
}

func (l *Lifecycle) unregister(version string) (bool, error) {
	if err := l.store.Remove(version); err != nil {
		return false, err
	}
	return l.global.ClearDefaultIf(version)
}

// Installed lists registered versions whose directory still exists. Entries
// whose directory has disappeared are dropped from the store on the way.
func (l *Lifecycle) Installed() ([]string, error) {
	versions, err := l.store.List()
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(versions))
	var stale []string
	for _, v := range versions {
		ok, err := paths.DirExists(l.paths.VersionDir(v))
		if err != nil {
			return nil, &registry.IoError{Op: "stat", Path: l.paths.VersionDir(v), Err: err}
		}
		if ok {
			out = append(out, v)
		} else {
			stale = append(stale, v)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, v := range stale {
		if err := l.store.Remove(v); err != nil {
			l.logger.Printf("repair: drop stale entry %s: %v", v, err)
			continue
		}
		l.logger.Printf("repair: dropped %s from version store (directory missing)", v)
	}
	return out, nil
}

// Unregistered lists version directories that the store does not know
// about, typically left by an interrupted install. They are safe to remove
// or reinstall.
func (l *Lifecycle) Unregistered() ([]string, error) {
	entries, err := os.ReadDir(l.paths.BinDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &registry.IoError{Op: "read directory", Path: l.paths.BinDir, Err: err}
	}
	versions, err := l.store.List()
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(versions))
	for _, v := range versions {
		known[v] = struct{}{}
	}

	var out []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if _, ok := known[e.Name()]; !ok {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// sweepStaging removes staging directories that an interrupted install of
// version left behind. The caller holds the version's install lock, so none
// of them is in use.
func (l *Lifecycle) sweepStaging(version string) {
	entries, err := os.ReadDir(l.paths.BinDir)
	if err != nil {
		return
	}
	prefix := stagingPrefix + version + "-"
	for _, e := range entries {
		suffix, ok := strings.CutPrefix(e.Name(), prefix)
		if !ok || !e.IsDir() || !isDigits(suffix) {
			continue
		}
		path := filepath.Join(l.paths.BinDir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			l.logger.Printf("install %s: remove leftover %s: %v", version, path, err)
			continue
		}
		l.logger.Printf("install %s: removed leftover %s", version, path)
	}
}

// isDigits matches the random suffix os.MkdirTemp appends, which keeps
// ".staging-1.0-" from matching the staging dirs of "1.0-rc1".
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ValidateVersion rejects tokens that are not usable as a single path element.
func ValidateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("version must not be empty")
	}
	if version == "." || version == ".." || strings.HasPrefix(version, ".") || strings.ContainsAny(version, `/\`) {
		return fmt.Errorf("invalid version %q", version)
	}
	return nil
}
