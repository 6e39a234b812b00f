package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// RootEnv overrides the per-user root directory.
	RootEnv = "BAP_ROOT"

	// LocalMarkerName is the per-directory version pin file.
	LocalMarkerName = ".localrc"
)

// RootPaths captures canonical locations beneath the bap root directory.
type RootPaths struct {
	Root         string
	ConfigFile   string
	SettingsFile string
	VersionsDir  string
	VersionsFile string
	BinDir       string
	LogsDir      string
	ReleaseCache string
}

// Resolve determines the root directory using the optional --root flag, then
// $BAP_ROOT, then ~/.bap.
func Resolve(rootFlag string) (RootPaths, error) {
	root := strings.TrimSpace(rootFlag)
	if root == "" {
		root = strings.TrimSpace(os.Getenv(RootEnv))
	}
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return RootPaths{}, fmt.Errorf("detect user home: %w", err)
		}
		root = filepath.Join(home, ".bap")
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return RootPaths{}, fmt.Errorf("resolve root: %w", err)
	}
	return New(abs), nil
}

// New lays out the standard hierarchy under root without touching disk.
func New(root string) RootPaths {
	versionsDir := filepath.Join(root, "versions")
	return RootPaths{
		Root:         root,
		ConfigFile:   filepath.Join(root, "config.json"),
		SettingsFile: filepath.Join(root, "settings.yaml"),
		VersionsDir:  versionsDir,
		VersionsFile: filepath.Join(versionsDir, "versions"),
		BinDir:       filepath.Join(root, "bin"),
		LogsDir:      filepath.Join(root, "logs"),
		ReleaseCache: filepath.Join(root, "release_cache.json"),
	}
}

// VersionDir returns the installed directory for a normalized version.
func (p RootPaths) VersionDir(version string) string {
	return filepath.Join(p.BinDir, version)
}

// LocalMarker returns the local override file for dir.
func LocalMarker(dir string) string {
	return filepath.Join(dir, LocalMarkerName)
}

// Ensure creates the root, versions and bin directories along with an empty
// versions file. It reports the paths it created so callers can tell the user
// about first-run initialization.
func (p RootPaths) Ensure() ([]string, error) {
	var created []string
	for _, dir := range []string{p.Root, p.VersionsDir, p.BinDir} {
		exists, err := DirExists(dir)
		if err != nil {
			return created, fmt.Errorf("stat %s: %w", dir, err)
		}
		if exists {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return created, fmt.Errorf("create directory %s: %w", dir, err)
		}
		created = append(created, dir)
	}

	exists, err := FileExists(p.VersionsFile)
	if err != nil {
		return created, fmt.Errorf("stat %s: %w", p.VersionsFile, err)
	}
	if !exists {
		f, err := os.OpenFile(p.VersionsFile, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err != nil && !os.IsExist(err) {
			return created, fmt.Errorf("create versions file: %w", err)
		}
		if err == nil {
			if err := f.Close(); err != nil {
				return created, fmt.Errorf("close versions file: %w", err)
			}
			created = append(created, p.VersionsFile)
		}
	}
	return created, nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
