package registry

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// GlobalConfig is the system-wide default version record.
type GlobalConfig struct {
	DefaultVersion *string `json:"default_version"`
}

// Default returns the configured default version, if any.
func (c GlobalConfig) Default() (string, bool) {
	if c.DefaultVersion == nil {
		return "", false
	}
	return *c.DefaultVersion, true
}

// GlobalConfigFile loads and saves GlobalConfig as pretty JSON.
type GlobalConfigFile struct {
	path string
}

// NewGlobalConfigFile returns a config file handle for path.
func NewGlobalConfigFile(path string) *GlobalConfigFile {
	return &GlobalConfigFile{path: path}
}

// Path returns the backing file.
func (f *GlobalConfigFile) Path() string { return f.path }

// Load reads the config. A missing file yields the zero value.
func (f *GlobalConfigFile) Load() (GlobalConfig, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return GlobalConfig{}, nil
		}
		return GlobalConfig{}, &IoError{Op: "read", Path: f.path, Err: err}
	}

	var cfg GlobalConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return GlobalConfig{}, &ConfigParseError{Path: f.path, Err: err}
	}
	return cfg, nil
}

// Save overwrites the config file with cfg.
func (f *GlobalConfigFile) Save(cfg GlobalConfig) error {
	buf, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return writeFileAtomic(f.path, buf, 0o644)
}

// SetDefault records id as the default version.
func (f *GlobalConfigFile) SetDefault(id string) error {
	cfg, err := f.Load()
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	cfg.DefaultVersion = &id
	return f.Save(cfg)
}

// ClearDefaultIf unsets the default when it equals id and reports whether it
// did. Any other value is left alone.
func (f *GlobalConfigFile) ClearDefaultIf(id string) (bool, error) {
	cfg, err := f.Load()
	if err != nil {
		return false, err
	}
	current, ok := cfg.Default()
	if !ok || current != strings.TrimSpace(id) {
		return false, nil
	}
	cfg.DefaultVersion = nil
	if err := f.Save(cfg); err != nil {
		return false, err
	}
	return true, nil
}
