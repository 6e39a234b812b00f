package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings tunes where bap downloads releases from and how it talks to the
// user. It lives in ROOT/settings.yaml and every field is optional.
type Settings struct {
	Release ReleaseSettings `yaml:"release"`
	Agent   AgentSettings   `yaml:"agent"`
	UI      UISettings      `yaml:"ui"`
}

// ReleaseSettings locates release artifacts and metadata.
type ReleaseSettings struct {
	DownloadBaseURL string        `yaml:"download_base_url"`
	APIBaseURL      string        `yaml:"api_base_url"`
	Repository      string        `yaml:"repository"`
	Timeout         time.Duration `yaml:"timeout"`
	CacheTTL        time.Duration `yaml:"cache_ttl"`
}

// AgentSettings names files inside an installed version directory.
type AgentSettings struct {
	Binary     string   `yaml:"binary"`
	ConfigFile string   `yaml:"config_file"`
	RunArgs    []string `yaml:"run_args"`
}

// UISettings controls interactive output.
type UISettings struct {
	PageSize int `yaml:"page_size"`
}

// Default returns the baseline settings.
func Default() Settings {
	return Settings{
		Release: ReleaseSettings{
			DownloadBaseURL: "https://github.com/buildkite/agent/releases/download",
			APIBaseURL:      "https://api.github.com",
			Repository:      "buildkite/agent",
			Timeout:         10 * time.Minute,
			CacheTTL:        time.Hour,
		},
		Agent: AgentSettings{
			Binary:     "buildkite-agent",
			ConfigFile: "buildkite-agent.cfg",
			RunArgs:    []string{"start"},
		},
		UI: UISettings{
			PageSize: 10,
		},
	}
}

// Load reads the YAML settings from disk if present, layering them over the
// defaults. A missing file yields the defaults.
func Load(path string) (Settings, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	s := Default()
	if err := yaml.Unmarshal(contents, &s); err != nil {
		return Settings{}, fmt.Errorf("unmarshal settings: %w", err)
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ApplyDefaults fills zero values left by a partial settings file.
func (s *Settings) ApplyDefaults() {
	def := Default()
	s.Release.DownloadBaseURL = strings.TrimRight(strings.TrimSpace(s.Release.DownloadBaseURL), "/")
	if s.Release.DownloadBaseURL == "" {
		s.Release.DownloadBaseURL = def.Release.DownloadBaseURL
	}
	s.Release.APIBaseURL = strings.TrimRight(strings.TrimSpace(s.Release.APIBaseURL), "/")
	if s.Release.APIBaseURL == "" {
		s.Release.APIBaseURL = def.Release.APIBaseURL
	}
	if strings.TrimSpace(s.Release.Repository) == "" {
		s.Release.Repository = def.Release.Repository
	}
	if s.Release.Timeout <= 0 {
		s.Release.Timeout = def.Release.Timeout
	}
	if s.Release.CacheTTL < 0 {
		s.Release.CacheTTL = 0
	}
	if strings.TrimSpace(s.Agent.Binary) == "" {
		s.Agent.Binary = def.Agent.Binary
	}
	if strings.TrimSpace(s.Agent.ConfigFile) == "" {
		s.Agent.ConfigFile = def.Agent.ConfigFile
	}
	if s.Agent.RunArgs == nil {
		s.Agent.RunArgs = def.Agent.RunArgs
	}
	if s.UI.PageSize <= 0 {
		s.UI.PageSize = def.UI.PageSize
	}
}

// Validate rejects settings that would make bap write outside a version
// directory.
func (s Settings) Validate() error {
	for field, name := range map[string]string{
		"agent.binary":      s.Agent.Binary,
		"agent.config_file": s.Agent.ConfigFile,
	} {
		if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
			return fmt.Errorf("%s must be a plain file name, got %q", field, name)
		}
	}
	if strings.Count(s.Release.Repository, "/") != 1 {
		return fmt.Errorf("release.repository must look like owner/name, got %q", s.Release.Repository)
	}
	return nil
}
