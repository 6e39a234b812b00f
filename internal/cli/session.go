package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"bap/internal/config"
	"bap/internal/install"
	"bap/internal/logx"
	"bap/internal/paths"
	"bap/internal/registry"
)

// releaseLister is the part of install.ReleaseLister the commands use.
type releaseLister interface {
	List(ctx context.Context, refresh bool) ([]install.Release, error)
}

// Collaborators that tests replace.
var (
	newFetcher = func(s config.Settings) install.Fetcher {
		return install.NewReleaseFetcher(s.Release.DownloadBaseURL, s.Release.Timeout)
	}
	newLister = func(pp paths.RootPaths, s config.Settings) releaseLister {
		l := install.NewReleaseLister(s.Release.APIBaseURL, s.Release.Repository, s.Release.Timeout)
		l.Cache = install.NewReleaseCache(pp.ReleaseCache, s.Release.CacheTTL)
		return l
	}
	agentRunner    install.Runner = install.CmdRunner{}
	detectPlatform                = install.DetectPlatform
)

// session is the per-invocation state every command works against.
type session struct {
	paths       paths.RootPaths
	settings    config.Settings
	logger      *log.Logger
	closer      io.Closer
	lifecycle   *install.Lifecycle
	global      *registry.GlobalConfigFile
	platformErr error
	cwd         string
}

var current *session

// openSession ensures the root hierarchy exists, loads settings and opens
// the session log. It runs before every command.
func openSession(cmd *cobra.Command, _ []string) error {
	closeSession()

	pp, err := paths.Resolve(rootDir)
	if err != nil {
		return err
	}
	created, err := pp.Ensure()
	if err != nil {
		return err
	}

	settings, err := config.Load(pp.SettingsFile)
	if err != nil {
		return err
	}

	logger, closer, err := logx.New(pp)
	if err != nil {
		return err
	}
	for _, p := range created {
		logger.Printf("initialized %s", p)
	}
	logger.Printf("command: %s", cmd.CommandPath())

	cwd, err := os.Getwd()
	if err != nil {
		closer.Close()
		return fmt.Errorf("determine working directory: %w", err)
	}

	platform, platformErr := detectPlatform()
	lc := install.New(pp, newFetcher(settings), platform, settings.Agent)
	lc.SetLogger(logger)

	current = &session{
		paths:       pp,
		settings:    settings,
		logger:      logger,
		closer:      closer,
		lifecycle:   lc,
		global:      registry.NewGlobalConfigFile(pp.ConfigFile),
		platformErr: platformErr,
		cwd:         cwd,
	}
	return nil
}

func closeSession() {
	if current == nil {
		return
	}
	if current.closer != nil {
		_ = current.closer.Close()
	}
	current = nil
}

func activeSession() (*session, error) {
	if current == nil {
		return nil, fmt.Errorf("bap root not initialized")
	}
	return current, nil
}

func (s *session) local() *registry.LocalOverride {
	return registry.NewLocalOverride(s.cwd)
}

func (s *session) resolver() *registry.Resolver {
	return registry.NewResolver(s.local(), s.global)
}

func (s *session) lister() releaseLister {
	return newLister(s.paths, s.settings)
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// versionArg normalizes a positional version argument.
func versionArg(arg string) (string, error) {
	v := registry.Normalize(arg)
	if err := install.ValidateVersion(v); err != nil {
		return "", err
	}
	return v, nil
}
