package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bap/internal/install"
	"bap/internal/tui"
)

var refreshReleases bool

type remoteEntry struct {
	Version    string `json:"version"`
	Tag        string `json:"tag"`
	Prerelease bool   `json:"prerelease,omitempty"`
	Installed  bool   `json:"installed"`
}

func newListRemoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-remote",
		Short: "List available remote Buildkite agent versions",
		Long: "List published Buildkite agent releases. In a terminal the list is paged and a\n" +
			"selected version can be installed or pinned.",
		Args: cobra.NoArgs,
		RunE: runListRemote,
	}
	cmd.Flags().BoolVar(&refreshReleases, "refresh", false, "Ignore the cached release list")
	return cmd
}

func runListRemote(cmd *cobra.Command, _ []string) error {
	sess, err := activeSession()
	if err != nil {
		return err
	}

	entries, err := remoteEntries(cmd, sess)
	if err != nil {
		return err
	}

	if outputJSON {
		return writeJSON(cmd, entries)
	}
	if !interactive(cmd) {
		writeRemoteTable(cmd, entries)
		return nil
	}

	idx, err := choose(cmd, "Select a remote Buildkite agent version", remoteOptions(entries), sess.settings.UI.PageSize)
	if errors.Is(err, tui.ErrCanceled) {
		cmd.Println("No action taken.")
		return nil
	}
	if err != nil {
		return err
	}
	return handleSelectedRelease(cmd, sess, entries[idx])
}

func remoteEntries(cmd *cobra.Command, sess *session) ([]remoteEntry, error) {
	var status *tui.StatusWriter
	if !outputJSON && tui.DetectMode(cmd.ErrOrStderr(), false) == tui.ModeTUI {
		status = tui.NewStatusWriter(cmd.ErrOrStderr(), "Fetching Buildkite agent releases")
	}
	releases, err := sess.lister().List(cmd.Context(), refreshReleases)
	if status != nil {
		status.Stop()
	}
	if err != nil {
		return nil, err
	}
	if len(releases) == 0 {
		return nil, errors.New("no remote Buildkite agent versions found")
	}

	installed, err := sess.lifecycle.Installed()
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(installed))
	for _, v := range installed {
		have[v] = true
	}

	entries := make([]remoteEntry, len(releases))
	for i, r := range releases {
		entries[i] = remoteEntry{
			Version:    r.Version,
			Tag:        r.Tag,
			Prerelease: r.Prerelease,
			Installed:  have[r.Version],
		}
	}
	return entries, nil
}

func remoteOptions(entries []remoteEntry) []tui.Option {
	opts := make([]tui.Option, len(entries))
	for i, e := range entries {
		opts[i] = tui.Option{Label: e.Tag, Note: remoteNote(e)}
	}
	return opts
}

func remoteNote(e remoteEntry) string {
	switch {
	case e.Installed && e.Prerelease:
		return "(installed, prerelease)"
	case e.Installed:
		return "(installed)"
	case e.Prerelease:
		return "(prerelease)"
	}
	return ""
}

func writeRemoteTable(cmd *cobra.Command, entries []remoteEntry) {
	for _, e := range entries {
		if note := remoteNote(e); note != "" {
			cmd.Printf("%s %s\n", e.Tag, note)
		} else {
			cmd.Println(e.Tag)
		}
	}
}

func handleSelectedRelease(cmd *cobra.Command, sess *session, e remoteEntry) error {
	cmd.Printf("You selected: %s\n", e.Tag)

	if e.Installed {
		cmd.Println("This version is already installed.")
		actions := []string{"Set as local version (this directory)", "Set as global default", "Do nothing"}
		idx, err := choose(cmd, "What would you like to do?", stringOptions(actions), len(actions))
		if errors.Is(err, tui.ErrCanceled) || (err == nil && idx == 2) {
			cmd.Println("No action taken.")
			return nil
		}
		if err != nil {
			return err
		}
		if idx == 0 {
			return runUse(cmd, []string{e.Version})
		}
		return runDefault(cmd, []string{e.Version})
	}

	ok, err := confirm(cmd, fmt.Sprintf("Version %s is not installed. Would you like to install it?", e.Version), true)
	if err != nil {
		return err
	}
	if !ok {
		cmd.Println("No action taken.")
		return nil
	}
	if err := installOne(cmd, sess, e.Version); err != nil {
		return err
	}
	pin, err := confirm(cmd, "Would you like to set this as the local version for this directory?", true)
	if err != nil || !pin {
		return err
	}
	return runUse(cmd, []string{e.Version})
}

// pickRemoteVersion lets the user choose a release to install.
func pickRemoteVersion(cmd *cobra.Command, sess *session) (string, error) {
	entries, err := remoteEntries(cmd, sess)
	if err != nil {
		return "", err
	}
	idx, err := choose(cmd, "Select a remote Buildkite agent version", remoteOptions(entries), sess.settings.UI.PageSize)
	if err != nil {
		return "", err
	}
	return entries[idx].Version, nil
}

var _ releaseLister = (*install.ReleaseLister)(nil)
