package cli

import (
	"github.com/spf13/cobra"

	"bap/internal/registry"
	"bap/internal/tui"
)

type listEntry struct {
	Version string `json:"version"`
	Current bool   `json:"current"`
	Default bool   `json:"default"`
}

type listOutput struct {
	Root         string              `json:"root"`
	Versions     []listEntry         `json:"versions"`
	Resolved     registry.Resolution `json:"resolved"`
	Unregistered []string            `json:"unregistered,omitempty"`
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed Buildkite agent versions",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	sess, err := activeSession()
	if err != nil {
		return err
	}

	versions, err := sess.lifecycle.Installed()
	if err != nil {
		return err
	}
	resolved, err := sess.resolver().Resolve()
	if err != nil {
		return err
	}
	cfg, err := sess.global.Load()
	if err != nil {
		return err
	}
	def, _ := cfg.Default()
	unregistered, err := sess.lifecycle.Unregistered()
	if err != nil {
		sess.logger.Printf("list: scan for unregistered directories: %v", err)
	}

	out := listOutput{
		Root:         sess.paths.Root,
		Versions:     make([]listEntry, 0, len(versions)),
		Resolved:     resolved,
		Unregistered: unregistered,
	}
	for _, v := range versions {
		out.Versions = append(out.Versions, listEntry{
			Version: v,
			Current: resolved.Found() && resolved.Version == v,
			Default: def == v,
		})
	}

	if outputJSON {
		return writeJSON(cmd, out)
	}
	writeListTable(cmd, out, tui.DetectMode(cmd.OutOrStdout(), false) == tui.ModeTUI)
	return nil
}

func writeListTable(cmd *cobra.Command, out listOutput, styled bool) {
	if len(out.Versions) == 0 {
		cmd.Println("No Buildkite agent versions installed. Run `bap get <version>` to install one.")
	} else {
		cmd.Println("Installed Buildkite agent versions:")
		for _, e := range out.Versions {
			marker := " "
			if e.Current {
				marker = "*"
			}
			line := marker + " " + e.Version
			if e.Default {
				line += " (default)"
			}
			if styled && e.Current {
				line = tui.CurrentStyle.Render(line)
			}
			cmd.Println(line)
		}
	}

	if out.Resolved.Found() && !containsEntry(out.Versions, out.Resolved.Version) {
		cmd.Printf("\n%s version %s is selected but not installed. Run `bap get %s`.\n",
			sourceLabel(out.Resolved.Source), out.Resolved.Version, out.Resolved.Version)
	}
	if len(out.Unregistered) > 0 {
		cmd.Println()
		cmd.Println("Incomplete installs (not registered):")
		for _, v := range out.Unregistered {
			cmd.Printf("  %s\n", v)
		}
		cmd.Println("Reinstall with `bap get <version>` or remove with `bap uninstall <version>`.")
	}
}

func containsEntry(entries []listEntry, version string) bool {
	for _, e := range entries {
		if e.Version == version {
			return true
		}
	}
	return false
}

func sourceLabel(src registry.Source) string {
	switch src {
	case registry.SourceLocal:
		return "Local"
	case registry.SourceGlobal:
		return "Default"
	}
	return "No"
}
