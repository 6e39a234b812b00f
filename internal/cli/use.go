package cli

import (
	"github.com/spf13/cobra"
)

type pinOutput struct {
	Version   string `json:"version"`
	Scope     string `json:"scope"`
	Path      string `json:"path"`
	Installed bool   `json:"installed"`
}

func newUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "use <version>",
		Short:             "Set the Buildkite agent version for the current directory",
		Args:              cobra.ExactArgs(1),
		RunE:              runUse,
		ValidArgsFunction: completeInstalled,
	}
}

func newDefaultCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "default <version>",
		Short:             "Set the default Buildkite agent version",
		Args:              cobra.ExactArgs(1),
		RunE:              runDefault,
		ValidArgsFunction: completeInstalled,
	}
}

func runUse(cmd *cobra.Command, args []string) error {
	sess, err := activeSession()
	if err != nil {
		return err
	}
	version, err := versionArg(args[0])
	if err != nil {
		return err
	}
	installed, err := sess.lifecycle.IsInstalled(version)
	if err != nil {
		return err
	}
	local := sess.local()
	if err := local.Set(version); err != nil {
		return err
	}
	sess.logger.Printf("use: pinned %s in %s", version, local.Path())
	return reportPin(cmd, pinOutput{Version: version, Scope: "local", Path: local.Path(), Installed: installed},
		"Local Buildkite agent version set to %s for this directory\n")
}

func runDefault(cmd *cobra.Command, args []string) error {
	sess, err := activeSession()
	if err != nil {
		return err
	}
	version, err := versionArg(args[0])
	if err != nil {
		return err
	}
	installed, err := sess.lifecycle.IsInstalled(version)
	if err != nil {
		return err
	}
	if err := sess.global.SetDefault(version); err != nil {
		return err
	}
	sess.logger.Printf("default: set %s in %s", version, sess.global.Path())
	return reportPin(cmd, pinOutput{Version: version, Scope: "global", Path: sess.global.Path(), Installed: installed},
		"Default Buildkite agent version set to %s\n")
}

// reportPin prints the outcome of a pin. Pinning a version that is not
// installed is allowed; the user is told how to install it.
func reportPin(cmd *cobra.Command, out pinOutput, format string) error {
	if outputJSON {
		return writeJSON(cmd, out)
	}
	cmd.Printf(format, out.Version)
	if !out.Installed {
		cmd.PrintErrf("warning: version %s is not installed; run `bap get %s`\n", out.Version, out.Version)
	}
	return nil
}
