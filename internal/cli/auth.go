package cli

import (
	"github.com/spf13/cobra"

	"bap/internal/paths"
	"bap/internal/registry"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth <version>",
		Short: "Set the agent registration token for a Buildkite agent version",
		Long: "Set the agent registration token in the version's buildkite-agent.cfg. In a\n" +
			"terminal the token is read with a masked prompt; otherwise one line is read\n" +
			"from stdin.",
		Args:              cobra.ExactArgs(1),
		RunE:              runAuth,
		ValidArgsFunction: completeInstalled,
	}
}

func runAuth(cmd *cobra.Command, args []string) error {
	sess, err := activeSession()
	if err != nil {
		return err
	}
	version, err := versionArg(args[0])
	if err != nil {
		return err
	}

	// Fail before prompting when there is nothing to configure.
	ok, err := paths.FileExists(sess.lifecycle.ConfigPath(version))
	if err != nil {
		return err
	}
	if !ok {
		return &registry.NotInstalledError{Version: version}
	}

	token, err := readSecret(cmd, "Enter the agent token")
	if err != nil {
		return err
	}
	if err := sess.lifecycle.SetToken(version, token); err != nil {
		return err
	}
	if outputJSON {
		return writeJSON(cmd, map[string]string{"version": version, "config": sess.lifecycle.ConfigPath(version)})
	}
	cmd.Printf("Agent token updated successfully for version %s\n", version)
	return nil
}
