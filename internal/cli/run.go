package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"bap/internal/install"
	"bap/internal/paths"
	"bap/internal/registry"
)

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [version] [-- agent-args...]",
		Short: "Run the Buildkite agent",
		Long: "Run the Buildkite agent. Without a version the local .localrc pin is used, then\n" +
			"the global default, then an interactive pick. Arguments after -- replace the\n" +
			"default agent arguments (start).",
		Args:              runArgs,
		RunE:              runRun,
		ValidArgsFunction: completeInstalled,
	}
}

func runArgs(cmd *cobra.Command, args []string) error {
	if n := len(splitAgentArgs(cmd, args)); n > 1 {
		return fmt.Errorf("accepts at most 1 version, received %d", n)
	}
	return nil
}

// splitAgentArgs returns the positional args before a -- separator.
func splitAgentArgs(cmd *cobra.Command, args []string) []string {
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		return args[:dash]
	}
	return args
}

func runRun(cmd *cobra.Command, args []string) error {
	sess, err := activeSession()
	if err != nil {
		return err
	}

	positional := splitAgentArgs(cmd, args)
	agentArgs := sess.settings.Agent.RunArgs
	if dash := cmd.ArgsLenAtDash(); dash >= 0 && dash < len(args) {
		agentArgs = args[dash:]
	}

	var version string
	if len(positional) == 1 {
		if version, err = versionArg(positional[0]); err != nil {
			return err
		}
	} else {
		if version, err = selectRunVersion(cmd, sess); err != nil {
			return err
		}
	}

	if err := ensureInstalled(cmd, sess, version); err != nil {
		return err
	}

	agent := sess.lifecycle.AgentPath(version)
	cmd.Printf("Running Buildkite agent version %s...\n", version)
	sess.logger.Printf("run: %s %v", agent, agentArgs)

	err = agentRunner.Run(cmd.Context(), agent, agentArgs, install.RunOptions{
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		sess.logger.Printf("run: %s: %v", version, err)
		return err
	}
	if cmd.Context().Err() != nil {
		cmd.Println()
		cmd.Println("Buildkite agent stopped.")
	}
	return nil
}

// selectRunVersion resolves the version to run when none was given: the
// local pin, then the global default, then an interactive pick among
// installed versions (or a remote pick and install when none exist).
func selectRunVersion(cmd *cobra.Command, sess *session) (string, error) {
	resolved, err := sess.resolver().Resolve()
	if err != nil {
		return "", err
	}
	if resolved.Found() {
		sess.logger.Printf("run: resolved %s from %s", resolved.Version, resolved.Source)
		return versionArg(resolved.Version)
	}

	installed, err := sess.lifecycle.Installed()
	if err != nil {
		return "", err
	}
	if len(installed) == 0 {
		cmd.Println("No Buildkite agent versions installed.")
		ok, err := confirm(cmd, "Do you want to install a version?", true)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", errors.New("cannot run Buildkite agent: no version installed or selected")
		}
		version, err := pickRemoteVersion(cmd, sess)
		if err != nil {
			return "", err
		}
		if err := installOne(cmd, sess, version); err != nil {
			return "", err
		}
		return version, nil
	}

	idx, err := choose(cmd, "Select a Buildkite agent version to run", stringOptions(installed), sess.settings.UI.PageSize)
	if err != nil {
		if errors.Is(err, errNotInteractive) {
			return "", fmt.Errorf("no version selected: pass one, or pin one with `bap use` or `bap default`")
		}
		return "", err
	}
	return installed[idx], nil
}

// ensureInstalled offers to install version when its agent binary is
// missing.
func ensureInstalled(cmd *cobra.Command, sess *session, version string) error {
	ok, err := paths.FileExists(sess.lifecycle.AgentPath(version))
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	cmd.Printf("Buildkite agent version %s is not installed.\n", version)
	proceed, err := confirm(cmd, fmt.Sprintf("Do you want to install version %s?", version), true)
	if err != nil {
		return err
	}
	if !proceed {
		return fmt.Errorf("cannot run Buildkite agent: %w", &registry.NotInstalledError{Version: version})
	}
	return installOne(cmd, sess, version)
}
