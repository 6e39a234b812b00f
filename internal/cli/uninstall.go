package cli

import (
	"github.com/spf13/cobra"

	"bap/internal/install"
)

type uninstallOutput struct {
	install.UninstallResult
	LocalPinRemains bool `json:"local_pin_remains"`
}

func newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "uninstall <version>",
		Short:             "Uninstall a specific Buildkite agent version",
		Args:              cobra.ExactArgs(1),
		RunE:              runUninstall,
		ValidArgsFunction: completeInstalled,
	}
}

func runUninstall(cmd *cobra.Command, args []string) error {
	sess, err := activeSession()
	if err != nil {
		return err
	}
	version, err := versionArg(args[0])
	if err != nil {
		return err
	}

	res, err := sess.lifecycle.Uninstall(version)
	if err != nil {
		return err
	}

	// Pins in .localrc files are left alone; point out the one here.
	pinned, ok, err := sess.local().Get()
	if err != nil {
		sess.logger.Printf("uninstall: read local pin: %v", err)
	}
	out := uninstallOutput{UninstallResult: res, LocalPinRemains: ok && pinned == version}

	if outputJSON {
		return writeJSON(cmd, out)
	}
	cmd.Printf("Buildkite agent version %s has been uninstalled.\n", version)
	if res.ClearedDefault {
		cmd.Println("The global default pointed at this version and has been cleared.")
	}
	if out.LocalPinRemains {
		cmd.PrintErrf("warning: %s in this directory still pins %s\n", sess.local().Path(), version)
	}
	return nil
}
