package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	rootDir    string
	outputJSON bool
	assumeYes  bool
)

var version = "dev"

// SetVersion records the build version reported by `bap version`.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root cobra command. SIGINT and SIGTERM cancel the
// command context so a running agent is shut down cleanly.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root := newRootCmd()
	root.SetOut(os.Stdout)
	err := root.ExecuteContext(ctx)
	closeSession()
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "bap",
		Short:             "Buildkite Agent Partner: manage installed buildkite-agent versions",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: openSession,
	}

	cmd.PersistentFlags().StringVar(&rootDir, "root", "", "Path to the bap root directory (default $BAP_ROOT or ~/.bap)")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")
	cmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "Answer yes to confirmations")

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newListRemoteCmd())
	cmd.AddCommand(newUseCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newDefaultCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newAuthCmd())
	cmd.AddCommand(newUninstallCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the bap version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if outputJSON {
				return writeJSON(cmd, map[string]string{"version": version})
			}
			cmd.Printf("bap %s\n", version)
			return nil
		},
	}
}
