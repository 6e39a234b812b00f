package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bap/internal/install"
	"bap/internal/paths"
	"bap/internal/registry"
	"bap/internal/tui"
)

// maxParallelInstalls bounds concurrent downloads for `get a b c`.
const maxParallelInstalls = 3

type installOutcome struct {
	Version     string `json:"version"`
	Status      string `json:"status"`
	Dir         string `json:"dir,omitempty"`
	Reinstalled bool   `json:"reinstalled,omitempty"`
	Error       string `json:"error,omitempty"`

	err error
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <version>...",
		Aliases: []string{"install"},
		Short:   "Download and install Buildkite agent versions",
		Long: "Download and install one or more Buildkite agent versions. Installing a version\n" +
			"that is already present downloads it again and replaces it.",
		Args: cobra.MinimumNArgs(1),
		RunE: runGet,
	}
}

func runGet(cmd *cobra.Command, args []string) error {
	sess, err := activeSession()
	if err != nil {
		return err
	}
	if sess.platformErr != nil {
		return sess.platformErr
	}

	versions, err := uniqueVersions(args)
	if err != nil {
		return err
	}

	var outcomes []installOutcome
	switch tui.DetectMode(cmd.OutOrStdout(), outputJSON) {
	case tui.ModeJSON:
		outcomes = installAll(cmd.Context(), sess.lifecycle, versions, nil)
	case tui.ModeTUI:
		model := tui.NewProgressModel("Installing Buildkite agent", []tui.Column{
			{Header: "VERSION", Width: 12},
			{Header: "STATUS", Width: 11},
			{Header: "DETAIL", Width: 48},
		})
		for _, v := range versions {
			model.AddRow(v, []string{v, "pending"})
		}
		err := tui.RunWithWork(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), model, func(ctx context.Context, send func(tea.Msg)) error {
			outcomes = installAll(ctx, sess.lifecycle, versions, tui.NewTeaReporter(send))
			return nil
		})
		if err != nil {
			return err
		}
	default:
		outcomes = installAll(cmd.Context(), sess.lifecycle, versions, tui.NewLineReporter(cmd.OutOrStdout()))
	}

	if outputJSON {
		if err := writeJSON(cmd, outcomes); err != nil {
			return err
		}
	} else if len(versions) == 1 && outcomes[0].err == nil {
		v := outcomes[0].Version
		cmd.Printf("Run `bap use %s` or `bap default %s` to select it.\n", v, v)
	}
	return joinOutcomeErrors(outcomes)
}

// installAll installs versions with bounded parallelism. Failures are
// recorded per version and never stop the others.
func installAll(ctx context.Context, lc *install.Lifecycle, versions []string, reporter tui.Reporter) []installOutcome {
	if reporter == nil {
		reporter = tui.NewLineReporter(io.Discard)
	}
	outcomes := make([]installOutcome, len(versions))

	var g errgroup.Group
	g.SetLimit(maxParallelInstalls)
	for i, v := range versions {
		i, v := i, v
		g.Go(func() error {
			reporter.Update(v, "downloading", "")
			res, err := lc.Install(ctx, v)
			out := installOutcome{Version: v}
			if err != nil {
				out.Status = "error"
				out.Error = err.Error()
				out.err = fmt.Errorf("%s: %w", v, err)
				reporter.Update(v, "error", describeInstallError(err))
			} else {
				out.Status = "installed"
				out.Dir = res.Dir
				out.Reinstalled = res.Reinstalled
				detail := res.Dir
				if res.Reinstalled {
					detail = "reinstalled " + res.Dir
				}
				reporter.Update(v, "installed", detail)
			}
			outcomes[i] = out
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func describeInstallError(err error) string {
	var dlErr *registry.DownloadError
	if errors.As(err, &dlErr) && dlErr.Status != "" {
		return dlErr.Status
	}
	var archErr *registry.ArchiveError
	if errors.As(err, &archErr) {
		return "corrupt archive"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	return err.Error()
}

func joinOutcomeErrors(outcomes []installOutcome) error {
	var errs []error
	for _, o := range outcomes {
		if o.err != nil {
			errs = append(errs, o.err)
		}
	}
	return errors.Join(errs...)
}

func uniqueVersions(args []string) ([]string, error) {
	seen := make(map[string]struct{}, len(args))
	var out []string
	for _, a := range args {
		v, err := versionArg(a)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// installOne installs a single version for the run and list-remote flows.
func installOne(cmd *cobra.Command, sess *session, version string) error {
	if sess.platformErr != nil {
		return sess.platformErr
	}
	var status *tui.StatusWriter
	if tui.DetectMode(cmd.ErrOrStderr(), false) == tui.ModeTUI {
		status = tui.NewStatusWriter(cmd.ErrOrStderr(), "Installing Buildkite agent "+version)
	}
	res, err := sess.lifecycle.Install(cmd.Context(), version)
	if status != nil {
		status.Stop()
	}
	if err != nil {
		return err
	}
	cmd.Printf("Buildkite agent version %s installed to %s\n", res.Version, res.Dir)
	return nil
}

// completeInstalled offers registered versions for shell completion.
func completeInstalled(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	pp, err := paths.Resolve(rootDir)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	versions, err := registry.NewVersionStore(pp.VersionsFile).List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return versions, cobra.ShellCompDirectiveNoFileComp
}
