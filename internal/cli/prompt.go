package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bap/internal/tui"
)

var errNotInteractive = errors.New("not running in a terminal")

func interactive(cmd *cobra.Command) bool {
	return tui.CanPrompt(cmd.InOrStdin(), cmd.OutOrStdout())
}

// confirm asks a yes/no question. --yes answers it; without a terminal the
// question cannot be asked and an error tells the user how to proceed.
func confirm(cmd *cobra.Command, question string, def bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	if !interactive(cmd) {
		return false, fmt.Errorf("%q needs an answer: %w (re-run with --yes)", question, errNotInteractive)
	}
	ok, err := tui.RunConfirm(cmd.InOrStdin(), cmd.OutOrStdout(), question, def)
	if errors.Is(err, tui.ErrCanceled) {
		return false, nil
	}
	return ok, err
}

// choose shows a paged list and returns the picked index.
func choose(cmd *cobra.Command, title string, options []tui.Option, pageSize int) (int, error) {
	if !interactive(cmd) {
		return -1, fmt.Errorf("%s: %w", title, errNotInteractive)
	}
	return tui.RunSelect(cmd.InOrStdin(), cmd.OutOrStdout(), title, options, pageSize)
}

// readSecret prompts with masked input on a terminal, otherwise it reads a
// single line from stdin so tokens can be piped in.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	if interactive(cmd) {
		return tui.RunPassword(cmd.InOrStdin(), cmd.OutOrStdout(), prompt)
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("read token from stdin: %w", err)
		}
		return "", fmt.Errorf("read token from stdin: empty input")
	}
	return line, nil
}

func stringOptions(values []string) []tui.Option {
	out := make([]tui.Option, len(values))
	for i, v := range values {
		out[i] = tui.Option{Label: v}
	}
	return out
}
