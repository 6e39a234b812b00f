package tui

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/mattn/go-isatty"
)

// OutputMode describes how command output should be rendered.
type OutputMode int

const (
	// ModeTUI uses bubbletea for interactive rendering.
	ModeTUI OutputMode = iota
	// ModePlain writes plain lines, suitable for pipes and logs.
	ModePlain
	// ModeJSON writes structured JSON output.
	ModeJSON
)

// DetectMode determines the appropriate output mode for the given writer.
func DetectMode(out io.Writer, jsonOutput bool) OutputMode {
	if jsonOutput {
		return ModeJSON
	}
	if !isTerminal(out) {
		return ModePlain
	}
	if runtime.GOOS != "windows" {
		term := os.Getenv("TERM")
		if term == "" || strings.EqualFold(term, "dumb") {
			return ModePlain
		}
	}
	return ModeTUI
}

// CanPrompt reports whether interactive prompts can be shown: both ends must
// be terminals.
func CanPrompt(in io.Reader, out io.Writer) bool {
	return isTerminal(in) && DetectMode(out, false) == ModeTUI
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
