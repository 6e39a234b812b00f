package tui

import (
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Reporter receives per-row status changes from background work.
type Reporter interface {
	Update(key, status, detail string)
}

// TeaReporter forwards status changes to a running ProgressModel.
type TeaReporter struct {
	send func(tea.Msg)
}

// NewTeaReporter wraps a tea.Program send function.
func NewTeaReporter(send func(tea.Msg)) *TeaReporter {
	return &TeaReporter{send: send}
}

// Update implements Reporter.
func (r *TeaReporter) Update(key, status, detail string) {
	r.send(RowUpdateMsg{
		Key:    key,
		Fields: map[string]string{"STATUS": status, "DETAIL": NonEmptyOrDash(detail)},
	})
}

// LineReporter prints one line per terminal status change. It is used when
// output is not a terminal.
type LineReporter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineReporter writes to w.
func NewLineReporter(w io.Writer) *LineReporter {
	return &LineReporter{w: w}
}

// Update implements Reporter. In-flight statuses are not printed.
func (r *LineReporter) Update(key, status, detail string) {
	switch status {
	case "pending", "downloading", "installing":
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if detail == "" {
		fmt.Fprintf(r.w, "%s: %s\n", key, status)
		return
	}
	fmt.Fprintf(r.w, "%s: %s (%s)\n", key, status, detail)
}
