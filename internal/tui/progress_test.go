package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func installColumns() []Column {
	return []Column{
		{Header: "VERSION", Width: 10},
		{Header: "STATUS", Width: 11},
		{Header: "DETAIL", Width: 20},
	}
}

func TestRowUpdateMsg(t *testing.T) {
	m := NewProgressModel("install", installColumns())
	m.AddRow("3.58.0", []string{"3.58.0", "pending"})
	m.AddRow("3.59.0", []string{"3.59.0", "pending"})

	updated, _ := m.Update(RowUpdateMsg{
		Key:    "3.58.0",
		Fields: map[string]string{"STATUS": "installed", "DETAIL": "/tmp/bin/3.58.0"},
	})
	m = updated.(ProgressModel)

	if m.rows[0].Fields[1] != "installed" {
		t.Errorf("expected STATUS=installed, got %q", m.rows[0].Fields[1])
	}
	if m.rows[0].Fields[2] != "/tmp/bin/3.58.0" {
		t.Errorf("expected DETAIL set, got %q", m.rows[0].Fields[2])
	}
	if m.rows[1].Fields[1] != "pending" {
		t.Errorf("expected second row untouched, got %q", m.rows[1].Fields[1])
	}
}

func TestRowUpdateMsg_UnknownKey(t *testing.T) {
	m := NewProgressModel("install", installColumns())
	m.AddRow("1.0.0", []string{"1.0.0", "pending"})

	updated, _ := m.Update(RowUpdateMsg{Key: "9.9.9", Fields: map[string]string{"STATUS": "error"}})
	m = updated.(ProgressModel)

	if m.rows[0].Fields[1] != "pending" {
		t.Errorf("expected STATUS unchanged, got %q", m.rows[0].Fields[1])
	}
}

func TestWorkDoneMsg(t *testing.T) {
	m := NewProgressModel("install", installColumns())
	updated, cmd := m.Update(WorkDoneMsg{})
	m = updated.(ProgressModel)

	if !m.Done() {
		t.Error("expected Done() after WorkDoneMsg")
	}
	if m.Canceled() {
		t.Error("work completion is not a cancel")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestErrorMsg(t *testing.T) {
	m := NewProgressModel("install", installColumns())
	updated, cmd := m.Update(ErrorMsg{Err: errors.New("boom")})
	m = updated.(ProgressModel)

	if !m.Done() || m.Err() == nil {
		t.Fatalf("expected done with error, got done=%v err=%v", m.Done(), m.Err())
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
	if !strings.Contains(m.View(), "boom") {
		t.Error("expected error in view")
	}
}

func TestCtrlCCancels(t *testing.T) {
	m := NewProgressModel("install", installColumns())
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(ProgressModel)

	if !m.Done() || !m.Canceled() {
		t.Error("expected ctrl+c to cancel")
	}
	if cmd == nil {
		t.Error("expected tea.Quit command")
	}
}

func TestSpinnerTickStopsAfterDone(t *testing.T) {
	m := NewProgressModel("install", installColumns())
	updated, _ := m.Update(WorkDoneMsg{})
	m = updated.(ProgressModel)

	_, cmd := m.Update(spinner.TickMsg{})
	if cmd != nil {
		t.Error("expected no further ticks after done")
	}
}

func TestViewAndCounts(t *testing.T) {
	m := NewProgressModel("Installing", installColumns())
	m.AddRow("1.0.0", []string{"1.0.0", "downloading"})
	m.AddRow("2.0.0", []string{"2.0.0", "installed", "ok"})
	m.AddRow("3.0.0", []string{"3.0.0", "error", "404 Not Found"})

	finished, total := m.progressCounts()
	if finished != 2 || total != 3 {
		t.Fatalf("progressCounts = %d/%d, want 2/3", finished, total)
	}

	view := m.View()
	for _, want := range []string{"Installing", "VERSION", "STATUS", "1.0.0", "installed", "404 Not Found", "Working 2/3"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}

	updated, _ := m.Update(WorkDoneMsg{})
	if strings.Contains(updated.(ProgressModel).View(), "Working") {
		t.Error("expected footer hidden when done")
	}
}

func TestNonEmptyOrDash(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", "-"},
		{"  ", "-"},
		{"3.58.0", "3.58.0"},
		{" 3.58.0 ", "3.58.0"},
	}
	for _, tt := range tests {
		if got := NonEmptyOrDash(tt.input); got != tt.want {
			t.Errorf("NonEmptyOrDash(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		input string
		max   int
		want  string
	}{
		{"short", 10, "short"},
		{"a longer string here", 10, "a longe..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		if got := TruncateWithEllipsis(tt.input, tt.max); got != tt.want {
			t.Errorf("TruncateWithEllipsis(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
		}
	}
}
