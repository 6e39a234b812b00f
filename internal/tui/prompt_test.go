package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestConfirmKeys(t *testing.T) {
	tests := []struct {
		name     string
		def      bool
		key      tea.KeyMsg
		want     bool
		answered bool
	}{
		{"yes", false, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}, true, true},
		{"upper yes", false, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Y")}, true, true},
		{"no", true, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")}, false, true},
		{"enter takes default yes", true, tea.KeyMsg{Type: tea.KeyEnter}, true, true},
		{"enter takes default no", false, tea.KeyMsg{Type: tea.KeyEnter}, false, true},
		{"other key ignored", true, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, _ := NewConfirmModel("Install?", tt.def).Update(tt.key)
			got, answered := updated.(ConfirmModel).Answer()
			if answered != tt.answered || got != tt.want {
				t.Fatalf("Answer() = %v, %v; want %v, %v", got, answered, tt.want, tt.answered)
			}
		})
	}
}

func TestConfirmViewShowsDefault(t *testing.T) {
	if !strings.Contains(NewConfirmModel("Install?", true).View(), "[Y/n]") {
		t.Error("expected [Y/n] hint")
	}
	if !strings.Contains(NewConfirmModel("Install?", false).View(), "[y/N]") {
		t.Error("expected [y/N] hint")
	}
}

func TestConfirmEscCancels(t *testing.T) {
	updated, cmd := NewConfirmModel("Install?", true).Update(tea.KeyMsg{Type: tea.KeyEsc})
	m := updated.(ConfirmModel)
	if !m.canceled || cmd == nil {
		t.Fatal("expected esc to cancel and quit")
	}
}

func typeRunes(m PasswordModel, s string) PasswordModel {
	for _, r := range s {
		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = updated.(PasswordModel)
	}
	return m
}

func TestPasswordMasksInput(t *testing.T) {
	m := typeRunes(NewPasswordModel("Agent token"), "s3cret")
	if m.Value() != "s3cret" {
		t.Fatalf("Value = %q", m.Value())
	}
	if strings.Contains(m.View(), "s3cret") {
		t.Fatal("secret must not be echoed")
	}
}

func TestPasswordRejectsEmptySubmit(t *testing.T) {
	updated, cmd := NewPasswordModel("Agent token").Update(tea.KeyMsg{Type: tea.KeyEnter})
	m := updated.(PasswordModel)
	if m.submitted || cmd != nil {
		t.Fatal("empty value must not submit")
	}
	if !strings.Contains(m.View(), "must not be empty") {
		t.Error("expected validation message")
	}
}

func TestPasswordSubmit(t *testing.T) {
	m := typeRunes(NewPasswordModel("Agent token"), " tok ")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(PasswordModel)
	if !m.submitted || cmd == nil {
		t.Fatal("expected submit and quit")
	}
	if m.Value() != "tok" {
		t.Fatalf("Value = %q, want trimmed", m.Value())
	}
}
