package tui

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel asks a yes/no question.
type ConfirmModel struct {
	question string
	def      bool
	answer   bool
	answered bool
	canceled bool
}

// NewConfirmModel returns a prompt whose enter key answers def.
func NewConfirmModel(question string, def bool) ConfirmModel {
	return ConfirmModel{question: question, def: def}
}

func (m ConfirmModel) Init() tea.Cmd { return nil }

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch strings.ToLower(key.String()) {
	case "y":
		m.answer, m.answered = true, true
		return m, tea.Quit
	case "n":
		m.answer, m.answered = false, true
		return m, tea.Quit
	case "enter":
		m.answer, m.answered = m.def, true
		return m, tea.Quit
	case "ctrl+c", "esc":
		m.canceled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	hint := "[y/N]"
	if m.def {
		hint = "[Y/n]"
	}
	if m.answered {
		ans := "no"
		if m.answer {
			ans = "yes"
		}
		return m.question + " " + HintStyle.Render(ans) + "\n"
	}
	return m.question + " " + HintStyle.Render(hint) + " "
}

// Answer reports the answer and whether one was given.
func (m ConfirmModel) Answer() (bool, bool) { return m.answer, m.answered }

// RunConfirm asks question and returns the answer.
func RunConfirm(in io.Reader, out io.Writer, question string, def bool) (bool, error) {
	p := tea.NewProgram(NewConfirmModel(question, def), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	m := final.(ConfirmModel)
	if m.canceled {
		return false, ErrCanceled
	}
	return m.answer, nil
}

// PasswordModel reads a secret with masked echo.
type PasswordModel struct {
	input     textinput.Model
	prompt    string
	submitted bool
	canceled  bool
	err       string
}

// NewPasswordModel returns a masked single-line input.
func NewPasswordModel(prompt string) PasswordModel {
	ti := textinput.New()
	ti.Placeholder = "token"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 512
	ti.Focus()
	return PasswordModel{input: ti, prompt: prompt}
}

func (m PasswordModel) Init() tea.Cmd { return textinput.Blink }

func (m PasswordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			if strings.TrimSpace(m.input.Value()) == "" {
				m.err = "value must not be empty"
				return m, nil
			}
			m.submitted = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.canceled = true
			return m, tea.Quit
		}
	}
	m.err = ""
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m PasswordModel) View() string {
	if m.submitted || m.canceled {
		return ""
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.prompt))
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	b.WriteByte('\n')
	if m.err != "" {
		b.WriteString(StatusStyle("error").Render(m.err))
		b.WriteByte('\n')
	}
	return b.String()
}

// Value returns the entered secret with surrounding whitespace removed.
func (m PasswordModel) Value() string { return strings.TrimSpace(m.input.Value()) }

// RunPassword reads a secret from the terminal.
func RunPassword(in io.Reader, out io.Writer, prompt string) (string, error) {
	p := tea.NewProgram(NewPasswordModel(prompt), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return "", err
	}
	m := final.(PasswordModel)
	if m.canceled {
		return "", ErrCanceled
	}
	if m.Value() == "" {
		return "", errors.New("no value entered")
	}
	return m.Value(), nil
}
