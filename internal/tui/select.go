package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultPageSize is how many options a Select shows at once.
const DefaultPageSize = 10

// Option is one selectable entry. Note is rendered faint after the label.
type Option struct {
	Label string
	Note  string
}

// SelectModel is a single-choice list paged with a bubbles paginator.
// Up/down move the cursor across pages, left/right jump a page.
type SelectModel struct {
	title    string
	options  []Option
	cursor   int
	pager    paginator.Model
	chosen   int
	canceled bool
}

// NewSelectModel builds a list over options with pageSize rows per page.
func NewSelectModel(title string, options []Option, pageSize int) SelectModel {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	p := paginator.New()
	p.Type = paginator.Arabic
	p.PerPage = pageSize
	p.SetTotalPages(len(options))
	return SelectModel{
		title:   title,
		options: options,
		pager:   p,
		chosen:  -1,
	}
}

// Init satisfies the tea.Model interface.
func (m SelectModel) Init() tea.Cmd { return nil }

// Update satisfies the tea.Model interface.
func (m SelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc", "q":
		m.canceled = true
		return m, tea.Quit
	case "enter":
		if len(m.options) > 0 {
			m.chosen = m.cursor
		}
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "left", "h", "pgup":
		if m.pager.Page > 0 {
			m.cursor = (m.pager.Page - 1) * m.pager.PerPage
		}
	case "right", "l", "pgdown":
		if !m.pager.OnLastPage() {
			m.cursor = (m.pager.Page + 1) * m.pager.PerPage
		}
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		if len(m.options) > 0 {
			m.cursor = len(m.options) - 1
		}
	}
	m.pager.Page = m.cursor / m.pager.PerPage
	return m, nil
}

// View satisfies the tea.Model interface.
func (m SelectModel) View() string {
	if m.chosen >= 0 || m.canceled {
		return ""
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n\n")

	start, end := m.pager.GetSliceBounds(len(m.options))
	for i := start; i < end; i++ {
		opt := m.options[i]
		line := opt.Label
		if opt.Note != "" {
			line += " " + HintStyle.Render(opt.Note)
		}
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteByte('\n')
	}
	if m.pager.TotalPages > 1 {
		fmt.Fprintf(&b, "\n  page %s\n", m.pager.View())
	}
	b.WriteString(HintStyle.Render("\n↑/↓ move • ←/→ page • enter select • esc cancel"))
	b.WriteByte('\n')
	return b.String()
}

// Chosen returns the selected index, or -1 when nothing was picked.
func (m SelectModel) Chosen() int { return m.chosen }

// RunSelect shows options and returns the chosen index. It returns
// ErrCanceled if the user aborts.
func RunSelect(in io.Reader, out io.Writer, title string, options []Option, pageSize int) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("nothing to select")
	}
	p := tea.NewProgram(NewSelectModel(title, options, pageSize), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return -1, err
	}
	m := final.(SelectModel)
	if m.canceled || m.chosen < 0 {
		return -1, ErrCanceled
	}
	return m.chosen, nil
}
