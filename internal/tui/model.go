// Package tui provides the Bubble Tea password picker.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/phonopass/pkg/pwgen"
)

// DefaultPageSize is the number of candidates shown at once.
const DefaultPageSize = 10

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	consonantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	vowelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#7FB8D8"))
	digitStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// Model implements the Bubble Tea picker UI.
type Model struct {
	gen      *pwgen.Generator
	digits   int
	pageSize int
	strength string

	keys keyMap
	help help.Model

	candidates []pwgen.Password
	cursor     int
	page       int
	err        error

	chosen   string
	picked   bool
	quitting bool
	width    int
}

// NewModel constructs a picker that draws pages of pageSize candidates
// from gen. strength is shown in the footer when non-empty.
func NewModel(gen *pwgen.Generator, digits, pageSize int, strength string) *Model {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	m := &Model{
		gen:      gen,
		digits:   digits,
		pageSize: pageSize,
		strength: strength,
		keys:     defaultKeyMap(),
		help:     help.New(),
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.candidates)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Refresh):
			m.refresh()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Pick):
			if len(m.candidates) == 0 {
				return m, nil
			}
			m.chosen = m.candidates[m.cursor].String()
			m.picked = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.picked || m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Pick a password (page %d)", m.page)))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}
	for i, p := range m.candidates {
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		b.WriteString(prefix)
		b.WriteString(renderPassword(p, i == m.cursor))
		b.WriteString("\n")
	}
	if len(m.candidates) > 0 {
		b.WriteString("\n")
		b.WriteString(footerStyle.Render(m.renderFooter()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Chosen returns the picked password, if any.
func (m *Model) Chosen() (string, bool) {
	return m.chosen, m.picked
}

func (m *Model) renderFooter() string {
	current := m.candidates[m.cursor]
	segments := []string{
		breakdown(current),
		fmt.Sprintf("%d chars", len(current.String())),
	}
	if m.strength != "" {
		segments = append(segments, m.strength)
	}
	return strings.Join(segments, "  ")
}

func (m *Model) refresh() {
	m.err = nil
	page := make([]pwgen.Password, 0, m.pageSize)
	for i := 0; i < m.pageSize; i++ {
		p, err := m.gen.Next(m.digits)
		if err != nil {
			m.err = err
			break
		}
		page = append(page, p)
	}
	m.candidates = page
	m.cursor = 0
	m.page++
}

// Run shows the picker on stderr and returns the chosen password. ok is
// false when the user quit without picking.
func Run(gen *pwgen.Generator, digits, pageSize int, strength string) (string, bool, error) {
	m := NewModel(gen, digits, pageSize, strength)
	if len(m.candidates) == 0 && m.err != nil {
		return "", false, m.err
	}
	p := tea.NewProgram(m, tea.WithOutput(os.Stderr))
	if _, err := p.Run(); err != nil {
		return "", false, fmt.Errorf("picker failed: %w", err)
	}
	chosen, ok := m.Chosen()
	return chosen, ok, nil
}
