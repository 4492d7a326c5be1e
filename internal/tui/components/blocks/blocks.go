// Package blocks renders one routine day as a cursor-driven list.
package blocks

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/hekate/internal/models"
)

var (
	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Width(14)
)

// AdvanceMsg asks for the block's next status.
type AdvanceMsg struct {
	ID string
}

// MoveMsg asks to move the block one position (Delta -1 or +1).
type MoveMsg struct {
	ID    string
	Delta int
}

type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Advance  key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Advance: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "advance status"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J", "move down"),
		),
	}
}

type Model struct {
	viewport viewport.Model
	Day      *models.RoutineDay
	Keys     KeyMap
	cursor   int
}

func New(width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
		Keys:     DefaultKeyMap(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Selected returns the block under the cursor.
func (m Model) Selected() (models.RoutineBlock, bool) {
	if m.Day == nil || m.cursor < 0 || m.cursor >= len(m.Day.Blocks) {
		return models.RoutineBlock{}, false
	}
	return m.Day.Blocks[m.cursor], true
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.Keys.MoveUp):
		if b, ok := m.Selected(); ok {
			return m, func() tea.Msg { return MoveMsg{ID: b.ID, Delta: -1} }
		}
	case key.Matches(keyMsg, m.Keys.MoveDown):
		if b, ok := m.Selected(); ok {
			return m, func() tea.Msg { return MoveMsg{ID: b.ID, Delta: 1} }
		}
	case key.Matches(keyMsg, m.Keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.Render()
		}
	case key.Matches(keyMsg, m.Keys.Down):
		if m.Day != nil && m.cursor < len(m.Day.Blocks)-1 {
			m.cursor++
			m.Render()
		}
	case key.Matches(keyMsg, m.Keys.Advance):
		if b, ok := m.Selected(); ok {
			return m, func() tea.Msg { return AdvanceMsg{ID: b.ID} }
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.Day == nil {
		return "Cargando rutina..."
	}
	if len(m.Day.Blocks) == 0 {
		return "\n  Sin bloques para hoy."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

// SetDay replaces the shown day. The cursor follows the block it was on.
func (m *Model) SetDay(day models.RoutineDay) {
	selected, had := m.Selected()
	m.Day = &day
	if had {
		if i := day.Block(selected.ID); i >= 0 {
			m.cursor = i
		}
	}
	if m.cursor >= len(day.Blocks) {
		m.cursor = max(len(day.Blocks)-1, 0)
	}
	m.Render()
}

func (m *Model) Render() {
	if m.Day == nil {
		m.viewport.SetContent("")
		return
	}

	var b strings.Builder
	for i, block := range m.Day.Blocks {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("▸ ")
		}
		swatch := "  "
		if block.Color != "" {
			swatch = lipgloss.NewStyle().Foreground(lipgloss.Color(block.Color)).Render("● ")
		}
		title := titleStyle.Render(block.Title)
		if block.Status == models.StatusDone {
			title = doneStyle.Render(block.Title)
		}
		fmt.Fprintf(&b, "%s%s%s %s\n", cursor, swatch, statusStyle.Render(block.Status.Label()), title)
	}
	m.viewport.SetContent(b.String())
}
