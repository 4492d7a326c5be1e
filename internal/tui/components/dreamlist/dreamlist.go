package dreamlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/hekate/internal/models"
)

// VisualizeMsg asks to record today's visualization of a dream.
type VisualizeMsg struct {
	ID string
}

type Item struct {
	Dream models.Dream
}

func (i Item) Title() string {
	if i.Dream.Visualized() {
		return "✓ " + i.Dream.Title
	}
	return i.Dream.Title
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%d visualizaciones hoy", i.Dream.TodayVisualizations)
	if i.Dream.CanVisualize {
		desc += " | 'v' para visualizar"
	}
	return desc
}

func (i Item) FilterValue() string { return i.Dream.Title }

type KeyMap struct {
	Visualize key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Visualize: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "visualize"),
		),
	}
}

type Model struct {
	list list.Model
	Keys KeyMap
}

func New(dreams []models.Dream, width, height int) Model {
	l := list.New(items(dreams), list.NewDefaultDelegate(), width, height)
	l.Title = "Sueños"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Visualize}
	}
	return Model{list: l, Keys: keys}
}

func items(dreams []models.Dream) []list.Item {
	out := make([]list.Item, len(dreams))
	for i, d := range dreams {
		out[i] = Item{Dream: d}
	}
	return out
}

func (m *Model) SetDreams(dreams []models.Dream) {
	m.list.SetItems(items(dreams))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		if key.Matches(keyMsg, m.Keys.Visualize) {
			if i, ok := m.list.SelectedItem().(Item); ok && !i.Dream.Visualized() {
				return m, func() tea.Msg { return VisualizeMsg{ID: i.Dream.ID} }
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  Aún no tienes sueños.\n  Crea uno con 'hekate dream create'."
	}
	return m.list.View()
}

// Filtering reports whether the user is typing a filter.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
