package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/hekate/internal/notify"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case LoginView, ResetView:
		content = m.viewForm()
	case TodayView:
		content = m.blocks.View()
	case DreamsView:
		content = m.dreamList.View()
	case ReadView:
		content = m.viewRead()
	}

	parts := []string{m.viewTabs(), content}
	if m.notice != "" {
		parts = append(parts, notify.Render(m.noticeLevel, m.notice))
	}
	if m.form == nil {
		parts = append(parts, m.help.View(m.keys))
	}
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) viewTabs() string {
	if m.form != nil {
		return activeTabStyle.Render(m.state.Title())
	}
	var out []string
	for _, t := range tabs {
		style := inactiveTabStyle
		if t == m.state {
			style = activeTabStyle
		}
		out = append(out, style.Render(t.Title()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

func (m Model) viewForm() string {
	hint := "ctrl+r: olvidé mi contraseña • ctrl+c: salir"
	if m.state == ResetView {
		hint = "esc: volver • ctrl+c: salir"
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.form.View(), mutedStyle.Render(hint))
}

func (m Model) viewRead() string {
	if m.read == nil {
		return "Cargando lectura..."
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.read.Title))
	if m.read.Author != "" {
		b.WriteString("\n" + mutedStyle.Render(m.read.Author))
	}
	b.WriteString("\n\n" + m.read.Content)
	width := max(m.width-8, 20)
	return readStyle.Width(width).Render(b.String())
}
