package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.closed {
		return ""
	}

	var b strings.Builder

	title := "New attribute"
	if m.form.Edit {
		title = "Edit attribute"
	}
	b.WriteString(titleStyle.Render(title))
	if p := m.form.Project; p != nil && p.Name != "" {
		b.WriteString(" " + subtitleStyle.Render(p.Name))
	}
	b.WriteString("\n\n")

	b.WriteString(m.label("Name", m.focus == 0))
	b.WriteString("\n")
	b.WriteString(m.nameInput.View())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Values"))
	b.WriteString("\n")
	if len(m.pairInputs) == 0 {
		b.WriteString(subtitleStyle.Render("no values, ctrl+n to add one"))
		b.WriteString("\n")
	}
	for i, pair := range m.pairInputs {
		keyFocused := m.focus == 1+2*i
		valueFocused := m.focus == 2+2*i
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			m.label(fmt.Sprintf("%d.", i+1), keyFocused || valueFocused), " ",
			pair[0].View(), subtitleStyle.Render(" = "), pair[1].View(),
		)
		b.WriteString(row)
		b.WriteString("\n")
	}

	if msg := m.form.ErrorMessage(); msg != "" {
		b.WriteString("\n")
		b.WriteString(errorPopupStyle.Render(msg))
		b.WriteString("\n")
	}
	if m.pending > 0 {
		b.WriteString("\n")
		b.WriteString(pendingStyle.Render("saving..."))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	width := m.width - 4
	if width > 72 {
		width = 72
	}
	if width < 30 {
		width = 30
	}
	return modalStyle.Width(width).Render(b.String())
}

func (m Model) label(text string, focused bool) string {
	if focused {
		return focusedLabelStyle.Render(text)
	}
	return labelStyle.Render(text)
}
