package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))

	cursorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205"))

	descStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244"))

	helpStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240"))
)

// View renders the picker
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Select improvement modes to run"))
	b.WriteString("\n\n")

	for i, mode := range m.modes {
		check := "[ ]"
		if m.selected[i] {
			check = selectedStyle.Render("[x]")
		}

		line := fmt.Sprintf("%s %-20s %s", check, mode.Key, descStyle.Render(mode.Description))
		if i == m.cursor {
			line = cursorStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(" space: toggle │ a: toggle all │ enter: confirm │ q: cancel "))
	b.WriteString("\n")

	return b.String()
}
