package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "j", "down":
			if m.cursor < len(m.modes)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case " ":
			m.selected[m.cursor] = !m.selected[m.cursor]
		case "a":
			// Toggle all: select everything unless everything is selected
			all := true
			for i := range m.modes {
				if !m.selected[i] {
					all = false
					break
				}
			}
			for i := range m.modes {
				m.selected[i] = !all
			}
		case "enter":
			if m.anySelected() {
				m.confirmed = true
				return m, tea.Quit
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m Model) anySelected() bool {
	for _, on := range m.selected {
		if on {
			return true
		}
	}
	return false
}
