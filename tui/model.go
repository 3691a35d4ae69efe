// Package tui provides the interactive improvement-mode picker.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hochfrequenz/auto-reviewer/internal/modes"
)

// Model is the mode picker model
type Model struct {
	modes    []modes.Mode
	selected map[int]bool
	cursor   int

	confirmed bool
	cancelled bool

	width  int
	height int
}

// NewModel creates a picker over the full mode catalog
func NewModel() Model {
	return Model{
		modes:    modes.Catalog,
		selected: make(map[int]bool),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Selection returns the chosen mode keys in catalog order, or nil when
// the picker was cancelled or nothing was confirmed.
func (m Model) Selection() []string {
	if !m.confirmed {
		return nil
	}
	var keys []string
	for i, mode := range m.modes {
		if m.selected[i] {
			keys = append(keys, mode.Key)
		}
	}
	return keys
}

// Run displays the picker and blocks until the user confirms or
// cancels. A cancelled picker returns an empty selection, not an error.
func Run() ([]string, error) {
	p := tea.NewProgram(NewModel())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(Model)
	if !ok {
		return nil, nil
	}
	return m.Selection(), nil
}
