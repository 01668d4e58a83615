package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// RunApp initializes and runs a bubbletea application with the given model
func RunApp(initialModel tea.Model, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(initialModel, opts...)
	_, err := p.Run()
	return err
}
