// Package tui implements the interactive assignment browser: a
// participant list over a computed record, with a per-item detail view.
// The browser is read only; it presents a finished record and never
// mutates it.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/atelier-edu/reparto/internal/activity"
	"github.com/atelier-edu/reparto/internal/assign"
	"github.com/atelier-edu/reparto/internal/participant"
)

// Run opens the browser over a computed record and blocks until the
// user quits.
func Run(record *assign.Record, items []activity.WorkItem, profiles []participant.Profile) error {
	p := tea.NewProgram(NewModel(record, items, profiles), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
