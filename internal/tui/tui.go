// Package tui is the interactive Pythia screen: the saved-event checklist,
// the add/edit/delete flows, and the ask flow with its rendered answer.
package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"pythia-cli/internal/query"
	"pythia-cli/internal/selection"
	"pythia-cli/internal/store"
)

// ErrSignedOut is returned when the session disappeared mid-use. The caller
// routes the user to sign-in; no inline error is shown for this case.
var ErrSignedOut = errors.New("session expired or missing")

// Run starts the interactive screen and blocks until the user quits or the
// session dies.
func Run(st *store.Store, sel *selection.State, orch *query.Orchestrator) error {
	m := newAppModel(st, sel, orch)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(appModel); ok && fm.redirect {
		return ErrSignedOut
	}
	return nil
}
