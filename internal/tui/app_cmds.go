package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pythia-cli/internal/model"
	"pythia-cli/internal/query"
	"pythia-cli/internal/store"
)

// Commands run off the update loop; they only talk to the backend and report
// an Outcome. All state application happens back in Update.

func tickReload() tea.Cmd {
	return tea.Tick(30*time.Second, func(time.Time) tea.Msg { return reloadTickMsg{} })
}

func fetchEventsCmd(orch *query.Orchestrator, st *store.Store) tea.Cmd {
	return func() tea.Msg {
		out := orch.WithSession(context.Background(), func(sess model.Session) error {
			return st.Refresh(context.Background(), sess)
		})
		return eventsLoadedMsg{out: out}
	}
}

func saveEventCmd(orch *query.Orchestrator, st *store.Store, in store.FormInput) tea.Cmd {
	return func() tea.Msg {
		out := orch.WithSession(context.Background(), func(sess model.Session) error {
			_, err := st.Create(context.Background(), sess, in)
			return err
		})
		return eventSavedMsg{label: in.Label, out: out}
	}
}

func updateEventCmd(orch *query.Orchestrator, st *store.Store, eventID int, in store.FormInput) tea.Cmd {
	return func() tea.Msg {
		out := orch.WithSession(context.Background(), func(sess model.Session) error {
			_, err := st.Update(context.Background(), sess, eventID, in)
			return err
		})
		return eventUpdatedMsg{label: in.Label, out: out}
	}
}

func deleteEventCmd(orch *query.Orchestrator, st *store.Store, eventID int) tea.Cmd {
	return func() tea.Msg {
		out := orch.WithSession(context.Background(), func(sess model.Session) error {
			return st.Delete(context.Background(), sess, eventID)
		})
		return eventDeletedMsg{id: eventID, out: out}
	}
}

func askCmd(orch *query.Orchestrator, req model.QueryRequest) tea.Cmd {
	return func() tea.Msg {
		return askDoneMsg{out: orch.Ask(context.Background(), req)}
	}
}
