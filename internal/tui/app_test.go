package tui

import (
	"context"
	"encoding/json"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"pythia-cli/internal/model"
	"pythia-cli/internal/query"
	"pythia-cli/internal/selection"
	"pythia-cli/internal/store"
)

type stubBackend struct {
	events []model.Event
}

func (s *stubBackend) ListEvents(ctx context.Context, sess model.Session, userID string) ([]model.Event, error) {
	return s.events, nil
}

func (s *stubBackend) CreateEvent(ctx context.Context, sess model.Session, fields model.ChartFields) (model.Event, error) {
	return model.Event{}, nil
}

func (s *stubBackend) UpdateEvent(ctx context.Context, sess model.Session, eventID int, fields model.ChartFields) (model.Event, error) {
	return model.Event{}, nil
}

func (s *stubBackend) DeleteEvent(ctx context.Context, sess model.Session, eventID int) error {
	return nil
}

type stubSessions struct{}

func (stubSessions) GetSession(ctx context.Context) (model.Session, error) {
	return model.Session{Token: "t", UserID: "u"}, nil
}

type stubAsker struct{}

func (stubAsker) Ask(ctx context.Context, sess model.Session, req model.QueryRequest) (string, error) {
	return "answer", nil
}

func newTestModel(t *testing.T, events []model.Event) appModel {
	t.Helper()
	st := store.New(&stubBackend{events: events}, nil)
	if err := st.Refresh(context.Background(), model.Session{Token: "t", UserID: "u"}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	orch := query.NewOrchestrator(stubSessions{}, stubAsker{})
	m := newAppModel(st, selection.New(), orch)
	m.loading = false
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func twoEvents() []model.Event {
	return []model.Event{
		{ID: 1, Label: "Birth", Data: json.RawMessage(`{"year":1990,"month":6,"day":15,"time":"14:30","location":"Oslo"}`)},
		{ID: 2, Label: "Move"},
	}
}

func TestSpaceTogglesCheckedOnCursorEvent(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, twoEvents())

	next, _ := m.Update(keyMsg(" "))
	m = next.(appModel)
	if !m.sel.IsChecked(1) {
		t.Fatalf("space did not check the cursor event")
	}

	next, _ = m.Update(keyMsg(" "))
	m = next.(appModel)
	if m.sel.IsChecked(1) {
		t.Fatalf("second space did not uncheck")
	}
}

func TestProgressedRequiresChecked(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, twoEvents())

	next, _ := m.Update(keyMsg("p"))
	m = next.(appModel)
	if m.sel.IsProgressed(1) {
		t.Fatalf("progressed set on an unchecked event")
	}

	next, _ = m.Update(keyMsg(" "))
	m = next.(appModel)
	next, _ = m.Update(keyMsg("p"))
	m = next.(appModel)
	if !m.sel.IsProgressed(1) {
		t.Fatalf("progressed not set on a checked event")
	}
}

func TestUncheckCascadesProgressed(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, twoEvents())
	for _, k := range []string{" ", "p", " "} {
		next, _ := m.Update(keyMsg(k))
		m = next.(appModel)
	}
	if m.sel.IsChecked(1) || m.sel.IsProgressed(1) {
		t.Fatalf("uncheck must clear progressed with it")
	}
}

func TestDeleteConfirmDefaultsToCancel(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, twoEvents())

	next, _ := m.Update(keyMsg("d"))
	m = next.(appModel)
	if m.modal != modalConfirmDelete {
		t.Fatalf("d did not open the confirm modal")
	}
	if m.confirmFocus != confirmFocusCancel {
		t.Fatalf("confirm modal must default to Cancel")
	}

	// Enter on the default does not delete.
	next, _ = m.Update(keyMsg("enter"))
	m = next.(appModel)
	if m.deleting {
		t.Fatalf("enter on Cancel started a delete")
	}
	if m.modal != modalNone {
		t.Fatalf("confirm modal did not close")
	}
}

func TestDeletedMsgCascadesSelection(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, twoEvents())
	m.sel.ToggleChecked(1)
	m.sel.ToggleProgressed(1)
	m.sel.SetTimezoneOverride(1, "Europe/London")
	m.deleting = true

	next, _ := m.Update(eventDeletedMsg{id: 1, out: query.Outcome{}})
	m = next.(appModel)
	if m.deleting {
		t.Fatalf("deleting flag not cleared")
	}
	if _, ok := m.sel.TimezoneOverride(1); ok || m.sel.IsChecked(1) || m.sel.IsProgressed(1) {
		t.Fatalf("delete must cascade through all selection state")
	}
	if m.deleteFlash.text != "Event deleted." || m.deleteFlash.isErr {
		t.Fatalf("flash = %+v", m.deleteFlash)
	}
}

func TestAskDoneRedirectQuits(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, twoEvents())
	m.asking = true

	next, cmd := m.Update(askDoneMsg{out: query.Outcome{Redirect: true}})
	m = next.(appModel)
	if !m.redirect {
		t.Fatalf("redirect flag not set")
	}
	if cmd == nil {
		t.Fatalf("expected a quit command on redirect")
	}
}

func TestAskErrorKeepsOwnChannel(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, twoEvents())
	m.asking = true
	m.saveFlash = okFlash("Event saved successfully!")

	next, _ := m.Update(askDoneMsg{out: query.Outcome{Err: &query.ValidationError{Reason: "boom"}}})
	m = next.(appModel)
	if m.askFlash.text != "boom" || !m.askFlash.isErr {
		t.Fatalf("ask flash = %+v", m.askFlash)
	}
	if m.saveFlash.text != "Event saved successfully!" {
		t.Fatalf("an ask error must not clobber the save channel")
	}
}

func TestStartAskWithNothingSelectedFailsInline(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, twoEvents())
	m.question.SetValue("What now?")

	cmd := m.startAsk()
	if cmd != nil {
		t.Fatalf("compose failure must not launch a request")
	}
	if m.asking {
		t.Fatalf("asking flag set despite validation failure")
	}
	if !m.askFlash.isErr || m.askFlash.text == "" {
		t.Fatalf("expected an inline validation message, got %+v", m.askFlash)
	}
}

func TestStartAskClearsStaleAnswer(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, twoEvents())
	m.sel.ToggleChecked(1)
	m.question.SetValue("What now?")
	m.answer = "old reading"

	cmd := m.startAsk()
	if cmd == nil {
		t.Fatalf("expected an ask command")
	}
	if m.answer != "" {
		t.Fatalf("stale answer must be cleared when a new ask starts")
	}
	if !m.asking {
		t.Fatalf("asking flag not set")
	}
}

func TestFormInputFromEventRoundTripsClock(t *testing.T) {
	t.Parallel()

	in := formInputFromEvent(twoEvents()[0])
	if in.Label != "Birth" || in.Year != "1990" || in.Month != "6" || in.Day != "15" {
		t.Fatalf("fields = %+v", in)
	}
	if in.Hour != "2" || in.Minute != "30" || in.AMPM != "PM" {
		t.Fatalf("clock = %s:%s %s; want 2:30 PM from 14:30", in.Hour, in.Minute, in.AMPM)
	}
	if in.Location != "Oslo" {
		t.Fatalf("location = %q", in.Location)
	}
}

func TestTo12HourEdges(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   int
		hour int
		ampm string
	}{
		{0, 12, "AM"},
		{1, 1, "AM"},
		{11, 11, "AM"},
		{12, 12, "PM"},
		{13, 1, "PM"},
		{23, 11, "PM"},
	}
	for _, tc := range cases {
		hour, ampm := to12Hour(tc.in)
		if hour != tc.hour || ampm != tc.ampm {
			t.Fatalf("to12Hour(%d) = %d %s; want %d %s", tc.in, hour, ampm, tc.hour, tc.ampm)
		}
	}
}

func TestManualToggleExtendsFocusOrder(t *testing.T) {
	t.Parallel()

	m := newTestModel(t, twoEvents())
	next, _ := m.Update(keyMsg("m"))
	m = next.(appModel)
	if !m.useManual || m.focus != focusManual {
		t.Fatalf("m must enable manual mode and move focus to the paste area")
	}

	next, _ = m.Update(keyMsg("esc"))
	m = next.(appModel)
	if m.focus != focusEvents {
		t.Fatalf("esc must return focus to the event list")
	}
}
