package tui

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"pythia-cli/internal/model"
	"pythia-cli/internal/query"
	"pythia-cli/internal/selection"
	"pythia-cli/internal/store"
)

const transitLayout = "2006-01-02 15:04"

type appModel struct {
	store *store.Store
	sel   *selection.State
	orch  *query.Orchestrator

	width          int
	height         int
	seenWindowSize bool

	events list.Model
	tzList list.Model

	focus focusArea
	modal modalKind

	question  textinput.Model
	manual    textarea.Model
	useManual bool

	transitOn    bool
	transitAt    time.Time
	transitInput textinput.Model
	transitErr   string

	form      *eventForm
	editingID int // 0 while adding

	deleteTargetID    int
	deleteTargetLabel string
	confirmFocus      confirmModalFocus

	tzTargetID int

	spin   spinner.Model
	answer string

	loading  bool
	asking   bool
	saving   bool
	deleting bool

	// One message channel per operation category: a save error must never
	// clear an earlier ask answer, and vice versa.
	loadFlash   flash
	saveFlash   flash
	updateFlash flash
	deleteFlash flash
	askFlash    flash

	redirect bool
}

func newAppModel(st *store.Store, sel *selection.State, orch *query.Orchestrator) appModel {
	question := textinput.New()
	question.Placeholder = "e.g., What does my Mars in Scorpio reveal?"
	question.Prompt = "? "
	question.CharLimit = 500

	manual := textarea.New()
	manual.Placeholder = "Paste your complete birth chart data here..."
	manual.SetHeight(6)

	transit := textinput.New()
	transit.Prompt = ""
	transit.Placeholder = transitLayout
	transit.CharLimit = len(transitLayout)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := appModel{
		store:        st,
		sel:          sel,
		orch:         orch,
		question:     question,
		manual:       manual,
		transitInput: transit,
		spin:         sp,
		events:       newList(nil, newEventDelegate()),
		tzList:       newList(timezoneItems(), newTzDelegate()),
		focus:        focusEvents,
		loading:      true,
	}
	m.refreshEventItems()
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(fetchEventsCmd(m.orch, m.store), tickReload())
}

// refreshEventItems rebuilds the list rows from the store, preserving the
// cursor where possible.
func (m *appModel) refreshEventItems() {
	events := m.store.Events()
	items := make([]list.Item, 0, len(events))
	for _, ev := range events {
		items = append(items, eventItem{event: ev, sel: m.sel})
	}
	idx := m.events.Index()
	m.events.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.events.Select(idx)
	}
}

func (m *appModel) selectedEvent() (model.Event, bool) {
	it, ok := m.events.SelectedItem().(eventItem)
	if !ok {
		return model.Event{}, false
	}
	return it.event, true
}

func (m *appModel) resize() {
	listH := m.height / 3
	if listH > 10 {
		listH = 10
	}
	if listH < 3 {
		listH = 3
	}
	w := m.width - 2
	if w < 20 {
		w = 20
	}
	m.events.SetSize(w, listH)
	m.tzList.SetSize(modalBodyWidth(m.width)-4, len(timezoneItems()))
	m.question.Width = w - 4
	m.manual.SetWidth(w)
}

// mutating reports whether any save/update/delete is outstanding. Mutating
// controls stay disabled while one is in flight so two saves can never race.
func (m *appModel) mutating() bool {
	return m.saving || m.deleting
}

// startAsk validates, composes and launches one submission. Stale answer and
// error are always cleared first.
func (m *appModel) startAsk() tea.Cmd {
	if m.asking {
		return nil
	}
	m.answer = ""
	m.askFlash = flash{}

	var src query.Source
	if m.useManual {
		src = query.Manual{Text: m.manual.Value()}
	} else {
		src = query.Selected{Events: m.store.Events(), Selection: m.sel}
	}
	var transit *time.Time
	if m.transitOn {
		at := m.transitAt
		transit = &at
	}
	// UserID is filled by the orchestrator from the fresh session.
	req, err := query.Compose("", src, m.question.Value(), transit)
	if err != nil {
		m.askFlash = errFlash(err.Error())
		return nil
	}
	m.asking = true
	return tea.Batch(m.spin.Tick, askCmd(m.orch, req))
}

// beginEdit stages a draft from the stored event and opens the form.
func (m *appModel) beginEdit(ev model.Event) {
	form := newEventForm()
	in := formInputFromEvent(ev)
	form.fill(in)
	m.store.SetDraft(store.Draft{EventID: ev.ID, Form: in})
	m.form = form
	m.editingID = ev.ID
	m.modal = modalEventForm
}

// formInputFromEvent back-fills editable fields from the event's stored
// chart record. Fields the record does not carry stay blank for the user to
// re-enter.
func formInputFromEvent(ev model.Event) store.FormInput {
	in := store.FormInput{Label: ev.Label, AMPM: "AM"}
	var data map[string]any
	if err := json.Unmarshal(ev.Data, &data); err != nil {
		return in
	}
	num := func(key string) string {
		v, ok := data[key]
		if !ok {
			return ""
		}
		switch n := v.(type) {
		case float64:
			return strconv.Itoa(int(n))
		case string:
			return n
		}
		return ""
	}
	in.Year = num("year")
	in.Month = num("month")
	in.Day = num("day")
	if loc, ok := data["location"].(string); ok {
		in.Location = loc
	}
	if t, ok := data["time"].(string); ok {
		if hh, mm, ok := splitClock(t); ok {
			hour, ampm := to12Hour(hh)
			in.Hour = strconv.Itoa(hour)
			in.Minute = strconv.Itoa(mm)
			in.AMPM = ampm
		}
	}
	return in
}

func splitClock(t string) (int, int, bool) {
	parts := strings.SplitN(t, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	hh, err1 := strconv.Atoi(parts[0])
	mm, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, 0, false
	}
	return hh, mm, true
}

func to12Hour(hh int) (int, string) {
	switch {
	case hh == 0:
		return 12, "AM"
	case hh < 12:
		return hh, "AM"
	case hh == 12:
		return 12, "PM"
	default:
		return hh - 12, "PM"
	}
}

func (m *appModel) transitStatus() string {
	if !m.transitOn {
		return "off"
	}
	return m.transitAt.Format(transitLayout)
}
