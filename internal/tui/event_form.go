package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pythia-cli/internal/store"
)

type formField int

const (
	fieldLabel formField = iota
	fieldLocation
	fieldYear
	fieldMonth
	fieldDay
	fieldTimeUnknown
	fieldHour
	fieldMinute
	fieldAMPM
	fieldCount
)

// eventForm is the add/edit modal: text inputs for the birth data plus the
// unknown-time checkbox and the AM/PM toggle. Validation happens in the
// store on submit; the form only collects raw strings.
type eventForm struct {
	inputs      map[formField]*textinput.Model
	timeUnknown bool
	ampmPM      bool
	focus       formField
	errText     string
}

func newEventForm() *eventForm {
	mk := func(placeholder string, limit int) *textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = limit
		in.Prompt = ""
		return &in
	}
	f := &eventForm{
		inputs: map[formField]*textinput.Model{
			fieldLabel:    mk("Label (e.g., John Smith)", 80),
			fieldLocation: mk("Location (e.g., Paris, France)", 120),
			fieldYear:     mk("Year", 4),
			fieldMonth:    mk("Month", 2),
			fieldDay:      mk("Day", 2),
			fieldHour:     mk("Hour (1-12)", 2),
			fieldMinute:   mk("Minute (0-59)", 2),
		},
	}
	f.setFocus(fieldLabel)
	return f
}

// fill seeds the form from staged draft fields (edit flow).
func (f *eventForm) fill(in store.FormInput) {
	f.inputs[fieldLabel].SetValue(in.Label)
	f.inputs[fieldLocation].SetValue(in.Location)
	f.inputs[fieldYear].SetValue(in.Year)
	f.inputs[fieldMonth].SetValue(in.Month)
	f.inputs[fieldDay].SetValue(in.Day)
	f.inputs[fieldHour].SetValue(in.Hour)
	f.inputs[fieldMinute].SetValue(in.Minute)
	f.timeUnknown = in.TimeUnknown
	f.ampmPM = strings.EqualFold(in.AMPM, "PM")
}

func (f *eventForm) value() store.FormInput {
	ampm := "AM"
	if f.ampmPM {
		ampm = "PM"
	}
	return store.FormInput{
		Label:       f.inputs[fieldLabel].Value(),
		Location:    f.inputs[fieldLocation].Value(),
		Year:        f.inputs[fieldYear].Value(),
		Month:       f.inputs[fieldMonth].Value(),
		Day:         f.inputs[fieldDay].Value(),
		Hour:        f.inputs[fieldHour].Value(),
		Minute:      f.inputs[fieldMinute].Value(),
		AMPM:        ampm,
		TimeUnknown: f.timeUnknown,
	}
}

func (f *eventForm) setFocus(field formField) {
	f.focus = field
	for k, in := range f.inputs {
		if k == field {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (f *eventForm) fieldOrder() []formField {
	order := []formField{fieldLabel, fieldLocation, fieldYear, fieldMonth, fieldDay, fieldTimeUnknown}
	if !f.timeUnknown {
		order = append(order, fieldHour, fieldMinute, fieldAMPM)
	}
	return order
}

func (f *eventForm) move(delta int) {
	order := f.fieldOrder()
	idx := 0
	for i, field := range order {
		if field == f.focus {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(order)) % len(order)
	f.setFocus(order[idx])
}

// update handles one key. Returns true when the user asked to submit.
func (f *eventForm) update(msg tea.KeyMsg) (tea.Cmd, bool) {
	// Any edit clears the previous inline error.
	switch msg.String() {
	case "tab", "down":
		f.move(1)
		return nil, false
	case "shift+tab", "up":
		f.move(-1)
		return nil, false
	case "enter":
		return nil, true
	case " ":
		switch f.focus {
		case fieldTimeUnknown:
			f.timeUnknown = !f.timeUnknown
			f.errText = ""
			return nil, false
		case fieldAMPM:
			f.ampmPM = !f.ampmPM
			f.errText = ""
			return nil, false
		}
	}

	if in, ok := f.inputs[f.focus]; ok {
		f.errText = ""
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		return cmd, false
	}
	return nil, false
}

func (f *eventForm) view(width int, title string, busy bool) string {
	row := func(field formField, label string) string {
		marker := "  "
		if f.focus == field {
			marker = styleAccent().Render("> ")
		}
		return marker + styleMuted().Render(label) + " " + f.inputs[field].View()
	}
	check := func(field formField, on bool, label string) string {
		marker := "  "
		if f.focus == field {
			marker = styleAccent().Render("> ")
		}
		box := "[ ]"
		if on {
			box = "[x]"
		}
		return marker + box + " " + label
	}

	lines := []string{
		row(fieldLabel, "Label:   "),
		row(fieldLocation, "Location:"),
		row(fieldYear, "Year:    "),
		row(fieldMonth, "Month:   "),
		row(fieldDay, "Day:     "),
		check(fieldTimeUnknown, f.timeUnknown, "Time is unknown (uses 12:00 PM)"),
	}
	if !f.timeUnknown {
		ampm := "AM"
		if f.ampmPM {
			ampm = "PM"
		}
		lines = append(lines,
			row(fieldHour, "Hour:    "),
			row(fieldMinute, "Minute:  "),
			check(fieldAMPM, f.ampmPM, "PM ("+ampm+")"),
		)
	}
	if f.errText != "" {
		lines = append(lines, "", styleError().Render(f.errText))
	}
	help := "tab/↑↓: fields   space: toggle   enter: save   esc: cancel"
	if busy {
		help = "Saving…"
	}
	lines = append(lines, "", styleMuted().Render(help))

	return renderModalBox(width, title, lipgloss.JoinVertical(lipgloss.Left, lines...))
}
