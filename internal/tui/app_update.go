package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.seenWindowSize = true
		m.resize()
		return m, nil

	case reloadTickMsg:
		// Background refresh, suppressed while anything is outstanding so a
		// wholesale list replace can't land under an in-flight mutation.
		if m.modal == modalNone && !m.loading && !m.asking && !m.mutating() {
			m.loading = true
			return m, tea.Batch(fetchEventsCmd(m.orch, m.store), tickReload())
		}
		return m, tickReload()

	case eventsLoadedMsg:
		m.loading = false
		if msg.out.Redirect {
			m.redirect = true
			return m, tea.Quit
		}
		if msg.out.Err != nil {
			m.loadFlash = errFlash("Failed to load saved events: " + msg.out.Err.Error())
			return m, nil
		}
		m.loadFlash = flash{}
		// Ids that vanished from the server list must not linger in the
		// selection.
		m.sel.Prune(m.store.IDSet())
		m.refreshEventItems()
		return m, nil

	case eventSavedMsg:
		m.saving = false
		if msg.out.Redirect {
			m.redirect = true
			return m, tea.Quit
		}
		if msg.out.Err != nil {
			// Keep the form open, preserved for correction.
			if m.form != nil {
				m.form.errText = "Save failed: " + msg.out.Err.Error()
			} else {
				m.saveFlash = errFlash("Save failed: " + msg.out.Err.Error())
			}
			return m, nil
		}
		m.modal = modalNone
		m.form = nil
		m.saveFlash = okFlash("Event saved successfully!")
		m.refreshEventItems()
		return m, nil

	case eventUpdatedMsg:
		m.saving = false
		if msg.out.Redirect {
			m.redirect = true
			return m, tea.Quit
		}
		if msg.out.Err != nil {
			if m.form != nil {
				m.form.errText = "Update failed: " + msg.out.Err.Error()
			} else {
				m.updateFlash = errFlash("Update failed: " + msg.out.Err.Error())
			}
			return m, nil
		}
		m.modal = modalNone
		m.form = nil
		m.editingID = 0
		m.updateFlash = okFlash("Event updated.")
		m.refreshEventItems()
		return m, nil

	case eventDeletedMsg:
		m.deleting = false
		if msg.out.Redirect {
			m.redirect = true
			return m, tea.Quit
		}
		if msg.out.Err != nil {
			m.deleteFlash = errFlash("Delete failed: " + msg.out.Err.Error())
			return m, nil
		}
		// Cascade: no orphaned checked/progressed/override state.
		m.sel.Remove(msg.id)
		m.deleteFlash = okFlash("Event deleted.")
		m.refreshEventItems()
		return m, nil

	case askDoneMsg:
		m.asking = false
		if msg.out.Redirect {
			m.redirect = true
			return m, tea.Quit
		}
		if msg.out.Err != nil {
			m.askFlash = errFlash(msg.out.Err.Error())
			return m, nil
		}
		m.answer = msg.out.Answer
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	if m.asking {
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.modal {
	case modalEventForm:
		return m.updateEventFormKey(msg)
	case modalConfirmDelete:
		return m.updateConfirmDeleteKey(msg)
	case modalTimezone:
		return m.updateTimezoneKey(msg)
	case modalTransit:
		return m.updateTransitKey(msg)
	}

	switch msg.String() {
	case "tab":
		m.cycleFocus(1)
		return m, nil
	case "shift+tab":
		m.cycleFocus(-1)
		return m, nil
	}

	switch m.focus {
	case focusQuestion:
		switch msg.String() {
		case "enter":
			return m, m.startAsk()
		case "esc":
			m.setFocus(focusEvents)
			return m, nil
		}
		var cmd tea.Cmd
		m.question, cmd = m.question.Update(msg)
		return m, cmd

	case focusManual:
		if msg.String() == "esc" {
			m.setFocus(focusEvents)
			return m, nil
		}
		var cmd tea.Cmd
		m.manual, cmd = m.manual.Update(msg)
		return m, cmd
	}

	return m.updateEventsKey(msg)
}

func (m appModel) updateEventsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case " ":
		if ev, ok := m.selectedEvent(); ok {
			m.sel.ToggleChecked(ev.ID)
			m.refreshEventItems()
		}
		return m, nil

	case "p":
		if ev, ok := m.selectedEvent(); ok {
			m.sel.ToggleProgressed(ev.ID)
			m.refreshEventItems()
		}
		return m, nil

	case "z":
		if ev, ok := m.selectedEvent(); ok {
			m.tzTargetID = ev.ID
			m.tzList.Select(0)
			m.modal = modalTimezone
		}
		return m, nil

	case "a":
		if m.mutating() {
			return m, nil
		}
		m.form = newEventForm()
		m.editingID = 0
		m.modal = modalEventForm
		m.saveFlash = flash{}
		return m, nil

	case "e":
		if m.mutating() {
			return m, nil
		}
		if ev, ok := m.selectedEvent(); ok {
			m.beginEdit(ev)
			m.updateFlash = flash{}
		}
		return m, nil

	case "d":
		if m.mutating() {
			return m, nil
		}
		if ev, ok := m.selectedEvent(); ok {
			m.deleteTargetID = ev.ID
			m.deleteTargetLabel = ev.Label
			// Cancel is the safe default for an irreversible action.
			m.confirmFocus = confirmFocusCancel
			m.modal = modalConfirmDelete
			m.deleteFlash = flash{}
		}
		return m, nil

	case "m":
		m.useManual = !m.useManual
		if m.useManual {
			m.setFocus(focusManual)
		}
		return m, nil

	case "t":
		at := m.transitAt
		if !m.transitOn {
			at = time.Now()
		}
		m.transitInput.SetValue(at.Format(transitLayout))
		m.transitInput.Focus()
		m.transitErr = ""
		m.modal = modalTransit
		return m, nil

	case "r":
		if !m.loading && !m.mutating() {
			m.loading = true
			return m, fetchEventsCmd(m.orch, m.store)
		}
		return m, nil

	case "enter":
		return m, m.startAsk()
	}

	var cmd tea.Cmd
	m.events, cmd = m.events.Update(msg)
	return m, cmd
}

func (m appModel) updateEventFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.modal = modalNone
		m.form = nil
		if m.editingID != 0 {
			m.store.ClearDraft()
			m.editingID = 0
		}
		return m, nil
	}
	if m.form == nil {
		m.modal = modalNone
		return m, nil
	}

	cmd, submit := m.form.update(msg)
	if !submit {
		return m, cmd
	}
	if m.saving {
		return m, nil
	}

	in := m.form.value()
	// Validate before any network traffic; a bad form never leaves the
	// client.
	if _, err := in.Normalize(); err != nil {
		m.form.errText = err.Error()
		return m, nil
	}
	m.saving = true
	if m.editingID != 0 {
		return m, updateEventCmd(m.orch, m.store, m.editingID, in)
	}
	return m, saveEventCmd(m.orch, m.store, in)
}

func (m appModel) updateConfirmDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		return m, nil
	case "tab", "left", "right":
		if m.confirmFocus == confirmFocusConfirm {
			m.confirmFocus = confirmFocusCancel
		} else {
			m.confirmFocus = confirmFocusConfirm
		}
		return m, nil
	case "enter":
		m.modal = modalNone
		if m.confirmFocus != confirmFocusConfirm || m.deleting {
			return m, nil
		}
		m.deleting = true
		return m, deleteEventCmd(m.orch, m.store, m.deleteTargetID)
	}
	return m, nil
}

func (m appModel) updateTimezoneKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		return m, nil
	case "enter":
		if it, ok := m.tzList.SelectedItem().(tzItem); ok {
			m.sel.SetTimezoneOverride(m.tzTargetID, it.value)
			m.refreshEventItems()
		}
		m.modal = modalNone
		return m, nil
	}
	var cmd tea.Cmd
	m.tzList, cmd = m.tzList.Update(msg)
	return m, cmd
}

func (m appModel) updateTransitKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		return m, nil
	case "ctrl+x":
		m.transitOn = false
		m.modal = modalNone
		return m, nil
	case "enter":
		at, err := time.ParseInLocation(transitLayout, m.transitInput.Value(), time.Local)
		if err != nil {
			m.transitErr = "Enter the moment as " + transitLayout + "."
			return m, nil
		}
		m.transitOn = true
		m.transitAt = at
		m.modal = modalNone
		return m, nil
	}
	var cmd tea.Cmd
	m.transitInput, cmd = m.transitInput.Update(msg)
	return m, cmd
}

func (m *appModel) focusOrder() []focusArea {
	if m.useManual {
		return []focusArea{focusEvents, focusManual, focusQuestion}
	}
	return []focusArea{focusEvents, focusQuestion}
}

func (m *appModel) cycleFocus(delta int) {
	order := m.focusOrder()
	idx := 0
	for i, f := range order {
		if f == m.focus {
			idx = i
			break
		}
	}
	m.setFocus(order[(idx+delta+len(order))%len(order)])
}

func (m *appModel) setFocus(f focusArea) {
	m.focus = f
	if f == focusQuestion {
		m.question.Focus()
	} else {
		m.question.Blur()
	}
	if f == focusManual {
		m.manual.Focus()
	} else {
		m.manual.Blur()
	}
}
