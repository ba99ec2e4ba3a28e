package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m appModel) View() string {
	if !m.seenWindowSize {
		return "Loading…"
	}

	switch m.modal {
	case modalEventForm:
		title := "Add New Event"
		if m.editingID != 0 {
			title = "Edit Event"
		}
		return m.form.view(m.width, title, m.saving)
	case modalConfirmDelete:
		body := "Delete \"" + m.deleteTargetLabel + "\"? This cannot be undone."
		return renderConfirmModal(m.width, "Delete Event", body, "Delete", "Cancel", m.confirmFocus)
	case modalTimezone:
		content := m.tzList.View() + "\n\n" + styleMuted().Render("enter: select   esc: cancel")
		return renderModalBox(m.width, "Progressed Chart Timezone", content)
	case modalTransit:
		lines := []string{
			styleMuted().Render("Attach a transit chart for this moment (local time):"),
			"",
			m.transitInput.View(),
		}
		if m.transitErr != "" {
			lines = append(lines, "", styleError().Render(m.transitErr))
		}
		lines = append(lines, "", styleMuted().Render("enter: attach   ctrl+x: remove transit   esc: cancel"))
		return renderModalBox(m.width, "Transit", lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	var b strings.Builder

	b.WriteString(styleTitle().Render("Pythia"))
	b.WriteString("  ")
	b.WriteString(styleMuted().Render("Select a saved chart or add a new one to begin."))
	b.WriteString("\n\n")

	b.WriteString(m.sectionEvents())
	b.WriteString("\n")
	b.WriteString(m.sectionModes())
	b.WriteString("\n")
	b.WriteString(m.sectionQuestion())
	b.WriteString("\n")
	b.WriteString(m.sectionResults())
	b.WriteString("\n")
	b.WriteString(m.footer())

	return b.String()
}

func (m appModel) sectionEvents() string {
	var b strings.Builder
	header := "Events"
	if m.loading {
		header += styleMuted().Render("  (refreshing…)")
	}
	b.WriteString(styleAccent().Render(header))
	b.WriteString("\n")

	if len(m.events.Items()) == 0 {
		b.WriteString(styleMuted().Render("No saved events. Press a to add one.") + "\n")
	} else {
		b.WriteString(m.events.View())
		b.WriteString("\n")
	}

	for _, f := range []flash{m.loadFlash, m.saveFlash, m.updateFlash, m.deleteFlash} {
		if f.text == "" {
			continue
		}
		if f.isErr {
			b.WriteString(styleError().Render(f.text) + "\n")
		} else {
			b.WriteString(styleOK().Render(f.text) + "\n")
		}
	}
	return b.String()
}

func (m appModel) sectionModes() string {
	manualBox := "[ ]"
	if m.useManual {
		manualBox = "[x]"
	}
	line := manualBox + " manual chart data (m)   transit: " + m.transitStatus() + " (t)"
	out := styleMuted().Render(line)
	if m.useManual {
		out += "\n" + m.manual.View()
	}
	return out + "\n"
}

func (m appModel) sectionQuestion() string {
	return styleAccent().Render("Your Question") + "\n" + m.question.View() + "\n"
}

func (m appModel) sectionResults() string {
	var b strings.Builder
	b.WriteString(styleAccent().Render("Results"))
	b.WriteString("\n")

	switch {
	case m.asking:
		b.WriteString(m.spin.View() + " Thinking…\n")
		b.WriteString(styleMuted().Render("Results take about 1 minute to generate. Please be patient.") + "\n")
		b.WriteString(styleMuted().Render("Your questions are never stored on our servers because we value your privacy.") + "\n")
	case m.askFlash.text != "":
		b.WriteString(styleError().Render(m.askFlash.text) + "\n")
	case m.answer != "":
		w := m.width - 4
		if w > 100 {
			w = 100
		}
		b.WriteString(renderMarkdown(m.answer, w) + "\n")
	default:
		b.WriteString(styleMuted().Italic(true).Render("Enter a question above to see results here.") + "\n")
	}
	return b.String()
}

func (m appModel) footer() string {
	var hints string
	switch m.focus {
	case focusQuestion:
		hints = "enter: ask   esc: back   tab: focus"
	case focusManual:
		hints = "esc: back   tab: focus"
	default:
		hints = "space: include   p: progressed   z: timezone   a: add   e: edit   d: delete   m: manual   t: transit   enter: ask   r: reload   q: quit"
	}
	return styleMuted().Render(hints)
}
