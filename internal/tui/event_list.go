package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"

	"pythia-cli/internal/model"
	"pythia-cli/internal/selection"
)

type eventItem struct {
	event model.Event
	sel   *selection.State
}

func (i eventItem) FilterValue() string { return i.event.Label }

// title renders "[x] Label  +progressed @tz".
func (i eventItem) title() string {
	box := "[ ]"
	if i.sel.IsChecked(i.event.ID) {
		box = "[x]"
	}
	out := box + " " + i.event.Label
	if i.sel.IsProgressed(i.event.ID) {
		out += "  " + styleAccent().Render("+progressed")
		if tz, ok := i.sel.TimezoneOverride(i.event.ID); ok {
			out += styleAccent().Render(" @" + model.TimezoneLabel(tz))
		}
	}
	return out
}

type eventDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newEventDelegate() eventDelegate {
	return eventDelegate{
		normal: lipgloss.NewStyle(),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

func (d eventDelegate) Height() int                             { return 1 }
func (d eventDelegate) Spacing() int                            { return 0 }
func (d eventDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d eventDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}
	style := d.normal
	if index == m.Index() {
		style = d.selected
	}

	line := ""
	if it, ok := item.(eventItem); ok {
		line = it.title()
	} else {
		line = fmt.Sprint(item)
	}

	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Cut(line, 0, contentW)
	}
	fmt.Fprint(w, style.Render(line))
}

func newList(items []list.Item, delegate list.ItemDelegate) list.Model {
	l := list.New(items, delegate, 0, 0)
	// We render our own chrome; keep the list minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.KeyMap.Quit.SetKeys("q")
	// Emacs-style aliases alongside the defaults.
	l.KeyMap.CursorUp.SetKeys(append(l.KeyMap.CursorUp.Keys(), "ctrl+p")...)
	l.KeyMap.CursorDown.SetKeys(append(l.KeyMap.CursorDown.Keys(), "ctrl+n")...)
	return l
}

// tzItem is one row of the timezone override picker. An empty value clears
// the override (use the natal timezone).
type tzItem struct {
	value string
	label string
}

func (i tzItem) FilterValue() string { return i.label }

type tzDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newTzDelegate() tzDelegate {
	d := newEventDelegate()
	return tzDelegate{normal: d.normal, selected: d.selected}
}

func (d tzDelegate) Height() int                             { return 1 }
func (d tzDelegate) Spacing() int                            { return 0 }
func (d tzDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d tzDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}
	style := d.normal
	if index == m.Index() {
		style = d.selected
	}
	line := ""
	if it, ok := item.(tzItem); ok {
		line = it.label
	}
	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Cut(line, 0, contentW)
	}
	fmt.Fprint(w, style.Render(line))
}

func timezoneItems() []list.Item {
	items := []list.Item{tzItem{value: "", label: "Natal timezone (no override)"}}
	for _, tz := range model.CommonTimezones {
		items = append(items, tzItem{value: tz.Value, label: tz.Label + "  " + tz.Value})
	}
	return items
}
