package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func modalBodyWidth(width int) int {
	w := width - 8
	if w > 72 {
		w = 72
	}
	if w < 24 {
		w = 24
	}
	return w
}

func renderModalBox(width int, title string, content string) string {
	bodyW := modalBodyWidth(width)
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(1, 2).
		Width(bodyW)

	head := styleTitle().Render(title)
	inner := lipgloss.JoinVertical(lipgloss.Left, head, "", content)
	rendered := box.Render(inner)
	if width > lipgloss.Width(rendered) {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, rendered)
	}
	return rendered
}

func renderConfirmModal(width int, title, body, confirmLabel, cancelLabel string, focus confirmModalFocus) string {
	// No nested borders: some terminals show background artifacts when a
	// bordered control sits inside a bordered modal.
	btn := lipgloss.NewStyle().Padding(0, 1).Background(colorControlBg)
	btnActive := btn.Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)

	confirm := btn.Render(confirmLabel)
	cancel := btn.Render(cancelLabel)
	if focus == confirmFocusConfirm {
		confirm = btnActive.Render(confirmLabel)
	} else {
		cancel = btnActive.Render(cancelLabel)
	}
	controls := lipgloss.JoinHorizontal(lipgloss.Top, confirm, " ", cancel)

	help := styleMuted().Render("tab: focus   enter: select   esc: cancel")
	content := strings.Join([]string{body, "", controls, "", help}, "\n")
	return renderModalBox(width, title, content)
}
