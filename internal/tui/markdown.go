package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

var (
	mdRendererMu sync.Mutex
	// Cache renderers by wrap width. Creating a renderer with WithAutoStyle
	// can trigger terminal queries that block on some terminals, so a fixed
	// style is used and instances are reused.
	mdRenderers = map[int]*glamour.TermRenderer{}
)

// renderMarkdown renders the interpretation prose for the answer panel.
// Falls back to the raw text on any renderer failure.
func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	mdRendererMu.Lock()
	r := mdRenderers[width]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(glamourStyle()),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			mdRendererMu.Unlock()
			return md
		}
		mdRenderers[width] = rr
		r = rr
	}
	mdRendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// glamourStyle follows the terminal background like the rest of the theme.
// WithAutoStyle is avoided on purpose (see mdRenderers).
func glamourStyle() string {
	if termenv.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
