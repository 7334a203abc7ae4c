package ui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer renders AI summaries and chat answers. Renderers are
// cached per wrap width; any rendering failure falls back to the plain text.
type markdownRenderer struct {
	mu        sync.Mutex
	renderers map[int]*glamour.TermRenderer
}

func newMarkdownRenderer() *markdownRenderer {
	return &markdownRenderer{renderers: make(map[int]*glamour.TermRenderer)}
}

func (r *markdownRenderer) Render(text string, width int) string {
	text = strings.TrimSpace(text)
	if text == "" || r == nil {
		return text
	}
	if width < 20 {
		width = 20
	}

	r.mu.Lock()
	renderer, ok := r.renderers[width]
	if !ok {
		var err error
		renderer, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			r.mu.Unlock()
			return text
		}
		r.renderers[width] = renderer
	}
	out, err := renderer.Render(text)
	r.mu.Unlock()
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
