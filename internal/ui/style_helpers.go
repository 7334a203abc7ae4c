package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// BgStyle paints every cell it renders, spaces included, with one
// background color. lipgloss resets attributes between words, which
// otherwise leaves holes in a colored panel.
type BgStyle struct {
	fill lipgloss.Style
}

// NewBgStyle returns a BgStyle for bgColor.
func NewBgStyle(bgColor string) BgStyle {
	return BgStyle{fill: lipgloss.NewStyle().Background(lipgloss.Color(bgColor))}
}

// Render draws text in style on the fill color. Runs of spaces are
// painted separately from the words between them.
func (b BgStyle) Render(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	style = style.Background(b.fill.GetBackground())

	var out strings.Builder
	for text != "" {
		n := strings.IndexByte(text, ' ')
		switch {
		case n < 0:
			out.WriteString(style.Render(text))
			return out.String()
		case n > 0:
			out.WriteString(style.Render(text[:n]))
			text = text[n:]
		default:
			run := len(text) - len(strings.TrimLeft(text, " "))
			out.WriteString(b.Spaces(run))
			text = text[run:]
		}
	}
	return out.String()
}

// Space is a single painted space.
func (b BgStyle) Space() string { return b.Spaces(1) }

// Spaces is n painted spaces.
func (b BgStyle) Spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return b.fill.Render(strings.Repeat(" ", n))
}

// Sep paints a separator on the fill color.
func (b BgStyle) Sep(sep string) string { return b.fill.Render(sep) }

// Join concatenates already rendered parts with a painted separator.
func (b BgStyle) Join(parts []string, sep string) string {
	return strings.Join(parts, b.Sep(sep))
}
