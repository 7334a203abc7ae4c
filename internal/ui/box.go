package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// renderTitledBox draws a bordered box with the title centered in the top
// border. Content lines are clipped to the box.
func renderTitledBox(theme Theme, title, content string, width, height int, focused bool) string {
	if width < 4 || height < 2 {
		return ""
	}
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = theme.BorderFocus
		bgColorStr = theme.FocusBg
	} else {
		borderColorStr = theme.Border
		bgColorStr = theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Text))

	innerWidth := width - 2
	title = truncate(title, max(innerWidth-4, 1))
	titleLen := ansi.StringWidth(title)
	leftPad := max((innerWidth-titleLen-2)/2, 0)
	rightPad := max(innerWidth-titleLen-2-leftPad, 0)

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).Background(lipgloss.Color(bgColorStr))
	contentLines := strings.Split(content, "\n")
	boxHeight := height - boxChrome

	lines := make([]string, 0, boxHeight)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = ansi.Truncate(contentLines[i], innerWidth, "")
		}
		lines = append(lines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(lines, "\n") + "\n" + bottomBorder
}

// wrapText wraps plain or styled text to width columns.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	return ansi.Wrap(text, width, "")
}

// alertKind selects the severity of an inline alert.
type alertKind int

const (
	alertError alertKind = iota
	alertInfo
	alertSuccess
)

// renderAlert renders an inline banner. Informational alerts use a lower
// visual severity than errors.
func renderAlert(styles Styles, kind alertKind, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	switch kind {
	case alertInfo:
		return styles.InfoText.Render("ℹ " + text)
	case alertSuccess:
		return styles.SuccessText.Render("✓ " + text)
	default:
		return styles.DangerText.Render("✗ " + text)
	}
}

// pageStyles returns the styles for content drawn inside a page box.
func pageStyles(theme Theme) (Styles, BgStyle) {
	return theme.Styles().WithBackground(theme.SurfaceAlt), NewBgStyle(theme.SurfaceAlt)
}
