package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// navEntry is one page reachable from the nav bar.
type navEntry struct {
	key     string
	label   string
	pattern string
}

var navEntries = []navEntry{
	{"1", "Books", routeCatalog},
	{"2", "Picks", routeRecommendations},
	{"3", "Documents", routeDocuments},
	{"4", "Q&A", routeChat},
	{"5", "Users", routeAdminUsers},
}

// renderHeader renders the nav bar: logo, title, page entries and the
// signed-in user.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)

	parts := []string{
		bg.Render("shelf", styles.Logo),
		bg.Render("Intelligent Books", styles.Text.Bold(true)),
	}

	snap := m.session.Snapshot()
	if !snap.IsAuthenticated() {
		parts = append(parts, bg.Render("Not signed in", styles.MutedText))
		if m.baseURL != "" && m.width >= LayoutCompactWidth {
			parts = append(parts, bg.Render(truncateMiddle(m.baseURL, 40), styles.FaintText))
		}
		return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
	}

	active := m.activeNav()
	for _, entry := range navEntries {
		if entry.pattern == routeAdminUsers && !snap.IsSuperuser() {
			continue
		}
		label := bg.Render(entry.key, styles.FaintText) + bg.Sep(":")
		if entry.pattern == active {
			label += bg.Render(entry.label, styles.AccentText.Bold(true).Underline(true))
		} else {
			label += bg.Render(entry.label, styles.Text)
		}
		parts = append(parts, label)
	}

	who := "signed in"
	if snap.HasUser && snap.User.Email != "" {
		who = snap.User.Email
	}
	if m.width < LayoutCompactWidth {
		who = truncate(who, 18)
	}
	parts = append(parts,
		bg.Render(who, styles.MutedText),
		bg.Render("L", styles.AccentText)+bg.Sep(":")+bg.Render("Logout", styles.MutedText),
	)

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Padding(0, 1).
		Width(m.width).
		Render(strings.Join(parts, sep))
}

// activeNav maps the current route onto the nav entry it belongs to.
func (m Model) activeNav() string {
	switch m.route.pattern {
	case routeBook, routeEditBook, routeNewBook:
		return routeCatalog
	default:
		return m.route.pattern
	}
}

// renderCommandBar renders the key hints for the current page.
func (m Model) renderCommandBar() string {
	// Command bar uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	commands := m.current.Hints()
	if m.modal != nil {
		commands = []hint{{"y", "Confirm"}, {"n/esc", "Cancel"}}
	} else if !m.current.Capturing() {
		commands = append(commands, hint{"?", "More"})
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	// Add theme indicator
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}
