package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/library"
)

const emptyRecommendationsText = "Review some books to get personalized recommendations!"

type recommendationsLoadedMsg struct {
	scoped
	books []library.Book
	err   error
}

// recommendationsPage lists books picked for the signed-in user.
type recommendationsPage struct {
	d      deps
	books  []library.Book
	loaded bool
	err    string
	cursor listCursor
}

func newRecommendationsPage(d deps) *recommendationsPage {
	return &recommendationsPage{d: d}
}

func (p *recommendationsPage) Init() tea.Cmd {
	d, s := p.d, p.d.scope()
	return func() tea.Msg {
		books, err := d.api.Recommendations(d.ctx)
		return recommendationsLoadedMsg{scoped: s, books: books, err: err}
	}
}

func (p *recommendationsPage) Title() string { return "Recommended For You" }

func (p *recommendationsPage) Capturing() bool { return false }

func (p *recommendationsPage) Hints() []hint {
	return []hint{{"enter", "View Details"}, {"j/k", "Navigate"}, {"r", "Refresh"}}
}

func (p *recommendationsPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case recommendationsLoadedMsg:
		p.loaded = true
		if msg.err != nil {
			p.d.warn("fetch recommendations failed", msg.err)
			p.err = library.Message(msg.err, "Failed to load recommendations")
			return p, nil
		}
		p.err = ""
		p.books = msg.books
		p.cursor.clamp(len(p.books))
		return p, nil

	case tea.KeyMsg:
		keys := p.d.keys
		if p.cursor.handleKey(msg, keys, len(p.books)) {
			return p, nil
		}
		switch {
		case key.Matches(msg, keys.Refresh):
			p.loaded = false
			return p, p.Init()
		case key.Matches(msg, keys.Open):
			if p.cursor.index < len(p.books) {
				return p, p.d.navigate(bookPath(p.books[p.cursor.index].ID))
			}
		}
	}
	return p, nil
}

func (p *recommendationsPage) View(theme Theme, width, height int) string {
	styles, bg := pageStyles(theme)

	lines := []string{bg.Render("Based on your interests and high-rated genres.", styles.MutedText), ""}
	if p.err != "" {
		lines = append(lines, renderAlert(styles, alertError, p.err), "")
	}
	if !p.loaded {
		lines = append(lines, p.d.loading(styles, bg, "Loading recommendations..."))
		return strings.Join(lines, "\n")
	}
	if len(p.books) == 0 {
		lines = append(lines, bg.Render(emptyRecommendationsText, styles.Text))
		return strings.Join(lines, "\n")
	}
	lines = append(lines, renderBookCards(styles, bg, p.books, &p.cursor, width, height-len(lines), false)...)
	return strings.Join(lines, "\n")
}
