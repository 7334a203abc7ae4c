package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/library"
)

const emptyCatalogText = "No books to show."

type booksLoadedMsg struct {
	scoped
	books []library.Book
	err   error
}

type deleteBookMsg struct {
	scoped
	id int64
}

type bookDeletedMsg struct {
	scoped
	id  int64
	err error
}

// catalogPage lists every book with view, edit and delete actions.
type catalogPage struct {
	d       deps
	books   []library.Book
	loaded  bool
	loading bool
	err     string
	cursor  listCursor
}

func newCatalogPage(d deps) *catalogPage {
	return &catalogPage{d: d}
}

func (p *catalogPage) Init() tea.Cmd {
	return p.fetch()
}

func (p *catalogPage) Title() string { return "Book Library" }

func (p *catalogPage) Capturing() bool { return false }

func (p *catalogPage) Hints() []hint {
	return []hint{{"enter", "View"}, {"e", "Edit"}, {"d", "Delete"}, {"n", "New"}, {"j/k", "Navigate"}, {"r", "Refresh"}}
}

func (p *catalogPage) fetch() tea.Cmd {
	p.loading = true
	d, s := p.d, p.d.scope()
	return func() tea.Msg {
		books, err := d.api.ListBooks(d.ctx)
		return booksLoadedMsg{scoped: s, books: books, err: err}
	}
}

func (p *catalogPage) selected() (library.Book, bool) {
	if p.cursor.index < 0 || p.cursor.index >= len(p.books) {
		return library.Book{}, false
	}
	return p.books[p.cursor.index], true
}

func (p *catalogPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case booksLoadedMsg:
		p.loading = false
		if msg.err != nil {
			p.d.warn("fetch books failed", msg.err)
			p.err = library.Message(msg.err, "Failed to load books")
			return p, nil
		}
		p.loaded = true
		p.err = ""
		p.books = msg.books
		p.cursor.clamp(len(p.books))
		return p, nil

	case deleteBookMsg:
		d, s, id := p.d, p.d.scope(), msg.id
		return p, func() tea.Msg {
			return bookDeletedMsg{scoped: s, id: id, err: d.api.DeleteBook(d.ctx, id)}
		}

	case bookDeletedMsg:
		if msg.err != nil {
			p.d.warn("delete book failed", msg.err, zap.Int64("book_id", msg.id))
			p.err = library.Message(msg.err, "Failed to delete book")
			return p, nil
		}
		p.err = ""
		return p, p.fetch()

	case tea.KeyMsg:
		return p, p.handleKey(msg)
	}
	return p, nil
}

func (p *catalogPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	keys := p.d.keys
	if p.cursor.handleKey(msg, keys, len(p.books)) {
		return nil
	}
	switch {
	case key.Matches(msg, keys.New):
		return p.d.navigate(routeNewBook)
	case key.Matches(msg, keys.Refresh):
		return p.fetch()
	}

	book, ok := p.selected()
	if !ok {
		return nil
	}
	switch {
	case key.Matches(msg, keys.Open):
		return p.d.navigate(bookPath(book.ID))
	case key.Matches(msg, keys.Edit):
		return p.d.navigate(editBookPath(book.ID))
	case key.Matches(msg, keys.Delete):
		s := p.d.scope()
		confirm := newConfirmModal(
			"Delete Book?",
			fmt.Sprintf("Are you sure you want to delete %q? This action cannot be undone.", book.Title),
			func() tea.Msg { return deleteBookMsg{scoped: s, id: book.ID} },
		)
		return openModal(s, confirm)
	}
	return nil
}

func (p *catalogPage) View(theme Theme, width, height int) string {
	styles, bg := pageStyles(theme)

	lines := make([]string, 0, height)
	if p.err != "" {
		lines = append(lines, renderAlert(styles, alertError, p.err), "")
	}

	switch {
	case !p.loaded && p.loading:
		lines = append(lines, p.d.loading(styles, bg, "Loading books..."))
		return strings.Join(lines, "\n")
	case p.loaded && len(p.books) == 0:
		lines = append(lines, bg.Render(emptyCatalogText, styles.MutedText))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, renderBookCards(styles, bg, p.books, &p.cursor, width, height-len(lines), true)...)
	return strings.Join(lines, "\n")
}

// renderBookCards draws books as three-line cards separated by a blank line.
func renderBookCards(styles Styles, bg BgStyle, books []library.Book, cursor *listCursor, width, height int, withSummary bool) []string {
	perCard := 3
	if !withSummary {
		perCard = 2
	}
	start, end := cursor.window(len(books), max(height/(perCard+1), 1))

	lines := make([]string, 0, (end-start)*(perCard+1))
	for i := start; i < end; i++ {
		book := books[i]
		selected := i == cursor.index

		marker := "  "
		titleStyle := styles.Text.Bold(true)
		if selected {
			marker = "▸ "
			titleStyle = styles.AccentText.Bold(true)
		}
		lines = append(lines, bg.Render(marker, styles.AccentText)+bg.Render(truncate(book.Title, width-2), titleStyle))

		meta := []string{"by " + book.Author}
		if g := strings.TrimSpace(book.Genre); g != "" {
			meta = append(meta, g)
		}
		if book.YearPublished != nil {
			meta = append(meta, fmt.Sprintf("%d", *book.YearPublished))
		}
		lines = append(lines, bg.Spaces(2)+bg.Render(truncate(strings.Join(meta, " · "), width-2), styles.MutedText))

		if withSummary {
			lines = append(lines, bg.Spaces(2)+bg.Render(truncate(summaryPreview(book.Summary), width-2), styles.FaintText))
		}
		lines = append(lines, "")
	}
	return lines
}

// summaryPreview returns the first characters of a summary or a placeholder.
func summaryPreview(summary string) string {
	summary = strings.Join(strings.Fields(summary), " ")
	if summary == "" {
		return "No summary available."
	}
	runes := []rune(summary)
	if len(runes) <= summaryPreviewLimit {
		return summary
	}
	return string(runes[:summaryPreviewLimit]) + "..."
}
