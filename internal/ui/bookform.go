package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/library"
)

// popularGenres are offered as completions in the genre field.
var popularGenres = []string{
	"Fiction",
	"Non-Fiction",
	"Mystery",
	"Thriller",
	"Science Fiction",
	"Fantasy",
	"Romance",
	"Historical Fiction",
	"Horror",
	"Biography",
	"Memoir",
	"Self-Help",
	"History",
	"Science",
	"Philosophy",
	"Poetry",
	"Young Adult",
	"Children's",
	"Graphic Novel",
	"Classic",
}

type bookLoadedMsg struct {
	scoped
	book library.Book
	err  error
}

type bookSavedMsg struct {
	scoped
	book library.Book
	err  error
}

type summaryGeneratedMsg struct {
	scoped
	result library.GeneratedSummary
	err    error
}

// bookFormPage creates a book when bookID is zero and edits it otherwise.
type bookFormPage struct {
	d      deps
	bookID int64

	title   textinput.Model
	author  textinput.Model
	genre   textinput.Model
	year    textinput.Model
	summary textarea.Model
	fields  fieldSet

	loading    bool
	saving     bool
	generating bool
	err        string
	info       string
}

func newBookFormPage(d deps, bookID int64) *bookFormPage {
	p := &bookFormPage{
		d:       d,
		bookID:  bookID,
		title:   newTextInput("Title", 255),
		author:  newTextInput("Author", 255),
		genre:   newTextInput("Genre", 100),
		year:    newTextInput("e.g. 1965", 4),
		summary: newTextArea("Summary", 6),
	}
	p.genre.ShowSuggestions = true
	p.genre.SetSuggestions(popularGenres)
	// tab moves between fields, so completions are accepted with ctrl+y.
	p.genre.KeyMap.AcceptSuggestion = key.NewBinding(key.WithKeys("ctrl+y"))

	p.fields = fieldSet{fields: []field{
		{label: "Title", input: &p.title, required: true},
		{label: "Author", input: &p.author, required: true},
		{label: "Genre", input: &p.genre},
		{label: "Year Published", input: &p.year},
		{label: "Summary", area: &p.summary},
	}}
	if bookID == 0 {
		p.fields.focusIndex(0)
	} else {
		p.fields.blur()
	}
	return p
}

func (p *bookFormPage) editing() bool { return p.bookID != 0 }

func (p *bookFormPage) Init() tea.Cmd {
	if !p.editing() {
		return nil
	}
	p.loading = true
	d, s, id := p.d, p.d.scope(), p.bookID
	return func() tea.Msg {
		book, err := d.api.GetBook(d.ctx, id)
		return bookLoadedMsg{scoped: s, book: book, err: err}
	}
}

func (p *bookFormPage) Title() string {
	if p.editing() {
		return "Edit Book"
	}
	return "Add New Book"
}

func (p *bookFormPage) Capturing() bool { return p.fields.capturing() }

func (p *bookFormPage) Hints() []hint {
	hints := []hint{{"ctrl+s", "Save"}, {"tab", "Next field"}}
	if p.fields.focus == 2 {
		hints = append(hints, hint{"ctrl+y", "Accept genre"})
	}
	if p.editing() {
		hints = append(hints, hint{"ctrl+g", "Generate summary"})
	}
	if p.fields.capturing() {
		return append(hints, hint{"esc", "Leave input"})
	}
	return append(hints, hint{"enter", "Edit fields"}, hint{"esc", "Cancel"})
}

func (p *bookFormPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case bookLoadedMsg:
		p.loading = false
		if msg.err != nil {
			p.d.warn("fetch book failed", msg.err, zap.Int64("book_id", p.bookID))
			p.err = "Failed to fetch book details"
			return p, nil
		}
		p.fill(msg.book)
		return p, p.fields.focusIndex(0)

	case bookSavedMsg:
		p.saving = false
		if msg.err != nil {
			fallback := "Failed to create book"
			if p.editing() {
				fallback = "Failed to update book"
			}
			p.d.warn("save book failed", msg.err, zap.Int64("book_id", p.bookID))
			p.err = library.Message(msg.err, fallback)
			return p, nil
		}
		if p.editing() {
			return p, p.d.navigate(bookPath(p.bookID))
		}
		return p, p.d.navigate(routeCatalog)

	case summaryGeneratedMsg:
		p.generating = false
		if msg.err != nil {
			p.d.warn("generate summary failed", msg.err, zap.Int64("book_id", p.bookID))
			p.err = "Failed to generate summary"
			return p, nil
		}
		if msg.result.Error != "" {
			p.info = msg.result.Error
			return p, nil
		}
		p.summary.SetValue(msg.result.Summary)
		return p, nil

	case tea.KeyMsg:
		return p, p.handleKey(msg)
	}
	return p, nil
}

func (p *bookFormPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	keys := p.d.keys
	switch {
	case key.Matches(msg, keys.Save):
		return p.save()
	case key.Matches(msg, keys.Generate):
		return p.generate()
	case key.Matches(msg, keys.Tab):
		return p.fields.next()
	case key.Matches(msg, keys.ShiftTab):
		return p.fields.prev()
	case key.Matches(msg, keys.Escape):
		if p.fields.capturing() {
			p.fields.blur()
			return nil
		}
		if p.editing() {
			return p.d.navigate(bookPath(p.bookID))
		}
		return p.d.navigate(routeCatalog)
	}

	if !p.fields.capturing() {
		if key.Matches(msg, keys.Confirm) {
			return p.fields.focusIndex(0)
		}
		return nil
	}
	// enter advances through single-line fields; the summary keeps it for
	// newlines.
	if key.Matches(msg, keys.Confirm) && !p.fields.last() {
		return p.fields.next()
	}
	return p.fields.update(msg)
}

func (p *bookFormPage) fill(book library.Book) {
	p.title.SetValue(book.Title)
	p.author.SetValue(book.Author)
	p.genre.SetValue(book.Genre)
	if book.YearPublished != nil {
		p.year.SetValue(strconv.Itoa(*book.YearPublished))
	} else {
		p.year.SetValue("")
	}
	p.summary.SetValue(book.Summary)
}

// input validates the form and returns the record to send.
func (p *bookFormPage) input() (library.BookInput, string) {
	in := library.BookInput{
		Title:   strings.TrimSpace(p.title.Value()),
		Author:  strings.TrimSpace(p.author.Value()),
		Genre:   strings.TrimSpace(p.genre.Value()),
		Summary: strings.TrimSpace(p.summary.Value()),
	}
	if in.Title == "" || in.Author == "" {
		return in, "Title and author are required"
	}
	if raw := strings.TrimSpace(p.year.Value()); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return in, "Year published must be a whole number"
		}
		in.YearPublished = &year
	}
	return in, ""
}

func (p *bookFormPage) save() tea.Cmd {
	if p.saving || p.loading {
		return nil
	}
	in, problem := p.input()
	if problem != "" {
		p.err = problem
		return nil
	}
	p.saving = true
	p.err = ""

	d, s, id := p.d, p.d.scope(), p.bookID
	return func() tea.Msg {
		var (
			book library.Book
			err  error
		)
		if id == 0 {
			book, err = d.api.CreateBook(d.ctx, in)
		} else {
			book, err = d.api.UpdateBook(d.ctx, id, in)
		}
		return bookSavedMsg{scoped: s, book: book, err: err}
	}
}

// generate asks the server to summarise the book's ingested document.
func (p *bookFormPage) generate() tea.Cmd {
	if !p.editing() || p.generating {
		return nil
	}
	p.generating = true
	p.err = ""
	p.info = ""

	d, s, id := p.d, p.d.scope(), p.bookID
	return func() tea.Msg {
		result, err := d.api.GenerateSummary(d.ctx, id)
		return summaryGeneratedMsg{scoped: s, result: result, err: err}
	}
}

func (p *bookFormPage) View(theme Theme, width, height int) string {
	styles, bg := pageStyles(theme)

	if p.loading {
		return p.d.loading(styles, bg, "Loading book...")
	}

	var lines []string
	if p.err != "" {
		lines = append(lines, renderAlert(styles, alertError, p.err))
	}
	if p.info != "" {
		lines = append(lines, renderAlert(styles, alertInfo, p.info))
	}
	if len(lines) > 0 {
		lines = append(lines, "")
	}

	lines = append(lines, p.fields.render(styles, bg, min(width, 80))...)

	switch {
	case p.saving:
		lines = append(lines, p.d.loading(styles, bg, "Saving..."))
	case p.generating:
		lines = append(lines, p.d.loading(styles, bg, "Generating summary from ingested document..."))
	case p.editing():
		lines = append(lines, bg.Render("ctrl+s: Update Book  ctrl+g: Generate Summary from Ingested Doc", styles.FaintText))
	default:
		lines = append(lines, bg.Render("ctrl+s: Add Book", styles.FaintText))
	}
	return strings.Join(lines, "\n")
}
