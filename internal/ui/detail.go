package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/library"
)

const (
	bookNotFoundText    = "Book not found"
	alreadyReviewedText = "You have already reviewed this book."
	reviewPromptText    = "What did you think of this book?"
)

// detailLoadedMsg carries the result of one book → summary → reviews
// sequence. A failed book fetch leaves book nil; a failed reviews fetch
// sets reviewsErr and leaves reviews nil.
type detailLoadedMsg struct {
	scoped
	book       *library.Book
	summary    *library.BookSummary
	reviews    []library.Review
	err        error
	reviewsErr error
}

type reviewPostedMsg struct {
	scoped
	err error
}

type deleteReviewMsg struct {
	scoped
	id int64
}

type reviewDeletedMsg struct {
	scoped
	id  int64
	err error
}

// detailPage shows one book with its AI summary and reviews.
type detailPage struct {
	d      deps
	bookID int64

	loading bool
	loaded  bool
	book    *library.Book
	summary *library.BookSummary
	reviews []library.Review
	err     string

	// reviewsKnown is false until a reviews fetch has succeeded.
	reviewsKnown bool
	reviewsErr   string

	composing   bool
	focusRating bool
	rating      int
	text        textarea.Model
	submitting  bool

	// selected indexes reviews; -1 when no review is selected.
	selected int
	vp       viewport.Model
}

func newDetailPage(d deps, bookID int64) *detailPage {
	return &detailPage{
		d:        d,
		bookID:   bookID,
		rating:   library.MaxRating,
		text:     newTextArea(reviewPromptText, 3),
		selected: -1,
		vp:       viewport.New(80, 20),
	}
}

func (p *detailPage) Init() tea.Cmd {
	return p.fetch()
}

func (p *detailPage) Title() string {
	if p.book != nil {
		return p.book.Title
	}
	return "Book"
}

func (p *detailPage) Capturing() bool { return p.composing }

func (p *detailPage) Hints() []hint {
	if p.composing {
		return []hint{{"ctrl+s", "Submit"}, {"tab", "Text/Rating"}, {"←/→", "Rating"}, {"esc", "Cancel"}}
	}
	hints := []hint{{"e", "Edit"}}
	if p.canCompose() {
		hints = append(hints, hint{"w", "Write review"})
	}
	if len(p.deletable()) > 0 {
		hints = append(hints, hint{"tab", "Select review"}, hint{"d", "Delete review"})
	}
	return append(hints, hint{"j/k", "Scroll"}, hint{"esc", "Back"})
}

// fetch runs the detail sequence. The three calls are issued in order,
// each after the previous one returns; a failed summary does not stop the
// reviews fetch.
func (p *detailPage) fetch() tea.Cmd {
	p.loading = true
	d, s, id := p.d, p.d.scope(), p.bookID
	return func() tea.Msg {
		msg := detailLoadedMsg{scoped: s}
		book, err := d.api.GetBook(d.ctx, id)
		if err != nil {
			msg.err = err
			return msg
		}
		msg.book = &book

		summary, err := d.api.BookSummary(d.ctx, id)
		if err != nil {
			d.warn("fetch book summary failed", err, zap.Int64("book_id", id))
		} else {
			msg.summary = &summary
		}

		msg.reviews, msg.reviewsErr = d.api.ListReviews(d.ctx, id)
		return msg
	}
}

// ownReview returns the signed-in user's review of this book, if any.
func (p *detailPage) ownReview() (library.Review, bool) {
	user, ok := p.d.user()
	if !ok {
		return library.Review{}, false
	}
	for _, r := range p.reviews {
		if r.UserID == user.ID {
			return r, true
		}
	}
	return library.Review{}, false
}

func (p *detailPage) canCompose() bool {
	if p.book == nil || !p.reviewsKnown {
		return false
	}
	_, reviewed := p.ownReview()
	return !reviewed
}

// canDelete reports whether to offer deleting r. The server makes the
// actual decision.
func (p *detailPage) canDelete(r library.Review) bool {
	user, ok := p.d.user()
	if !ok {
		return false
	}
	return user.IsSuperuser || user.ID == r.UserID
}

// deletable returns the indexes of reviews the user may delete.
func (p *detailPage) deletable() []int {
	var out []int
	for i, r := range p.reviews {
		if p.canDelete(r) {
			out = append(out, i)
		}
	}
	return out
}

func (p *detailPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		p.loading = false
		p.loaded = true
		if msg.err != nil {
			p.d.warn("fetch book failed", msg.err, zap.Int64("book_id", p.bookID))
			p.book = nil
			return p, nil
		}
		p.book = msg.book
		p.summary = msg.summary
		if msg.reviewsErr != nil {
			// Keep the last known reviews so the own-review check still holds.
			p.d.warn("fetch reviews failed", msg.reviewsErr, zap.Int64("book_id", p.bookID))
			p.reviewsErr = library.Message(msg.reviewsErr, "Failed to load reviews")
		} else {
			p.reviews = msg.reviews
			p.reviewsKnown = true
			p.reviewsErr = ""
		}
		if p.selected >= len(p.reviews) || (p.selected >= 0 && !p.canDelete(p.reviews[p.selected])) {
			p.selected = -1
		}
		if !p.canCompose() {
			p.closeCompose()
		}
		return p, nil

	case reviewPostedMsg:
		p.submitting = false
		if msg.err != nil {
			p.d.warn("post review failed", msg.err, zap.Int64("book_id", p.bookID))
			p.err = library.Message(msg.err, "Failed to post review")
			return p, nil
		}
		p.err = ""
		p.text.Reset()
		p.rating = library.MaxRating
		p.closeCompose()
		return p, p.fetch()

	case deleteReviewMsg:
		d, s, id := p.d, p.d.scope(), msg.id
		return p, func() tea.Msg {
			return reviewDeletedMsg{scoped: s, id: id, err: d.api.DeleteReview(d.ctx, id)}
		}

	case reviewDeletedMsg:
		p.selected = -1
		if msg.err != nil {
			p.d.warn("delete review failed", msg.err, zap.Int64("review_id", msg.id))
			p.err = library.Message(msg.err, "Failed to delete review")
			return p, nil
		}
		p.err = ""
		return p, p.fetch()

	case tea.KeyMsg:
		if p.composing {
			return p, p.handleComposeKey(msg)
		}
		return p, p.handleKey(msg)
	}
	return p, nil
}

func (p *detailPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	keys := p.d.keys
	switch {
	case key.Matches(msg, keys.Escape):
		return p.d.navigate(routeCatalog)
	case key.Matches(msg, keys.Up):
		p.vp.ScrollUp(1)
	case key.Matches(msg, keys.Down):
		p.vp.ScrollDown(1)
	case key.Matches(msg, keys.PageUp):
		p.vp.HalfPageUp()
	case key.Matches(msg, keys.PageDown):
		p.vp.HalfPageDown()
	case key.Matches(msg, keys.Top):
		p.vp.GotoTop()
	case key.Matches(msg, keys.Bottom):
		p.vp.GotoBottom()
	case key.Matches(msg, keys.Refresh):
		return p.fetch()
	case key.Matches(msg, keys.Edit):
		if p.book != nil {
			return p.d.navigate(editBookPath(p.bookID))
		}
	case key.Matches(msg, keys.Write):
		if p.canCompose() {
			p.composing = true
			p.focusRating = false
			return p.text.Focus()
		}
	case key.Matches(msg, keys.Tab):
		p.cycleSelection()
	case key.Matches(msg, keys.Delete):
		return p.confirmDelete()
	}
	return nil
}

func (p *detailPage) handleComposeKey(msg tea.KeyMsg) tea.Cmd {
	keys := p.d.keys
	switch {
	case key.Matches(msg, keys.Escape):
		p.closeCompose()
		return nil
	case key.Matches(msg, keys.Save):
		return p.submit()
	case key.Matches(msg, keys.Tab), key.Matches(msg, keys.ShiftTab):
		p.focusRating = !p.focusRating
		if p.focusRating {
			p.text.Blur()
			return nil
		}
		return p.text.Focus()
	}

	if p.focusRating {
		switch msg.String() {
		case "left", "h", "down", "j", "-":
			p.rating = max(p.rating-1, library.MinRating)
		case "right", "l", "up", "k", "+":
			p.rating = min(p.rating+1, library.MaxRating)
		case "1", "2", "3", "4", "5":
			p.rating = int(msg.String()[0] - '0')
		}
		return nil
	}

	var cmd tea.Cmd
	p.text, cmd = p.text.Update(msg)
	return cmd
}

func (p *detailPage) closeCompose() {
	p.composing = false
	p.focusRating = false
	p.text.Blur()
}

// submit posts the review unless a submission is already in flight.
func (p *detailPage) submit() tea.Cmd {
	if p.submitting {
		return nil
	}
	text := strings.TrimSpace(p.text.Value())
	if text == "" {
		p.err = "Write something about the book first"
		return nil
	}
	p.submitting = true
	p.err = ""

	d, s, id := p.d, p.d.scope(), p.bookID
	in := library.ReviewInput{ReviewText: text, Rating: p.rating}
	return func() tea.Msg {
		_, err := d.api.CreateReview(d.ctx, id, in)
		return reviewPostedMsg{scoped: s, err: err}
	}
}

func (p *detailPage) cycleSelection() {
	candidates := p.deletable()
	if len(candidates) == 0 {
		p.selected = -1
		return
	}
	for _, i := range candidates {
		if i > p.selected {
			p.selected = i
			return
		}
	}
	p.selected = -1
}

func (p *detailPage) confirmDelete() tea.Cmd {
	if p.selected < 0 || p.selected >= len(p.reviews) {
		return nil
	}
	review := p.reviews[p.selected]
	if !p.canDelete(review) {
		return nil
	}
	s := p.d.scope()
	confirm := newConfirmModal(
		"Delete Review?",
		"Are you sure you want to delete this review? This action cannot be undone.",
		func() tea.Msg { return deleteReviewMsg{scoped: s, id: review.ID} },
	)
	return openModal(s, confirm)
}

func (p *detailPage) View(theme Theme, width, height int) string {
	styles, bg := pageStyles(theme)

	if p.loading && !p.loaded {
		return p.d.loading(styles, bg, "Loading book...")
	}
	if p.book == nil {
		return bg.Render(bookNotFoundText, styles.WarningText)
	}

	p.vp.Width = width
	p.vp.Height = max(height, 1)
	p.vp.SetContent(p.renderContent(theme, styles, bg, width))
	return p.vp.View()
}

func (p *detailPage) renderContent(theme Theme, styles Styles, bg BgStyle, width int) string {
	book := p.book
	rule := bg.Render(strings.Repeat("─", max(width, 1)), styles.FaintText)

	lines := []string{bg.Render(book.Title, styles.Text.Bold(true))}

	meta := []string{bg.Render("by "+book.Author, styles.MutedText)}
	if g := strings.TrimSpace(book.Genre); g != "" {
		meta = append(meta, bg.Render("["+g+"]", styles.InfoText))
	}
	if book.YearPublished != nil {
		meta = append(meta, bg.Render(fmt.Sprintf("%d", *book.YearPublished), styles.MutedText))
	}
	avg := 0.0
	if p.summary != nil {
		avg = p.summary.AverageRating
	}
	meta = append(meta, bg.Render(stars(int(math.Round(avg))), styles.WarningText)+bg.Space()+
		bg.Render(fmt.Sprintf("%.1f", avg), styles.MutedText))
	lines = append(lines, bg.Join(meta, "  "), rule)

	if p.summary != nil && strings.TrimSpace(p.summary.ReviewSummary) != "" {
		lines = append(lines,
			bg.Render("✦ AI Review Analysis", styles.InfoText.Bold(true)),
			p.d.markdown.Render(p.summary.ReviewSummary, width),
			"")
	}

	official := book.Summary
	if p.summary != nil && strings.TrimSpace(p.summary.Summary) != "" {
		official = p.summary.Summary
	}
	lines = append(lines, bg.Render("Official Summary", styles.Text.Bold(true)))
	if strings.TrimSpace(official) == "" {
		lines = append(lines, bg.Render("No summary available.", styles.FaintText))
	} else {
		lines = append(lines, p.d.markdown.Render(official, width))
	}
	lines = append(lines, rule, bg.Render("Reader Reviews", styles.Text.Bold(true)))
	if p.loading {
		lines = append(lines, p.d.loading(styles, bg, "Refreshing..."))
	}
	if p.reviewsErr != "" {
		lines = append(lines, renderAlert(styles, alertError, p.reviewsErr))
	}
	if p.err != "" {
		lines = append(lines, renderAlert(styles, alertError, p.err))
	}

	if _, reviewed := p.ownReview(); reviewed {
		lines = append(lines, renderAlert(styles, alertInfo, alreadyReviewedText), "")
	} else if p.composing {
		lines = append(lines, p.renderCompose(styles, bg, width)...)
	} else if p.canCompose() {
		lines = append(lines, bg.Render("Press w to add your review.", styles.FaintText), "")
	}

	if len(p.reviews) == 0 && p.reviewsKnown {
		lines = append(lines, bg.Render("No reviews yet.", styles.MutedText))
	}
	for i, r := range p.reviews {
		marker := "  "
		if i == p.selected {
			marker = "▸ "
		}
		header := bg.Render(marker, styles.AccentText) +
			bg.Render(stars(r.Rating), styles.WarningText) + bg.Space() +
			bg.Render("- "+r.AuthorEmail(), styles.MutedText)
		if p.canDelete(r) {
			header += bg.Spaces(2) + bg.Render("[d] delete", styles.FaintText)
		}
		lines = append(lines, header)
		lines = append(lines, indent(wrapText(r.ReviewText, max(width-4, 10)), 4), "")
	}

	return strings.Join(lines, "\n")
}

func (p *detailPage) renderCompose(styles Styles, bg BgStyle, width int) []string {
	ratingStyle := styles.WarningText
	label := styles.MutedText
	if p.focusRating {
		label = styles.AccentText.Bold(true)
	}
	p.text.SetWidth(max(width-2, 20))
	lines := []string{
		bg.Render("Add your review", styles.Text.Bold(true)),
		bg.Render("Rating ", label) + bg.Render(stars(p.rating), ratingStyle),
		p.text.View(),
	}
	if p.submitting {
		lines = append(lines, p.d.loading(styles, bg, "Submitting..."))
	} else {
		lines = append(lines, bg.Render("ctrl+s: Submit Review  esc: Cancel", styles.FaintText))
	}
	return append(lines, "")
}
