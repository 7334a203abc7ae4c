package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/config"
	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/poll"
)

type documentsLoadedMsg struct {
	scoped
	docs []library.Document
	err  error
}

// pollTickMsg is dispatched by the page's poll loop. gen is the loop
// generation that fired it.
type pollTickMsg struct {
	scoped
	gen uint64
}

type documentUploadedMsg struct {
	scoped
	doc library.Document
	err error
}

type documentIngestedMsg struct {
	scoped
	id  int64
	err error
}

type deleteDocumentMsg struct {
	scoped
	id int64
}

type documentDeletedMsg struct {
	scoped
	id  int64
	err error
}

// documentsPage lists uploaded documents, uploads new ones and requests
// ingestion. While any document is processing the list is refetched on a
// fixed interval by a poll.Loop owned by the page.
type documentsPage struct {
	d deps

	docs    []library.Document
	loaded  bool
	loading bool
	err     string
	notice  string
	cursor  listCursor

	// ingesting holds the ids with an ingest request in flight.
	ingesting map[int64]bool
	uploading bool

	uploadOpen bool
	path       textinput.Model
	bookID     textinput.Model
	fields     fieldSet

	loop   *poll.Loop
	closed bool
}

func newDocumentsPage(d deps) *documentsPage {
	p := &documentsPage{
		d:         d,
		ingesting: make(map[int64]bool),
		path:      newTextInput("~/Documents/book.pdf", 4096),
		bookID:    newTextInput("optional", 19),
	}
	p.fields = fieldSet{fields: []field{
		{label: "File", input: &p.path, required: true},
		{label: "Link to book id", input: &p.bookID},
	}, focus: -1}

	s := d.scope()
	dispatch := d.dispatch
	p.loop = poll.New(d.pollInterval, func(gen uint64) {
		dispatch.Send(pollTickMsg{scoped: s, gen: gen})
	})
	return p
}

func (p *documentsPage) Init() tea.Cmd {
	return p.fetch()
}

// Close stops the poll loop. No tick is delivered after it returns.
func (p *documentsPage) Close() {
	p.closed = true
	p.loop.Stop()
}

func (p *documentsPage) Title() string { return "Document Management (RAG)" }

func (p *documentsPage) Capturing() bool { return p.uploadOpen && p.fields.capturing() }

func (p *documentsPage) Hints() []hint {
	if p.uploadOpen {
		return []hint{{"enter", "Upload"}, {"tab", "Next field"}, {"esc", "Cancel"}}
	}
	hints := []hint{{"u", "Upload"}}
	if doc, ok := p.selected(); ok && doc.Ingestible() && !p.ingesting[doc.ID] {
		hints = append(hints, hint{"i", "Ingest"})
	}
	return append(hints, hint{"d", "Delete"}, hint{"j/k", "Navigate"}, hint{"r", "Refresh"})
}

func (p *documentsPage) selected() (library.Document, bool) {
	if p.cursor.index < 0 || p.cursor.index >= len(p.docs) {
		return library.Document{}, false
	}
	return p.docs[p.cursor.index], true
}

func (p *documentsPage) fetch() tea.Cmd {
	p.loading = true
	d, s := p.d, p.d.scope()
	return func() tea.Msg {
		docs, err := d.api.ListDocuments(d.ctx)
		return documentsLoadedMsg{scoped: s, docs: docs, err: err}
	}
}

func (p *documentsPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case documentsLoadedMsg:
		p.loading = false
		if msg.err != nil {
			p.d.warn("fetch documents failed", msg.err)
			p.err = library.Message(msg.err, "Failed to load documents")
		} else {
			p.loaded = true
			p.docs = msg.docs
			p.cursor.clamp(len(p.docs))
		}
		if !p.closed {
			p.loop.Reset(library.AnyProcessing(p.docs))
		}
		return p, nil

	case pollTickMsg:
		if p.closed || !p.loop.Active() || p.loading || msg.gen != p.loop.Generation() {
			return p, nil
		}
		p.d.logger.Debug("polling documents")
		return p, p.fetch()

	case documentUploadedMsg:
		p.uploading = false
		if msg.err != nil {
			p.d.warn("upload failed", msg.err)
			p.err = library.Message(msg.err, "Upload failed")
		} else {
			p.err = ""
			p.notice = fmt.Sprintf("Uploaded %s", msg.doc.Filename)
		}
		return p, p.fetch()

	case documentIngestedMsg:
		delete(p.ingesting, msg.id)
		if msg.err != nil {
			p.d.warn("ingestion failed", msg.err, zap.Int64("document_id", msg.id))
			p.err = library.Message(msg.err, "Ingestion failed")
			return p, nil
		}
		p.err = ""
		return p, p.fetch()

	case deleteDocumentMsg:
		d, s, id := p.d, p.d.scope(), msg.id
		return p, func() tea.Msg {
			return documentDeletedMsg{scoped: s, id: id, err: d.api.DeleteDocument(d.ctx, id)}
		}

	case documentDeletedMsg:
		if msg.err != nil {
			p.d.warn("delete document failed", msg.err, zap.Int64("document_id", msg.id))
			p.err = library.Message(msg.err, "Failed to delete document")
			return p, nil
		}
		p.err = ""
		return p, p.fetch()

	case tea.KeyMsg:
		if p.uploadOpen {
			return p, p.handleUploadKey(msg)
		}
		return p, p.handleKey(msg)
	}
	return p, nil
}

func (p *documentsPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	keys := p.d.keys
	if p.cursor.handleKey(msg, keys, len(p.docs)) {
		return nil
	}
	switch {
	case key.Matches(msg, keys.Upload):
		if p.uploading {
			return nil
		}
		p.uploadOpen = true
		p.notice = ""
		return p.fields.focusIndex(0)
	case key.Matches(msg, keys.Refresh):
		return p.fetch()
	}

	doc, ok := p.selected()
	if !ok {
		return nil
	}
	switch {
	case key.Matches(msg, keys.Ingest):
		return p.ingest(doc)
	case key.Matches(msg, keys.Delete):
		s := p.d.scope()
		confirm := newConfirmModal(
			"Delete Document?",
			fmt.Sprintf("Are you sure you want to delete %q? This action cannot be undone.", doc.Filename),
			func() tea.Msg { return deleteDocumentMsg{scoped: s, id: doc.ID} },
		)
		return openModal(s, confirm)
	}
	return nil
}

func (p *documentsPage) handleUploadKey(msg tea.KeyMsg) tea.Cmd {
	keys := p.d.keys
	switch {
	case key.Matches(msg, keys.Escape):
		p.uploadOpen = false
		p.fields.blur()
		return nil
	case key.Matches(msg, keys.Tab):
		return p.fields.next()
	case key.Matches(msg, keys.ShiftTab):
		return p.fields.prev()
	case key.Matches(msg, keys.Confirm), key.Matches(msg, keys.Save):
		return p.upload()
	}
	return p.fields.update(msg)
}

// ingest requests ingestion for doc unless one is already in flight for it.
func (p *documentsPage) ingest(doc library.Document) tea.Cmd {
	if !doc.Ingestible() || p.ingesting[doc.ID] {
		return nil
	}
	p.ingesting[doc.ID] = true
	d, s, id := p.d, p.d.scope(), doc.ID
	return func() tea.Msg {
		return documentIngestedMsg{scoped: s, id: id, err: d.api.IngestDocument(d.ctx, id)}
	}
}

func (p *documentsPage) upload() tea.Cmd {
	if p.uploading {
		return nil
	}
	path, err := config.ExpandPath(p.path.Value(), "")
	if err != nil {
		p.err = "Choose a file to upload"
		return nil
	}
	var bookID *int64
	if raw := strings.TrimSpace(p.bookID.Value()); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			p.err = "Book id must be a positive number"
			return nil
		}
		bookID = &id
	}

	p.uploading = true
	p.uploadOpen = false
	p.err = ""
	p.fields.blur()
	p.path.Reset()
	p.bookID.Reset()

	d, s := p.d, p.d.scope()
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return documentUploadedMsg{scoped: s, err: fmt.Errorf("open file: %w", err)}
		}
		defer func() { _ = f.Close() }()
		doc, err := d.api.UploadDocument(d.ctx, filepath.Base(path), f, bookID)
		return documentUploadedMsg{scoped: s, doc: doc, err: err}
	}
}

func (p *documentsPage) View(theme Theme, width, height int) string {
	styles, bg := pageStyles(theme)

	var lines []string
	switch {
	case p.uploadOpen:
		lines = append(lines, bg.Render("Upload Document", styles.Text.Bold(true)))
		lines = append(lines, p.fields.render(styles, bg, min(width, 80))...)
	case p.uploading:
		lines = append(lines, p.d.loading(styles, bg, "Uploading..."), "")
	default:
		lines = append(lines, bg.Render("u", styles.AccentText)+bg.Render(": Upload Document", styles.MutedText), "")
	}
	if p.err != "" {
		lines = append(lines, renderAlert(styles, alertError, p.err))
	}
	if p.notice != "" {
		lines = append(lines, renderAlert(styles, alertSuccess, p.notice))
	}
	if p.loop.Active() {
		lines = append(lines, bg.Render(fmt.Sprintf("Processing... refreshing every %s", p.d.pollInterval), styles.InfoText))
	}

	if !p.loaded {
		if p.loading {
			lines = append(lines, p.d.loading(styles, bg, "Loading documents..."))
		}
		return strings.Join(lines, "\n")
	}
	if len(p.docs) == 0 {
		lines = append(lines, bg.Render("No documents uploaded yet.", styles.MutedText))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, "")
	start, end := p.cursor.window(len(p.docs), max((height-len(lines))/3, 1))
	for i := start; i < end; i++ {
		lines = append(lines, p.renderRow(styles, bg, p.docs[i], i == p.cursor.index, width)...)
	}
	return strings.Join(lines, "\n")
}

func (p *documentsPage) renderRow(styles Styles, bg BgStyle, doc library.Document, selected bool, width int) []string {
	marker := "  "
	nameStyle := styles.Text
	if selected {
		marker = "▸ "
		nameStyle = styles.AccentText.Bold(true)
	}
	status := string(doc.Status)
	badge := styles.StatusStyle(status).Render(status)

	first := bg.Render(marker, styles.AccentText) +
		bg.Render(truncateMiddle(doc.Filename, max(width-20, 10)), nameStyle) +
		bg.Spaces(2) + badge
	switch {
	case p.ingesting[doc.ID]:
		first += bg.Spaces(2) + p.d.loading(styles, bg, "ingesting")
	case doc.Ingestible():
		first += bg.Spaces(2) + bg.Render("[i] ingest", styles.FaintText)
	}

	uploaded := "unknown"
	if t := doc.ParsedUploadDate(); !t.IsZero() {
		uploaded = t.Local().Format("2006-01-02 15:04")
	}
	meta := "Uploaded: " + uploaded
	if doc.BookID != nil {
		meta += fmt.Sprintf(" · book #%d", *doc.BookID)
	}
	return []string{first, bg.Spaces(2) + bg.Render(meta, styles.MutedText), ""}
}
