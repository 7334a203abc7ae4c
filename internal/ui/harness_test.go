package ui

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/session"
)

// fakeAPI records every call as "METHOD path" and serves canned responses.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	token    string
	loginErr error
	me       library.User
	meErr    error
	regErr   error

	books     []library.Book
	booksErr  error
	book      library.Book
	bookErr   error
	summary    library.BookSummary
	summaryErr error
	reviews    []library.Review
	reviewsErr error
	recs       []library.Book
	recsErr    error
	deleteErr  error

	reviewInputs []library.ReviewInput
	bookInputs   []library.BookInput

	// docs is served in order; the last entry repeats.
	docs      [][]library.Document
	docsCalls int

	users       []library.User
	userUpdates []library.UserUpdate

	chat    library.ChatResponse
	chatErr error
}

func (f *fakeAPI) record(format string, args ...any) {
	f.mu.Lock()
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	f.mu.Unlock()
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (library.TokenResponse, error) {
	f.record("POST /login/access-token")
	if f.loginErr != nil {
		return library.TokenResponse{}, f.loginErr
	}
	return library.TokenResponse{AccessToken: f.token, TokenType: "bearer"}, nil
}

func (f *fakeAPI) Register(_ context.Context, email, password string) (library.User, error) {
	f.record("POST /users/open")
	if f.regErr != nil {
		return library.User{}, f.regErr
	}
	return library.User{ID: 99, Email: email, IsActive: true}, nil
}

func (f *fakeAPI) Me(context.Context) (library.User, error) {
	f.record("GET /users/me")
	return f.me, f.meErr
}

func (f *fakeAPI) ListBooks(context.Context) ([]library.Book, error) {
	f.record("GET /books/")
	return f.books, f.booksErr
}

func (f *fakeAPI) GetBook(_ context.Context, id int64) (library.Book, error) {
	f.record("GET /books/%d", id)
	return f.book, f.bookErr
}

func (f *fakeAPI) CreateBook(_ context.Context, in library.BookInput) (library.Book, error) {
	f.record("POST /books/")
	f.mu.Lock()
	f.bookInputs = append(f.bookInputs, in)
	f.mu.Unlock()
	return library.Book{ID: 10, Title: in.Title, Author: in.Author}, nil
}

func (f *fakeAPI) UpdateBook(_ context.Context, id int64, in library.BookInput) (library.Book, error) {
	f.record("PUT /books/%d", id)
	f.mu.Lock()
	f.bookInputs = append(f.bookInputs, in)
	f.mu.Unlock()
	return library.Book{ID: id, Title: in.Title, Author: in.Author}, nil
}

func (f *fakeAPI) DeleteBook(_ context.Context, id int64) error {
	f.record("DELETE /books/%d", id)
	return f.deleteErr
}

func (f *fakeAPI) BookSummary(_ context.Context, id int64) (library.BookSummary, error) {
	f.record("GET /books/%d/summary", id)
	return f.summary, f.summaryErr
}

func (f *fakeAPI) Recommendations(context.Context) ([]library.Book, error) {
	f.record("GET /books/recommendations")
	return f.recs, f.recsErr
}

func (f *fakeAPI) ListReviews(_ context.Context, bookID int64) ([]library.Review, error) {
	f.record("GET /reviews/book/%d", bookID)
	if f.reviewsErr != nil {
		return nil, f.reviewsErr
	}
	return f.reviews, nil
}

func (f *fakeAPI) CreateReview(_ context.Context, bookID int64, in library.ReviewInput) (library.Review, error) {
	f.record("POST /reviews/book/%d", bookID)
	f.mu.Lock()
	f.reviewInputs = append(f.reviewInputs, in)
	f.mu.Unlock()
	return library.Review{ID: 1, BookID: bookID, ReviewText: in.ReviewText, Rating: in.Rating}, nil
}

func (f *fakeAPI) DeleteReview(_ context.Context, id int64) error {
	f.record("DELETE /reviews/%d", id)
	return f.deleteErr
}

func (f *fakeAPI) ListDocuments(context.Context) ([]library.Document, error) {
	f.record("GET /documents/")
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.docs) == 0 {
		return nil, nil
	}
	i := min(f.docsCalls, len(f.docs)-1)
	f.docsCalls++
	return f.docs[i], nil
}

func (f *fakeAPI) UploadDocument(_ context.Context, filename string, content io.Reader, bookID *int64) (library.Document, error) {
	f.record("POST /documents/upload %s", filename)
	if _, err := io.ReadAll(content); err != nil {
		return library.Document{}, err
	}
	return library.Document{ID: 50, Filename: filename, Status: library.DocumentUploaded, BookID: bookID}, nil
}

func (f *fakeAPI) IngestDocument(_ context.Context, id int64) error {
	f.record("POST /documents/%d/ingest", id)
	return nil
}

func (f *fakeAPI) DeleteDocument(_ context.Context, id int64) error {
	f.record("DELETE /documents/%d", id)
	return f.deleteErr
}

func (f *fakeAPI) Chat(_ context.Context, question string) (library.ChatResponse, error) {
	f.record("POST /documents/chat")
	return f.chat, f.chatErr
}

func (f *fakeAPI) GenerateSummary(_ context.Context, bookID int64) (library.GeneratedSummary, error) {
	f.record("POST /ai/generate-summary")
	return library.GeneratedSummary{Summary: "Generated."}, nil
}

func (f *fakeAPI) ListUsers(context.Context) ([]library.User, error) {
	f.record("GET /users/")
	return f.users, nil
}

func (f *fakeAPI) UpdateUser(_ context.Context, id int64, update library.UserUpdate) (library.User, error) {
	f.record("PUT /users/%d", id)
	f.mu.Lock()
	f.userUpdates = append(f.userUpdates, update)
	f.mu.Unlock()
	return library.User{ID: id}, nil
}

var _ library.API = (*fakeAPI)(nil)

// harness drives a Model synchronously: every command is executed inline
// and its message fed back until the queue drains.
type harness struct {
	t         *testing.T
	m         Model
	api       *fakeAPI
	store     *session.Store
	prefsPath string
	// ticks receives messages the model dispatches from background
	// goroutines.
	ticks chan tea.Msg
}

const harnessStepLimit = 200

func newHarness(t *testing.T, api *fakeAPI, store *session.Store) *harness {
	t.Helper()
	if store == nil {
		store = session.NewStore(nil, nil)
	}
	h := &harness{
		t:         t,
		api:       api,
		store:     store,
		prefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		ticks:     make(chan tea.Msg, 64),
	}
	h.m = New(Options{
		API:          api,
		Session:      store,
		PrefsPath:    h.prefsPath,
		PollInterval: 10 * time.Millisecond,
	})
	h.m.dispatch.set(func(msg tea.Msg) {
		select {
		case h.ticks <- msg:
		default:
		}
	})
	t.Cleanup(func() { h.m.closePage() })

	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	h.run(h.m.Init())
	return h
}

func signedIn(user library.User) *session.Store {
	store := session.NewStore(nil, nil)
	store.Login("token")
	store.SetUser(user)
	return store
}

func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	queue := []tea.Msg{msg}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > harnessStepLimit {
			h.t.Fatalf("message loop did not settle after %d steps", harnessStepLimit)
		}
		next := queue[0]
		queue = queue[1:]

		switch next := next.(type) {
		case nil, spinner.TickMsg, tea.QuitMsg:
			continue
		case tea.BatchMsg:
			for _, cmd := range next {
				if cmd != nil {
					queue = append(queue, cmd())
				}
			}
			continue
		}

		model, cmd := h.m.Update(next)
		h.m = model.(Model)
		if cmd != nil {
			queue = append(queue, cmd())
		}
	}
}

func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	if cmd != nil {
		h.send(cmd())
	}
}

func (h *harness) key(k string) {
	h.t.Helper()
	h.send(keyMsg(k))
}

func (h *harness) typeText(s string) {
	h.t.Helper()
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) navigate(path string) {
	h.t.Helper()
	h.run(navigateTo(path))
}

func (h *harness) view() string {
	return ansi.Strip(h.m.View())
}

func (h *harness) assertView(want string) {
	h.t.Helper()
	if v := h.view(); !strings.Contains(v, want) {
		h.t.Fatalf("view does not contain %q:\n%s", want, v)
	}
}

func (h *harness) assertNoView(unwanted string) {
	h.t.Helper()
	if v := h.view(); strings.Contains(v, unwanted) {
		h.t.Fatalf("view unexpectedly contains %q:\n%s", unwanted, v)
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	case "ctrl+p":
		return tea.KeyMsg{Type: tea.KeyCtrlP}
	case "ctrl+g":
		return tea.KeyMsg{Type: tea.KeyCtrlG}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}
