package library

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

type recordedRequest struct {
	Method      string
	Path        string
	Auth        string
	UserAgent   string
	RequestID   string
	ContentType string
	Body        []byte
}

type recorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (r *recorder) add(req *http.Request) recordedRequest {
	body, _ := io.ReadAll(req.Body)
	rec := recordedRequest{
		Method:      req.Method,
		Path:        req.URL.Path,
		Auth:        req.Header.Get("Authorization"),
		UserAgent:   req.Header.Get("User-Agent"),
		RequestID:   req.Header.Get("X-Request-ID"),
		ContentType: req.Header.Get("Content-Type"),
		Body:        body,
	}
	r.mu.Lock()
	r.requests = append(r.requests, rec)
	r.mu.Unlock()
	return rec
}

func (r *recorder) last() recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requests[len(r.requests)-1]
}

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c, err := NewClient(server.URL+"/api/v1", staticToken(token), nil)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != DefaultBaseURL {
		t.Fatalf("default url = %q, want %q", u.String(), DefaultBaseURL)
	}

	u, err = parseBaseURL("example.com:1234/api/v1/?x=1#frag")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Path != "/api/v1" || u.RawQuery != "" || u.Fragment != "" {
		t.Fatalf("url not normalized: %q", u.String())
	}

	if _, err := parseBaseURL("http://"); err == nil {
		t.Fatalf("parseBaseURL without host returned nil error")
	}
}

func TestClient_LoginPostsFormCredentials(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		writeJSON(w, http.StatusOK, TokenResponse{AccessToken: "fake-token", TokenType: "bearer"})
	}, "")

	tok, err := c.Login(context.Background(), "test@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "fake-token", tok.AccessToken)

	got := rec.last()
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/v1/login/access-token", got.Path)
	assert.Equal(t, "application/x-www-form-urlencoded", got.ContentType)
	assert.Equal(t, "password=password123&username=test%40example.com", string(got.Body))
	assert.Empty(t, got.Auth)
}

func TestClient_LoginFailureCarriesDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Incorrect email or password"})
	}, "")

	_, err := c.Login(context.Background(), "x@y.z", "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Incorrect email or password", apiErr.Error())
}

func TestClient_AttachesHeaders(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		writeJSON(w, http.StatusOK, []Book{})
	}, "abc")

	_, err := c.ListBooks(context.Background())
	require.NoError(t, err)
	first := rec.last()
	_, err = c.ListBooks(context.Background())
	require.NoError(t, err)
	second := rec.last()

	assert.Equal(t, "Bearer abc", first.Auth)
	assert.True(t, strings.HasPrefix(first.UserAgent, "shelf/"), "User-Agent = %q", first.UserAgent)
	assert.NotEmpty(t, first.RequestID)
	assert.NotEqual(t, first.RequestID, second.RequestID)
}

func TestClient_EndpointPaths(t *testing.T) {
	rec := &recorder{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rec.add(r)
		switch {
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		case strings.HasSuffix(r.URL.Path, "/summary"):
			writeJSON(w, http.StatusOK, BookSummary{Summary: "s", ReviewSummary: "rs", AverageRating: 4.5})
		case strings.HasSuffix(r.URL.Path, "/ingest"):
			writeJSON(w, http.StatusOK, map[string]string{"message": "started"})
		case strings.HasSuffix(r.URL.Path, "/chat"):
			writeJSON(w, http.StatusOK, ChatResponse{Answer: "42", Sources: []string{"a.pdf", "b.pdf"}})
		case strings.HasSuffix(r.URL.Path, "/generate-summary"):
			writeJSON(w, http.StatusOK, GeneratedSummary{Error: "No ingested document found"})
		case strings.HasPrefix(r.URL.Path, "/api/v1/reviews/book/") && r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, []Review{{ID: 1, Rating: 5}})
		case strings.HasPrefix(r.URL.Path, "/api/v1/reviews/book/"):
			writeJSON(w, http.StatusOK, Review{ID: 2, Rating: 5})
		case r.URL.Path == "/api/v1/documents/" || r.URL.Path == "/api/v1/books/" && r.Method == http.MethodGet ||
			r.URL.Path == "/api/v1/books/recommendations" || r.URL.Path == "/api/v1/users/":
			_, _ = w.Write([]byte(`[]`))
		case strings.HasPrefix(r.URL.Path, "/api/v1/users/"):
			writeJSON(w, http.StatusOK, User{ID: 3, Email: "u@x"})
		default:
			writeJSON(w, http.StatusOK, Book{ID: 1, Title: "Dune"})
		}
	}, "tok")
	ctx := context.Background()
	year := 1965
	active := false

	calls := []struct {
		name   string
		call   func() error
		method string
		path   string
		body   string
	}{
		{"list books", func() error { _, err := c.ListBooks(ctx); return err }, "GET", "/api/v1/books/", ""},
		{"get book", func() error { _, err := c.GetBook(ctx, 1); return err }, "GET", "/api/v1/books/1", ""},
		{"create book", func() error {
			_, err := c.CreateBook(ctx, BookInput{Title: "Dune", Author: "Herbert", YearPublished: &year})
			return err
		}, "POST", "/api/v1/books/", `{"title":"Dune","author":"Herbert","genre":"","year_published":1965,"summary":""}`},
		{"update book", func() error { _, err := c.UpdateBook(ctx, 7, BookInput{Title: "T", Author: "A"}); return err },
			"PUT", "/api/v1/books/7", `{"title":"T","author":"A","genre":"","year_published":null,"summary":""}`},
		{"delete book", func() error { return c.DeleteBook(ctx, 1) }, "DELETE", "/api/v1/books/1", ""},
		{"summary", func() error { _, err := c.BookSummary(ctx, 1); return err }, "GET", "/api/v1/books/1/summary", ""},
		{"recommendations", func() error { _, err := c.Recommendations(ctx); return err }, "GET", "/api/v1/books/recommendations", ""},
		{"list reviews", func() error { _, err := c.ListReviews(ctx, 1); return err }, "GET", "/api/v1/reviews/book/1", ""},
		{"create review", func() error {
			_, err := c.CreateReview(ctx, 1, ReviewInput{ReviewText: "Awesome book!", Rating: 5})
			return err
		}, "POST", "/api/v1/reviews/book/1", `{"review_text":"Awesome book!","rating":5}`},
		{"delete review", func() error { return c.DeleteReview(ctx, 9) }, "DELETE", "/api/v1/reviews/9", ""},
		{"list documents", func() error { _, err := c.ListDocuments(ctx); return err }, "GET", "/api/v1/documents/", ""},
		{"ingest", func() error { return c.IngestDocument(ctx, 4) }, "POST", "/api/v1/documents/4/ingest", ""},
		{"delete document", func() error { return c.DeleteDocument(ctx, 4) }, "DELETE", "/api/v1/documents/4", ""},
		{"chat", func() error { _, err := c.Chat(ctx, "why?"); return err }, "POST", "/api/v1/documents/chat", `{"question":"why?"}`},
		{"generate summary", func() error { _, err := c.GenerateSummary(ctx, 5); return err }, "POST", "/api/v1/ai/generate-summary", `{"book_id":5}`},
		{"list users", func() error { _, err := c.ListUsers(ctx); return err }, "GET", "/api/v1/users/", ""},
		{"update user", func() error { _, err := c.UpdateUser(ctx, 3, UserUpdate{IsActive: &active}); return err },
			"PUT", "/api/v1/users/3", `{"is_active":false}`},
		{"me", func() error { _, err := c.Me(ctx); return err }, "GET", "/api/v1/users/me", ""},
	}

	for _, tc := range calls {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, tc.call())
			got := rec.last()
			assert.Equal(t, tc.method, got.Method)
			assert.Equal(t, tc.path, got.Path)
			if tc.body != "" {
				assert.JSONEq(t, tc.body, string(got.Body))
				assert.Equal(t, "application/json", got.ContentType)
			}
		})
	}
}

func TestClient_DecodesPayloads(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/documents/chat":
			writeJSON(w, http.StatusOK, ChatResponse{Answer: "42", Sources: []string{"a.pdf", "b.pdf"}})
		case "/api/v1/ai/generate-summary":
			writeJSON(w, http.StatusOK, GeneratedSummary{Error: "No ingested document found"})
		case "/api/v1/books/1/summary":
			writeJSON(w, http.StatusOK, BookSummary{Summary: "s", ReviewSummary: "rs", AverageRating: 4.5})
		default:
			http.NotFound(w, r)
		}
	}, "")
	ctx := context.Background()

	chat, err := c.Chat(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, chat.Sources)

	gen, err := c.GenerateSummary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "No ingested document found", gen.Error)
	assert.Empty(t, gen.Summary)

	summary, err := c.BookSummary(ctx, 1)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, summary.AverageRating, 0.001)
}

func TestClient_UploadDocumentMultipart(t *testing.T) {
	var gotName, gotContent, gotBookID string
	var hasBookID bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/documents/upload" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		gotName = header.Filename
		gotContent = string(data)
		_, hasBookID = r.MultipartForm.Value["book_id"]
		gotBookID = r.FormValue("book_id")
		writeJSON(w, http.StatusOK, Document{ID: 11, Filename: header.Filename, Status: DocumentUploaded})
	}, "tok")

	bookID := int64(3)
	doc, err := c.UploadDocument(context.Background(), "dune.txt", strings.NewReader("spice"), &bookID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), doc.ID)
	assert.Equal(t, "dune.txt", gotName)
	assert.Equal(t, "spice", gotContent)
	assert.True(t, hasBookID)
	assert.Equal(t, "3", gotBookID)

	_, err = c.UploadDocument(context.Background(), "plain.txt", strings.NewReader("x"), nil)
	require.NoError(t, err)
	assert.False(t, hasBookID, "book_id sent without a linked book")

	_, err = c.UploadDocument(context.Background(), "nil.txt", nil, nil)
	require.Error(t, err)
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/books/1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		case "/api/v1/books/":
			http.Error(w, "nope", http.StatusInternalServerError)
		case "/api/v1/books/2":
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Book not found"})
		case "/api/v1/users/open":
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"detail": []map[string]any{{"loc": []string{"body", "email"}, "msg": "value is not a valid email address", "type": "value_error"}},
			})
		default:
			http.NotFound(w, r)
		}
	}, "")
	ctx := context.Background()

	_, err := c.GetBook(ctx, 1)
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("GetBook error = %v, want decode response error", err)
	}

	_, err = c.ListBooks(ctx)
	if err == nil || err.Error() != "request failed with status 500" {
		t.Fatalf("ListBooks error = %v, want generic status 500 error", err)
	}
	if got := Message(err, "Failed to load books"); got != "Failed to load books" {
		t.Fatalf("Message = %q, want fallback", got)
	}

	_, err = c.GetBook(ctx, 2)
	if !IsNotFound(err) {
		t.Fatalf("GetBook(2) error = %v, want not found", err)
	}
	if got := Message(err, "fallback"); got != "Book not found" {
		t.Fatalf("Message = %q, want Book not found", got)
	}

	_, err = c.Register(ctx, "bad", "pw")
	if got := Message(err, "fallback"); got != "value is not a valid email address" {
		t.Fatalf("Message = %q, want validation message", got)
	}
}

func TestClient_TransportErrorIsWrapped(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	c, err := NewClient(addr, nil, nil)
	require.NoError(t, err)
	_, err = c.ListBooks(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execute request")
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Equal(t, "offline", Message(err, "offline"))
}

func TestClient_HonorsContextCancellation(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, "")
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.ListDocuments(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
