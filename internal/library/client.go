package library

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// API defines every call the client makes against the library backend.
// This interface is implemented by *Client and can be faked in tests.
type API interface {
	Login(ctx context.Context, email, password string) (TokenResponse, error)
	Register(ctx context.Context, email, password string) (User, error)
	Me(ctx context.Context) (User, error)

	ListBooks(ctx context.Context) ([]Book, error)
	GetBook(ctx context.Context, id int64) (Book, error)
	CreateBook(ctx context.Context, in BookInput) (Book, error)
	UpdateBook(ctx context.Context, id int64, in BookInput) (Book, error)
	DeleteBook(ctx context.Context, id int64) error
	BookSummary(ctx context.Context, id int64) (BookSummary, error)
	Recommendations(ctx context.Context) ([]Book, error)

	ListReviews(ctx context.Context, bookID int64) ([]Review, error)
	CreateReview(ctx context.Context, bookID int64, in ReviewInput) (Review, error)
	DeleteReview(ctx context.Context, id int64) error

	ListDocuments(ctx context.Context) ([]Document, error)
	UploadDocument(ctx context.Context, filename string, content io.Reader, bookID *int64) (Document, error)
	IngestDocument(ctx context.Context, id int64) error
	DeleteDocument(ctx context.Context, id int64) error
	Chat(ctx context.Context, question string) (ChatResponse, error)
	GenerateSummary(ctx context.Context, bookID int64) (GeneratedSummary, error)

	ListUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, id int64, update UserUpdate) (User, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// TokenSource yields the bearer token for outgoing requests. An empty token
// means the request is sent unauthenticated.
type TokenSource interface {
	Token() string
}

// Client talks to the library HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	tokens    TokenSource
	logger    *zap.Logger
}

const (
	// DefaultBaseURL is used when no api_url is configured.
	DefaultBaseURL = "http://127.0.0.1:8000/api/v1"
	// Version is reported in the User-Agent header.
	Version = "0.1"

	requestIDHeader = "X-Request-ID"
)

// NewClient builds a Client rooted at baseURL. tokens may be nil for
// unauthenticated use such as registration.
func NewClient(baseURL string, tokens TokenSource, logger *zap.Logger) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{},
		userAgent: "shelf/" + Version,
		tokens:    tokens,
		logger:    logger,
	}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)
	var payload TokenResponse
	err := c.send(ctx, http.MethodPost, "login/access-token",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", &payload)
	if err != nil {
		return TokenResponse{}, err
	}
	if payload.AccessToken == "" {
		return TokenResponse{}, fmt.Errorf("login: empty access token")
	}
	return payload, nil
}

// Register creates an account through the open signup endpoint.
func (c *Client) Register(ctx context.Context, email, password string) (User, error) {
	var user User
	err := c.doJSON(ctx, http.MethodPost, "users/open", Registration{Email: email, Password: password}, &user)
	return user, err
}

// Me returns the profile of the token holder.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	err := c.doJSON(ctx, http.MethodGet, "users/me", nil, &user)
	return user, err
}

// ListBooks fetches the full catalog.
func (c *Client) ListBooks(ctx context.Context) ([]Book, error) {
	var books []Book
	if err := c.doJSON(ctx, http.MethodGet, "books/", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// GetBook fetches one book.
func (c *Client) GetBook(ctx context.Context, id int64) (Book, error) {
	var book Book
	err := c.doJSON(ctx, http.MethodGet, "books/"+itoa(id), nil, &book)
	return book, err
}

// CreateBook posts a new catalog entry.
func (c *Client) CreateBook(ctx context.Context, in BookInput) (Book, error) {
	var book Book
	err := c.doJSON(ctx, http.MethodPost, "books/", in, &book)
	return book, err
}

// UpdateBook replaces the editable fields of a book.
func (c *Client) UpdateBook(ctx context.Context, id int64, in BookInput) (Book, error) {
	var book Book
	err := c.doJSON(ctx, http.MethodPut, "books/"+itoa(id), in, &book)
	return book, err
}

// DeleteBook removes a book. Reviews and documents cascade server-side.
func (c *Client) DeleteBook(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "books/"+itoa(id), nil, nil)
}

// BookSummary fetches the AI summary and aggregate rating of a book.
func (c *Client) BookSummary(ctx context.Context, id int64) (BookSummary, error) {
	var summary BookSummary
	err := c.doJSON(ctx, http.MethodGet, "books/"+itoa(id)+"/summary", nil, &summary)
	return summary, err
}

// Recommendations fetches the personalized recommendation list.
func (c *Client) Recommendations(ctx context.Context) ([]Book, error) {
	var books []Book
	if err := c.doJSON(ctx, http.MethodGet, "books/recommendations", nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// ListReviews fetches every review of a book.
func (c *Client) ListReviews(ctx context.Context, bookID int64) ([]Review, error) {
	var reviews []Review
	if err := c.doJSON(ctx, http.MethodGet, "reviews/book/"+itoa(bookID), nil, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// CreateReview posts the current user's review of a book.
func (c *Client) CreateReview(ctx context.Context, bookID int64, in ReviewInput) (Review, error) {
	var review Review
	err := c.doJSON(ctx, http.MethodPost, "reviews/book/"+itoa(bookID), in, &review)
	return review, err
}

// DeleteReview removes a review.
func (c *Client) DeleteReview(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "reviews/"+itoa(id), nil, nil)
}

// ListDocuments fetches all uploaded documents.
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	var docs []Document
	if err := c.doJSON(ctx, http.MethodGet, "documents/", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// UploadDocument sends one file as multipart form data, optionally linked to
// a book.
func (c *Client) UploadDocument(ctx context.Context, filename string, content io.Reader, bookID *int64) (Document, error) {
	if content == nil {
		return Document{}, fmt.Errorf("upload document: content is nil")
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return Document{}, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return Document{}, fmt.Errorf("copy file: %w", err)
	}
	if bookID != nil {
		if err := writer.WriteField("book_id", itoa(*bookID)); err != nil {
			return Document{}, fmt.Errorf("write book_id: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return Document{}, fmt.Errorf("close writer: %w", err)
	}

	var doc Document
	if err := c.send(ctx, http.MethodPost, "documents/upload", body, writer.FormDataContentType(), &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// IngestDocument asks the server to start ingesting a document.
func (c *Client) IngestDocument(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodPost, "documents/"+itoa(id)+"/ingest", nil, nil)
}

// DeleteDocument removes an uploaded document.
func (c *Client) DeleteDocument(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "documents/"+itoa(id), nil, nil)
}

// Chat asks a question over the ingested documents.
func (c *Client) Chat(ctx context.Context, question string) (ChatResponse, error) {
	var resp ChatResponse
	err := c.doJSON(ctx, http.MethodPost, "documents/chat", ChatQuery{Question: question}, &resp)
	return resp, err
}

// GenerateSummary requests an AI summary for a book from its ingested
// document. A soft failure is reported in the result's Error field.
func (c *Client) GenerateSummary(ctx context.Context, bookID int64) (GeneratedSummary, error) {
	var resp GeneratedSummary
	req := struct {
		BookID int64 `json:"book_id"`
	}{BookID: bookID}
	err := c.doJSON(ctx, http.MethodPost, "ai/generate-summary", req, &resp)
	return resp, err
}

// ListUsers fetches all accounts. Superuser only.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.doJSON(ctx, http.MethodGet, "users/", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUser applies flag changes to an account. Superuser only.
func (c *Client) UpdateUser(ctx context.Context, id int64, update UserUpdate) (User, error) {
	var user User
	err := c.doJSON(ctx, http.MethodPut, "users/"+itoa(id), update, &user)
	return user, err
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, dest any) error {
	if in == nil {
		return c.send(ctx, method, path, nil, "", dest)
	}
	buf, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.send(ctx, method, path, bytes.NewReader(buf), "application/json", dest)
}

func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	reqURL := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.addAuthHeader(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("api request failed",
			zap.String("method", method),
			zap.String("path", reqURL.Path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", reqURL.Path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &APIError{Status: resp.StatusCode, Detail: parseDetail(raw), Path: reqURL.Path}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) addAuthHeader(req *http.Request) {
	if c.tokens == nil {
		return
	}
	if token := strings.TrimSpace(c.tokens.Token()); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
