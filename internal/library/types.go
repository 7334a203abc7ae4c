package library

import (
	"strings"
	"time"
)

// apiTimestampLayout is the naive ISO form the backend emits for datetimes
// stored without a zone.
const apiTimestampLayout = "2006-01-02T15:04:05.999999"

// TokenResponse mirrors the payload returned by /login/access-token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User describes an account as returned by /users/ and /users/me.
type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Registration is the payload for /users/open.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdate carries the admin flag changes for PUT /users/{id}. Nil fields
// are omitted so each toggle sends only the field it negates.
type UserUpdate struct {
	IsActive    *bool `json:"is_active,omitempty"`
	IsSuperuser *bool `json:"is_superuser,omitempty"`
}

// Book is a catalog entry.
type Book struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Genre         string `json:"genre"`
	YearPublished *int   `json:"year_published"`
	Summary       string `json:"summary"`
}

// BookInput is the full record posted on create and put on edit.
type BookInput struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Genre         string `json:"genre"`
	YearPublished *int   `json:"year_published"`
	Summary       string `json:"summary"`
}

// Input returns the editable fields of b.
func (b Book) Input() BookInput {
	return BookInput{
		Title:         b.Title,
		Author:        b.Author,
		Genre:         b.Genre,
		YearPublished: b.YearPublished,
		Summary:       b.Summary,
	}
}

// BookSummary is the AI-derived view of a book, recomputed server-side
// whenever its reviews change.
type BookSummary struct {
	Summary       string  `json:"summary"`
	ReviewSummary string  `json:"review_summary"`
	AverageRating float64 `json:"average_rating"`
}

// ReviewAuthor is the nested user object attached to reviews.
type ReviewAuthor struct {
	Email string `json:"email"`
}

// Review is a single reader review of a book.
type Review struct {
	ID         int64         `json:"id"`
	BookID     int64         `json:"book_id"`
	UserID     int64         `json:"user_id"`
	ReviewText string        `json:"review_text"`
	Rating     int           `json:"rating"`
	User       *ReviewAuthor `json:"user,omitempty"`
}

// AuthorEmail returns the reviewer email or a placeholder when the backend
// did not embed the user.
func (r Review) AuthorEmail() string {
	if r.User == nil || strings.TrimSpace(r.User.Email) == "" {
		return "Unknown User"
	}
	return r.User.Email
}

// ReviewInput is the payload for POST /reviews/book/{id}.
type ReviewInput struct {
	ReviewText string `json:"review_text"`
	Rating     int    `json:"rating"`
}

// Rating bounds enforced by the backend.
const (
	MinRating = 1
	MaxRating = 5
)

// DocumentStatus is the server-owned ingestion state of a document.
type DocumentStatus string

const (
	DocumentUploaded   DocumentStatus = "uploaded"
	DocumentProcessing DocumentStatus = "processing"
	DocumentReady      DocumentStatus = "ready"
	DocumentFailed     DocumentStatus = "failed"
)

// Document is an uploaded file available for ingestion.
type Document struct {
	ID         int64          `json:"id"`
	Filename   string         `json:"filename"`
	UploadDate string         `json:"upload_date"`
	Status     DocumentStatus `json:"status"`
	BookID     *int64         `json:"book_id,omitempty"`
}

// ParsedUploadDate returns the upload timestamp as time.Time when possible.
func (d Document) ParsedUploadDate() time.Time {
	return parseTime(d.UploadDate)
}

// Ingestible reports whether ingestion may be requested for the document.
func (d Document) Ingestible() bool {
	return d.Status == DocumentUploaded
}

// AnyProcessing reports whether at least one document is still being ingested.
func AnyProcessing(docs []Document) bool {
	for _, doc := range docs {
		if doc.Status == DocumentProcessing {
			return true
		}
	}
	return false
}

// ChatQuery is the payload for /documents/chat.
type ChatQuery struct {
	Question string `json:"question"`
}

// ChatResponse is the answer to a chat question with its ordered sources.
type ChatResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// GeneratedSummary is returned by /ai/generate-summary. Error carries a soft,
// informational failure such as a book without an ingested document.
type GeneratedSummary struct {
	Summary string `json:"summary"`
	Error   string `json:"error"`
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	if t, err := time.ParseInLocation(apiTimestampLayout, value, time.Local); err == nil {
		return t
	}
	return time.Time{}
}
