package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shelf/internal/library"
)

func dune() library.Book {
	year := 1965
	return library.Book{ID: 3, Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", YearPublished: &year}
}

func TestCatalog_EmptyState(t *testing.T) {
	h := newHarness(t, &fakeAPI{}, signedIn(library.User{ID: 1}))
	h.assertView(emptyCatalogText)
	h.assertView("Book Library")
}

func TestCatalog_ListsBooks(t *testing.T) {
	api := &fakeAPI{books: []library.Book{dune()}}
	h := newHarness(t, api, signedIn(library.User{ID: 1}))

	h.assertView("Dune")
	h.assertView("by Frank Herbert · Science Fiction · 1965")
	h.assertView("No summary available.")
	h.assertNoView(emptyCatalogText)
}

func TestCatalog_DeleteRequiresConfirmation(t *testing.T) {
	api := &fakeAPI{books: []library.Book{dune()}}
	h := newHarness(t, api, signedIn(library.User{ID: 1}))

	h.key("d")
	require.NotNil(t, h.m.modal)
	h.assertView("Delete Book?")
	assert.Zero(t, api.count("DELETE /books/3"))

	h.key("n")
	assert.Nil(t, h.m.modal)
	assert.Zero(t, api.count("DELETE /books/3"), "cancel must not delete")
	assert.Equal(t, routeCatalog, h.m.route.pattern, "n in the dialog must not open the new book form")

	h.key("d")
	h.key("y")
	assert.Nil(t, h.m.modal)
	assert.Equal(t, 1, api.count("DELETE /books/3"))
	assert.Equal(t, 2, api.count("GET /books/"), "a successful delete refetches the list")
}

func TestCatalog_DeleteFailureKeepsList(t *testing.T) {
	api := &fakeAPI{
		books:     []library.Book{dune()},
		deleteErr: &library.APIError{Status: 403, Detail: "Not enough permissions"},
	}
	h := newHarness(t, api, signedIn(library.User{ID: 1}))

	h.key("d")
	h.key("y")
	assert.Equal(t, 1, api.count("DELETE /books/3"))
	assert.Equal(t, 1, api.count("GET /books/"))
	h.assertView("Not enough permissions")
	h.assertView("Dune")
}

func TestCatalog_OpenAndEdit(t *testing.T) {
	api := &fakeAPI{books: []library.Book{dune()}, book: dune()}
	h := newHarness(t, api, signedIn(library.User{ID: 1}))

	h.key("enter")
	assert.Equal(t, routeBook, h.m.route.pattern)
	assert.EqualValues(t, 3, h.m.route.bookID)

	h.key("esc")
	require.Equal(t, routeCatalog, h.m.route.pattern)
	h.key("e")
	assert.Equal(t, routeEditBook, h.m.route.pattern)
}

func TestSummaryPreview(t *testing.T) {
	if got := summaryPreview("  "); got != "No summary available." {
		t.Fatalf("summaryPreview blank = %q", got)
	}
	if got := summaryPreview("A short\n summary"); got != "A short summary" {
		t.Fatalf("summaryPreview short = %q", got)
	}
	long := strings.Repeat("é", summaryPreviewLimit+5)
	got := summaryPreview(long)
	if want := strings.Repeat("é", summaryPreviewLimit) + "..."; got != want {
		t.Fatalf("summaryPreview long = %q, want %q", got, want)
	}
}
