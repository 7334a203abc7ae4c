package ui

import (
	"errors"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/shelf/internal/library"
)

func TestDetail_FetchesBookSummaryReviewsInOrder(t *testing.T) {
	api := &fakeAPI{book: dune()}
	h := newHarness(t, api, signedIn(library.User{ID: 1}))

	h.navigate("/books/3")
	calls := api.Calls()
	require.GreaterOrEqual(t, len(calls), 3)
	assert.Equal(t, []string{"GET /books/3", "GET /books/3/summary", "GET /reviews/book/3"}, calls[len(calls)-3:])
	h.assertView("Official Summary")
	h.assertView("No reviews yet.")
}

func TestDetail_ShowsLoadingUntilFetched(t *testing.T) {
	h := newHarness(t, &fakeAPI{book: dune()}, signedIn(library.User{ID: 1}))

	p := newDetailPage(h.m.deps(), 3)
	require.NotNil(t, p.Init())
	v := ansi.Strip(p.View(h.m.theme, 80, 20))
	assert.Contains(t, v, "Loading book...")
}

func TestDetail_BookNotFound(t *testing.T) {
	api := &fakeAPI{bookErr: &library.APIError{Status: 404, Detail: "Book not found"}}
	h := newHarness(t, api, signedIn(library.User{ID: 1}))

	h.navigate("/books/3")
	h.assertView(bookNotFoundText)
	assert.Zero(t, api.count("GET /books/3/summary"), "no summary fetch after a failed book fetch")
}

func TestDetail_AlreadyReviewedHidesForm(t *testing.T) {
	api := &fakeAPI{
		book: dune(),
		reviews: []library.Review{
			{ID: 5, BookID: 3, UserID: 1, ReviewText: "Loved it", Rating: 4, User: &library.ReviewAuthor{Email: "reader@example.com"}},
		},
	}
	h := newHarness(t, api, signedIn(library.User{ID: 1, Email: "reader@example.com"}))

	h.navigate("/books/3")
	h.assertView(alreadyReviewedText)
	h.assertView("Loved it")
	h.assertView("- reader@example.com")

	h.key("w")
	p := h.m.current.(*detailPage)
	assert.False(t, p.composing)
	h.assertNoView("Add your review")
}

func TestDetail_PostsReview(t *testing.T) {
	api := &fakeAPI{
		book:    dune(),
		reviews: []library.Review{{ID: 5, BookID: 3, UserID: 7, ReviewText: "Slow start", Rating: 3}},
	}
	h := newHarness(t, api, signedIn(library.User{ID: 1, Email: "reader@example.com"}))
	h.navigate("/books/3")

	h.key("w")
	require.True(t, h.m.current.Capturing())
	h.typeText("Great read")
	h.key("tab")
	h.key("left")

	api.reviews = append(api.reviews, library.Review{ID: 6, BookID: 3, UserID: 1, ReviewText: "Great read", Rating: 4})
	h.key("ctrl+s")

	require.Len(t, api.reviewInputs, 1)
	assert.Equal(t, library.ReviewInput{ReviewText: "Great read", Rating: 4}, api.reviewInputs[0])
	assert.Equal(t, 1, api.count("POST /reviews/book/3"))
	assert.Equal(t, 2, api.count("GET /books/3"), "posting refetches the detail")
	assert.False(t, h.m.current.Capturing())
	h.assertView(alreadyReviewedText)
}

func TestDetail_EmptyReviewIsRejected(t *testing.T) {
	api := &fakeAPI{book: dune()}
	h := newHarness(t, api, signedIn(library.User{ID: 1}))
	h.navigate("/books/3")

	h.key("w")
	h.key("ctrl+s")
	assert.Zero(t, api.count("POST /reviews/book/3"))
	h.assertView("Write something about the book first")
}

func TestDetail_SuperuserDeletesReview(t *testing.T) {
	api := &fakeAPI{
		book:    dune(),
		reviews: []library.Review{{ID: 5, BookID: 3, UserID: 7, ReviewText: "Spam", Rating: 1}},
	}
	h := newHarness(t, api, signedIn(library.User{ID: 9, IsSuperuser: true}))
	h.navigate("/books/3")
	h.assertView("[d] delete")

	h.key("tab")
	h.key("d")
	require.NotNil(t, h.m.modal)
	h.assertView("Delete Review?")

	h.key("y")
	assert.Equal(t, 1, api.count("DELETE /reviews/5"))
	assert.Equal(t, 2, api.count("GET /reviews/book/3"))
}

func TestDetail_OtherReviewsAreNotDeletable(t *testing.T) {
	api := &fakeAPI{
		book:    dune(),
		reviews: []library.Review{{ID: 5, BookID: 3, UserID: 7, ReviewText: "Fine", Rating: 3}},
	}
	h := newHarness(t, api, signedIn(library.User{ID: 1}))
	h.navigate("/books/3")
	h.assertNoView("[d] delete")

	h.key("tab")
	h.key("d")
	assert.Nil(t, h.m.modal)
	assert.Zero(t, api.count("DELETE /reviews/5"))
}

func TestDetail_SummaryFailureIsTolerated(t *testing.T) {
	api := &fakeAPI{
		book:       dune(),
		summary:    library.BookSummary{ReviewSummary: "Readers loved the worldbuilding"},
		summaryErr: &library.APIError{Status: 500, Detail: "summary unavailable"},
		reviews:    []library.Review{{ID: 5, BookID: 3, UserID: 7, ReviewText: "Slow start", Rating: 3}},
	}
	h := newHarness(t, api, signedIn(library.User{ID: 1}))

	h.navigate("/books/3")
	assert.Equal(t, 1, api.count("GET /reviews/book/3"), "reviews are fetched after a failed summary")
	h.assertView("Slow start")
	h.assertView("No summary available.")
	h.assertNoView("AI Review Analysis")
	h.assertNoView("summary unavailable")
}

func TestDetail_ReviewsFailureKeepsLastKnownReviews(t *testing.T) {
	api := &fakeAPI{
		book: dune(),
		reviews: []library.Review{
			{ID: 5, BookID: 3, UserID: 1, ReviewText: "Loved it", Rating: 4},
		},
	}
	h := newHarness(t, api, signedIn(library.User{ID: 1, Email: "reader@example.com"}))
	h.navigate("/books/3")
	h.assertView(alreadyReviewedText)

	api.reviewsErr = &library.APIError{Status: 503, Detail: "reviews are down"}
	h.key("r")
	assert.Equal(t, 2, api.count("GET /reviews/book/3"))
	h.assertView("✗ reviews are down")
	h.assertView(alreadyReviewedText)
	h.assertView("Loved it")
	h.assertNoView("No reviews yet.")
	h.assertNoView("Press w to add your review.")

	api.reviewsErr = nil
	h.key("r")
	h.assertNoView("reviews are down")
}

func TestDetail_ReviewsFailureOnFirstLoadHidesCompose(t *testing.T) {
	api := &fakeAPI{book: dune(), reviewsErr: errors.New("connection refused")}
	h := newHarness(t, api, signedIn(library.User{ID: 1}))
	h.navigate("/books/3")

	h.assertView("Failed to load reviews")
	h.assertNoView("No reviews yet.")
	h.key("w")
	assert.False(t, h.m.current.Capturing(), "cannot tell whether the user already reviewed")
}
