package ui

// LayoutCompactWidth is the width below which the header drops the API
// address and the command bar shows only global keys.
const LayoutCompactWidth = 100

// Chrome heights.
const (
	// headerHeight covers the nav bar and the command bar.
	headerHeight = 2

	// boxChrome is the border overhead of a titled box.
	boxChrome = 2
)

// summaryPreviewLimit is the number of summary characters shown per book.
const summaryPreviewLimit = 100

// examplePromptLimit hides the example questions once the transcript has
// this many messages.
const examplePromptLimit = 3
