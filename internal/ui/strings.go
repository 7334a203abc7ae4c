package ui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

const ellipsis = "…"

// truncate trims value to at most limit cells, ending with an ellipsis
// when anything was cut. A non-positive limit disables truncation.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || ansi.StringWidth(value) <= limit {
		return value
	}
	if limit == 1 {
		return ansi.Truncate(value, 1, "")
	}
	return ansi.Truncate(value, limit, ellipsis)
}

// truncateMiddle cuts from the middle of value so both ends stay
// readable. A short file extension survives intact.
func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || ansi.StringWidth(value) <= limit {
		return value
	}
	if limit < 3 {
		return ansi.Truncate(value, limit, "")
	}

	base, ext := value, ""
	if dot := strings.LastIndex(value, "."); dot > 0 {
		if e := value[dot:]; ansi.StringWidth(e) < 10 && ansi.StringWidth(e) < limit/2 {
			base, ext = value[:dot], e
		}
	}

	keep := limit - ansi.StringWidth(ext) - 1
	head := keep / 2
	tail := keep - head
	return ansi.Truncate(base, head, "") + ellipsis + ansi.TruncateLeft(base, ansi.StringWidth(base)-tail, "") + ext
}

// padRight fills s with spaces up to width cells.
func padRight(s string, width int) string {
	if gap := width - ansi.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// stars renders a rating as five filled or empty stars.
func stars(rating int) string {
	rating = max(0, min(rating, 5))
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// indent prefixes every line of s with n spaces.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	pad := strings.Repeat(" ", n)
	return pad + strings.ReplaceAll(s, "\n", "\n"+pad)
}
