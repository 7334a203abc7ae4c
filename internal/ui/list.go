package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// listCursor tracks the selected row of a list and the first visible row.
type listCursor struct {
	index  int
	offset int
}

// handleKey applies the navigation keys and reports whether msg moved the
// cursor.
func (c *listCursor) handleKey(msg tea.KeyMsg, keys keyMap, n int) bool {
	switch {
	case key.Matches(msg, keys.Up):
		c.move(-1, n)
	case key.Matches(msg, keys.Down):
		c.move(1, n)
	case key.Matches(msg, keys.Top):
		c.index = 0
	case key.Matches(msg, keys.Bottom):
		c.index = max(n-1, 0)
	case key.Matches(msg, keys.PageUp):
		c.move(-10, n)
	case key.Matches(msg, keys.PageDown):
		c.move(10, n)
	default:
		return false
	}
	return true
}

func (c *listCursor) move(delta, n int) {
	c.index += delta
	c.clamp(n)
}

func (c *listCursor) clamp(n int) {
	if c.index >= n {
		c.index = n - 1
	}
	if c.index < 0 {
		c.index = 0
	}
}

// window returns the [start, end) range of rows to draw when rows fit on
// screen, scrolling just enough to keep the selection visible.
func (c *listCursor) window(n, rows int) (int, int) {
	if rows <= 0 {
		rows = 1
	}
	if c.index < c.offset {
		c.offset = c.index
	}
	if c.index >= c.offset+rows {
		c.offset = c.index - rows + 1
	}
	if c.offset > max(n-rows, 0) {
		c.offset = max(n-rows, 0)
	}
	return c.offset, min(c.offset+rows, n)
}
