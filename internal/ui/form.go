package ui

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// newTextInput returns a single-line input with a steady cursor.
func newTextInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = 40
	ti.Prompt = ""
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// newTextArea returns a multi-line input with a steady cursor.
func newTextArea(placeholder string, height int) textarea.Model {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetHeight(height)
	ta.SetWidth(60)
	ta.Cursor.SetMode(cursor.CursorStatic)
	return ta
}

// field is a labelled input that is either a textinput or a textarea.
type field struct {
	label    string
	input    *textinput.Model
	area     *textarea.Model
	required bool
}

func (f field) Value() string {
	if f.area != nil {
		return f.area.Value()
	}
	return f.input.Value()
}

func (f field) SetValue(v string) {
	if f.area != nil {
		f.area.SetValue(v)
		return
	}
	f.input.SetValue(v)
}

func (f field) Focus() tea.Cmd {
	if f.area != nil {
		return f.area.Focus()
	}
	return f.input.Focus()
}

func (f field) Blur() {
	if f.area != nil {
		f.area.Blur()
		return
	}
	f.input.Blur()
}

func (f field) Focused() bool {
	if f.area != nil {
		return f.area.Focused()
	}
	return f.input.Focused()
}

func (f field) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.area != nil {
		*f.area, cmd = f.area.Update(msg)
		return cmd
	}
	*f.input, cmd = f.input.Update(msg)
	return cmd
}

func (f field) View() string {
	if f.area != nil {
		return f.area.View()
	}
	return f.input.View()
}

func (f field) SetWidth(width int) {
	if f.area != nil {
		f.area.SetWidth(width)
		return
	}
	f.input.Width = width
}

// fieldSet tracks focus across a form's fields. focus is -1 when no field
// has focus.
type fieldSet struct {
	fields []field
	focus  int
}

func (s *fieldSet) focusIndex(i int) tea.Cmd {
	for j, f := range s.fields {
		if j != i {
			f.Blur()
		}
	}
	if i < 0 || i >= len(s.fields) {
		s.focus = -1
		return nil
	}
	s.focus = i
	return s.fields[i].Focus()
}

func (s *fieldSet) next() tea.Cmd {
	return s.focusIndex((s.focus + 1) % len(s.fields))
}

func (s *fieldSet) prev() tea.Cmd {
	i := s.focus - 1
	if i < 0 {
		i = len(s.fields) - 1
	}
	return s.focusIndex(i)
}

func (s *fieldSet) blur() {
	s.focusIndex(-1)
}

func (s *fieldSet) capturing() bool {
	return s.focus >= 0
}

func (s *fieldSet) update(msg tea.Msg) tea.Cmd {
	if s.focus < 0 {
		return nil
	}
	return s.fields[s.focus].Update(msg)
}

func (s *fieldSet) last() bool {
	return s.focus == len(s.fields)-1
}

// render lays out every field as a label line followed by its input.
func (s *fieldSet) render(styles Styles, bg BgStyle, width int) []string {
	lines := make([]string, 0, len(s.fields)*3)
	for i, f := range s.fields {
		label := f.label
		if f.required {
			label += " *"
		}
		if i == s.focus {
			lines = append(lines, bg.Render(label, styles.AccentText.Bold(true)))
		} else {
			lines = append(lines, bg.Render(label, styles.MutedText))
		}
		f.SetWidth(max(width-2, 10))
		lines = append(lines, f.View(), "")
	}
	return lines
}
