package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/library"
)

const chatErrorText = "Sorry, I encountered an error."

// examplePrompts are suggested while the transcript is short.
var examplePrompts = []string{
	"What are the main themes of my documents?",
	"Summarize the key points of the latest upload.",
	"Which characters appear most often?",
}

type chatRole string

const (
	roleUser chatRole = "user"
	roleBot  chatRole = "bot"
)

type chatMessage struct {
	role    chatRole
	content string
	sources []string
}

type chatAnsweredMsg struct {
	scoped
	resp library.ChatResponse
	err  error
}

// chatPage asks questions about ingested documents. The transcript lives
// only as long as the page.
type chatPage struct {
	d        deps
	messages []chatMessage
	input    textinput.Model
	waiting  bool
	example  int
	vp       viewport.Model
}

func newChatPage(d deps) *chatPage {
	p := &chatPage{
		d:     d,
		input: newTextInput("Ask a question about your documents...", 1000),
		vp:    viewport.New(80, 20),
	}
	p.input.Focus()
	return p
}

func (p *chatPage) Init() tea.Cmd { return nil }

func (p *chatPage) Title() string { return "RAG Q&A Chat" }

func (p *chatPage) Capturing() bool { return p.input.Focused() }

func (p *chatPage) Hints() []hint {
	if !p.input.Focused() {
		return []hint{{"enter", "Type a question"}, {"j/k", "Scroll"}}
	}
	hints := []hint{{"enter", "Send"}}
	if len(p.messages) < examplePromptLimit {
		hints = append(hints, hint{"ctrl+p", "Example"})
	}
	return append(hints, hint{"esc", "Leave input"})
}

func (p *chatPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case chatAnsweredMsg:
		p.waiting = false
		if msg.err != nil {
			p.d.warn("chat failed", msg.err)
			p.messages = append(p.messages, chatMessage{role: roleBot, content: chatErrorText})
		} else {
			p.messages = append(p.messages, chatMessage{role: roleBot, content: msg.resp.Answer, sources: msg.resp.Sources})
		}
		p.vp.GotoBottom()
		return p, nil

	case tea.KeyMsg:
		return p, p.handleKey(msg)
	}
	return p, nil
}

func (p *chatPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	keys := p.d.keys
	if !p.input.Focused() {
		switch {
		case key.Matches(msg, keys.Confirm), key.Matches(msg, keys.Tab):
			return p.input.Focus()
		case key.Matches(msg, keys.Up):
			p.vp.ScrollUp(1)
		case key.Matches(msg, keys.Down):
			p.vp.ScrollDown(1)
		case key.Matches(msg, keys.PageUp):
			p.vp.HalfPageUp()
		case key.Matches(msg, keys.PageDown):
			p.vp.HalfPageDown()
		}
		return nil
	}

	switch {
	case key.Matches(msg, keys.Escape):
		p.input.Blur()
		return nil
	case key.Matches(msg, keys.Confirm):
		return p.send()
	case key.Matches(msg, keys.Example):
		if len(p.messages) < examplePromptLimit {
			p.input.SetValue(examplePrompts[p.example%len(examplePrompts)])
			p.input.CursorEnd()
			p.example++
		}
		return nil
	}
	if p.waiting {
		return nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

// send appends the question, clears the input and issues one request.
func (p *chatPage) send() tea.Cmd {
	question := strings.TrimSpace(p.input.Value())
	if question == "" || p.waiting {
		return nil
	}
	p.messages = append(p.messages, chatMessage{role: roleUser, content: question})
	p.input.Reset()
	p.waiting = true
	p.vp.GotoBottom()

	d, s := p.d, p.d.scope()
	return func() tea.Msg {
		resp, err := d.api.Chat(d.ctx, question)
		return chatAnsweredMsg{scoped: s, resp: resp, err: err}
	}
}

func (p *chatPage) View(theme Theme, width, height int) string {
	styles, bg := pageStyles(theme)

	footer := []string{""}
	if len(p.messages) < examplePromptLimit {
		footer = append(footer, bg.Render("Try asking:", styles.MutedText))
		for _, prompt := range examplePrompts {
			footer = append(footer, bg.Render("  • "+prompt, styles.FaintText))
		}
	}
	p.input.Width = max(width-4, 10)
	footer = append(footer, bg.Render("> ", styles.AccentText)+p.input.View())

	atBottom := p.vp.AtBottom()
	p.vp.Width = width
	p.vp.Height = max(height-len(footer), 1)
	p.vp.SetContent(p.renderTranscript(styles, bg, width))
	if atBottom {
		p.vp.GotoBottom()
	}
	return p.vp.View() + "\n" + strings.Join(footer, "\n")
}

func (p *chatPage) renderTranscript(styles Styles, bg BgStyle, width int) string {
	if len(p.messages) == 0 && !p.waiting {
		return bg.Render("Ask anything about the documents you have ingested.", styles.MutedText)
	}
	var lines []string
	for _, m := range p.messages {
		if m.role == roleUser {
			lines = append(lines, bg.Render("You", styles.AccentText.Bold(true)))
			lines = append(lines, indent(wrapText(m.content, max(width-2, 10)), 2))
		} else {
			lines = append(lines, bg.Render("Assistant", styles.SuccessText))
			lines = append(lines, p.d.markdown.Render(m.content, max(width-2, 20)))
			if len(m.sources) > 0 {
				lines = append(lines, bg.Render("Sources:", styles.MutedText))
				for _, src := range m.sources {
					lines = append(lines, bg.Render("  ["+src+"]", styles.InfoText))
				}
			}
		}
		lines = append(lines, "")
	}
	if p.waiting {
		lines = append(lines, p.d.loading(styles, bg, "Thinking..."))
	}
	return strings.Join(lines, "\n")
}
