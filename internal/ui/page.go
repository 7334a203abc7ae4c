package ui

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/session"
)

// page is one routed screen. Pages are owned by the root model and replaced
// on every navigation; a page that holds background resources implements
// closer so the root can release them when it is torn down.
type page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (page, tea.Cmd)
	View(theme Theme, width, height int) string
	Title() string
	Hints() []hint
	// Capturing reports whether a text input has focus, in which case the
	// root leaves printable keys to the page.
	Capturing() bool
}

type closer interface {
	Close()
}

// hint is one entry in the command bar.
type hint struct {
	key  string
	desc string
}

// deps carries the shared capabilities every page is built with.
type deps struct {
	ctx          context.Context
	api          library.API
	session      *session.Store
	logger       *zap.Logger
	keys         keyMap
	dispatch     *dispatcher
	markdown     *markdownRenderer
	spin         *spinner.Model
	lastEmail    string
	pollInterval time.Duration
	id           int
}

func (d deps) scope() scoped {
	return scoped{id: d.id}
}

// navigate returns a command that routes to path on behalf of this page.
func (d deps) navigate(path string) tea.Cmd {
	s := d.scope()
	return func() tea.Msg { return navigateMsg{scoped: s, path: path} }
}

func (d deps) user() (library.User, bool) {
	snap := d.session.Snapshot()
	return snap.User, snap.HasUser
}

// warn logs a failed call. Pages also render their own inline message.
func (d deps) warn(msg string, err error, fields ...zap.Field) {
	d.logger.Warn(msg, append(fields, zap.Error(err))...)
}

// loading renders the spinner with a label.
func (d deps) loading(styles Styles, bg BgStyle, label string) string {
	frame := "…"
	if d.spin != nil {
		frame = d.spin.View()
	}
	return bg.Render(frame, styles.AccentText) + bg.Space() + bg.Render(label, styles.MutedText)
}

// scoped tags a message with the page instance that issued it. The root
// drops scoped messages whose page has since been replaced.
type scoped struct {
	id int
}

func (s scoped) pageID() int { return s.id }

type pageMsg interface {
	pageID() int
}

// navigateMsg routes to path. Messages from the root use id zero.
type navigateMsg struct {
	scoped
	path string
}

func navigateTo(path string) tea.Cmd {
	return func() tea.Msg { return navigateMsg{path: path} }
}

// signedInMsg is sent by the login page once the session holds a token.
type signedInMsg struct {
	scoped
	email string
}

// dispatcher delivers messages produced outside the Bubble Tea loop, such as
// poll ticks, back into the running program.
type dispatcher struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (d *dispatcher) set(send func(tea.Msg)) {
	d.mu.Lock()
	d.send = send
	d.mu.Unlock()
}

// Send forwards msg to the program. It is a no-op before the program starts.
func (d *dispatcher) Send(msg tea.Msg) {
	if d == nil {
		return
	}
	d.mu.Lock()
	send := d.send
	d.mu.Unlock()
	if send != nil {
		send(msg)
	}
}
