package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/poll"
	"github.com/five82/shelf/internal/prefs"
	"github.com/five82/shelf/internal/session"
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	API       library.API
	Session   *session.Store
	Logger    *zap.Logger
	ThemeName string
	LastEmail string
	PrefsPath string
	BaseURL   string
	// PollInterval is the document refresh interval while any document is
	// processing. Zero uses poll.DefaultInterval.
	PollInterval time.Duration
}

// Model is the root application state for Bubble Tea. It owns the router:
// every navigation tears down the current page and builds a fresh one.
type Model struct {
	// Configuration
	ctx          context.Context
	api          library.API
	session      *session.Store
	logger       *zap.Logger
	prefsPath    string
	baseURL      string
	lastEmail    string
	pollInterval time.Duration
	keys         keyMap
	dispatch     *dispatcher
	markdown     *markdownRenderer

	// UI state
	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	spin     *spinner.Model

	// Routing state
	route   route
	current page
	pageID  int
	modal   Modal
}

// New creates a new Bubble Tea model. A restored session starts on the
// catalog, otherwise on the login page.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store := opts.Session
	if store == nil {
		store = session.NewStore(nil, logger)
	}

	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = poll.DefaultInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:          ctx,
		api:          opts.API,
		session:      store,
		logger:       logger,
		prefsPath:    prefsPath,
		baseURL:      opts.BaseURL,
		lastEmail:    opts.LastEmail,
		pollInterval: pollInterval,
		keys:         DefaultKeyMap(),
		dispatch:     &dispatcher{},
		markdown:     newMarkdownRenderer(),
		theme:        GetTheme(opts.ThemeName),
		spin:         &spin,
	}

	start := routeLogin
	if store.IsAuthenticated() {
		start = routeCatalog
	}
	m.enter(resolveRoute(start))
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.current.Init())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if pm, ok := msg.(pageMsg); ok && pm.pageID() != 0 && pm.pageID() != m.pageID {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		*m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case navigateMsg:
		return m.navigate(msg.path)

	case signedInMsg:
		m.lastEmail = msg.email
		if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.LastEmail = msg.email }); err != nil {
			m.logger.Warn("save last email failed", zap.Error(err))
		}
		return m.navigate(routeCatalog)

	case openModalMsg:
		m.modal = msg.modal
		return m, nil
	}

	return m.updatePage(msg)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	contentHeight := max(m.height-headerHeight, boxChrome+1)
	var body string
	if m.modal != nil {
		body = m.modal.View(m.theme, m.width, contentHeight)
	} else {
		inner := m.current.View(m.theme, max(m.width-4, 1), contentHeight-boxChrome)
		body = renderTitledBox(m.theme, m.current.Title(), indent(inner, 1), m.width, contentHeight, false)
	}

	return m.renderHeader() + "\n" + m.renderCommandBar() + "\n" + body
}

// handleKey processes keyboard input. Global keys apply only while the page
// is not capturing text, except ctrl+c which always quits.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	if msg.String() == "ctrl+c" {
		return m.quit()
	}
	if m.current.Capturing() {
		return m.updatePage(msg)
	}

	authenticated := m.session.IsAuthenticated()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		name := m.theme.Name
		if err := prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.Theme = name }); err != nil {
			m.logger.Warn("save theme failed", zap.Error(err))
		}
		return m, nil

	case key.Matches(msg, m.keys.Logout) && authenticated:
		m.session.Logout()
		m.logger.Info("signed out")
		return m.navigate(routeLogin)

	case key.Matches(msg, m.keys.GoBooks) && authenticated:
		return m.navigate(routeCatalog)
	case key.Matches(msg, m.keys.GoPicks) && authenticated:
		return m.navigate(routeRecommendations)
	case key.Matches(msg, m.keys.GoDocuments) && authenticated:
		return m.navigate(routeDocuments)
	case key.Matches(msg, m.keys.GoChat) && authenticated:
		return m.navigate(routeChat)
	case key.Matches(msg, m.keys.GoUsers) && m.session.Snapshot().IsSuperuser():
		return m.navigate(routeAdminUsers)
	}

	return m.updatePage(msg)
}

func (m Model) updatePage(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.current, cmd = m.current.Update(msg)
	return m, cmd
}

// navigate replaces the current page with the gated target of path.
func (m Model) navigate(path string) (tea.Model, tea.Cmd) {
	m.enter(gateRoute(resolveRoute(path), m.session.Snapshot()))
	return m, m.current.Init()
}

func (m *Model) enter(r route) {
	m.closePage()
	m.pageID++
	m.modal = nil
	m.route = r
	m.current = newPage(r, m.deps())
	m.logger.Debug("navigate", zap.String("path", r.path), zap.String("route", r.pattern))
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.closePage()
	return m, tea.Quit
}

// closePage releases resources held by the current page.
func (m Model) closePage() {
	if c, ok := m.current.(closer); ok {
		c.Close()
	}
}

func (m Model) deps() deps {
	return deps{
		ctx:          m.ctx,
		api:          m.api,
		session:      m.session,
		logger:       m.logger,
		keys:         m.keys,
		dispatch:     m.dispatch,
		markdown:     m.markdown,
		spin:         m.spin,
		lastEmail:    m.lastEmail,
		pollInterval: m.pollInterval,
		id:           m.pageID,
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	if opts.API == nil {
		return errors.New("ui requires an api client")
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	// Send blocks until the event loop reads the message; dispatch from a
	// fresh goroutine so a poll callback never waits on a page that is
	// stopping its loop.
	m.dispatch.set(func(msg tea.Msg) { go p.Send(msg) })

	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.closePage()
	}
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
