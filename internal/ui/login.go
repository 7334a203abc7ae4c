package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/session"
)

const (
	loginFailedText        = "Invalid email or password"
	registrationFailedText = "Registration failed"
)

type loginFailedMsg struct {
	scoped
	err error
}

type registeredMsg struct {
	scoped
	err error
}

// credentials is the email/password pair shared by the login and signup
// pages.
type credentials struct {
	email    textinput.Model
	password textinput.Model
	fields   fieldSet
}

func newCredentials(email string) *credentials {
	c := &credentials{
		email:    newTextInput("you@example.com", 254),
		password: newTextInput("password", 128),
	}
	c.password.EchoMode = textinput.EchoPassword
	c.password.EchoCharacter = '•'
	c.email.SetValue(email)
	c.fields = fieldSet{fields: []field{
		{label: "Email Address", input: &c.email, required: true},
		{label: "Password", input: &c.password, required: true},
	}}
	if strings.TrimSpace(email) != "" {
		c.fields.focusIndex(1)
	} else {
		c.fields.focusIndex(0)
	}
	return c
}

func (c *credentials) values() (string, string) {
	return strings.TrimSpace(c.email.Value()), c.password.Value()
}

// handleKey moves focus and reports whether the form was submitted.
func (c *credentials) handleKey(msg tea.KeyMsg, keys keyMap) (bool, tea.Cmd) {
	if !c.fields.capturing() {
		switch {
		case key.Matches(msg, keys.Tab), key.Matches(msg, keys.Confirm):
			return false, c.fields.focusIndex(0)
		}
		return false, nil
	}
	switch {
	case key.Matches(msg, keys.Escape):
		c.fields.blur()
		return false, nil
	case key.Matches(msg, keys.Tab), msg.Type == tea.KeyDown:
		return false, c.fields.next()
	case key.Matches(msg, keys.ShiftTab), msg.Type == tea.KeyUp:
		return false, c.fields.prev()
	case key.Matches(msg, keys.Confirm):
		if c.fields.last() {
			return true, nil
		}
		return false, c.fields.next()
	}
	return false, c.fields.update(msg)
}

func (c *credentials) render(styles Styles, bg BgStyle, width int) []string {
	return c.fields.render(styles, bg, min(width, 50))
}

// loginPage exchanges credentials for a session.
type loginPage struct {
	d          deps
	form       *credentials
	err        string
	submitting bool
}

func newLoginPage(d deps) *loginPage {
	return &loginPage{d: d, form: newCredentials(d.lastEmail)}
}

func (p *loginPage) Init() tea.Cmd { return nil }

func (p *loginPage) Title() string { return "Sign in" }

func (p *loginPage) Capturing() bool { return p.form.fields.capturing() }

func (p *loginPage) Hints() []hint {
	return []hint{{"enter", "Sign in"}, {"tab", "Next field"}, {"ctrl+o", "Sign up"}, {"esc", "Leave input"}}
}

func (p *loginPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, p.d.keys.Switch) {
			return p, p.d.navigate(routeSignup)
		}
		submit, cmd := p.form.handleKey(msg, p.d.keys)
		if submit {
			return p, p.submit()
		}
		return p, cmd

	case loginFailedMsg:
		p.submitting = false
		p.err = loginFailedText
		p.d.warn("login failed", msg.err)
		return p, nil
	}
	return p, nil
}

func (p *loginPage) submit() tea.Cmd {
	if p.submitting {
		return nil
	}
	email, password := p.form.values()
	if email == "" || password == "" {
		p.err = "Email and password are required"
		return nil
	}
	p.submitting = true
	p.err = ""

	d, s := p.d, p.d.scope()
	return func() tea.Msg {
		if _, err := session.SignIn(d.ctx, d.api, d.session, email, password, d.logger); err != nil {
			return loginFailedMsg{scoped: s, err: err}
		}
		return signedInMsg{scoped: s, email: email}
	}
}

func (p *loginPage) View(theme Theme, width, height int) string {
	styles, bg := pageStyles(theme)

	lines := []string{bg.Render("Sign in", styles.Text.Bold(true)), ""}
	if p.err != "" {
		lines = append(lines, renderAlert(styles, alertError, p.err), "")
	}
	lines = append(lines, p.form.render(styles, bg, width)...)
	if p.submitting {
		lines = append(lines, p.d.loading(styles, bg, "Signing in..."))
	} else {
		lines = append(lines, bg.Render("Don't have an account? Press ctrl+o to sign up.", styles.FaintText))
	}
	return strings.Join(lines, "\n")
}

// signupPage registers a new account and returns to the login page.
type signupPage struct {
	d          deps
	form       *credentials
	err        string
	submitting bool
}

func newSignupPage(d deps) *signupPage {
	return &signupPage{d: d, form: newCredentials("")}
}

func (p *signupPage) Init() tea.Cmd { return nil }

func (p *signupPage) Title() string { return "Sign up" }

func (p *signupPage) Capturing() bool { return p.form.fields.capturing() }

func (p *signupPage) Hints() []hint {
	return []hint{{"enter", "Sign up"}, {"tab", "Next field"}, {"ctrl+o", "Sign in"}, {"esc", "Leave input"}}
}

func (p *signupPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, p.d.keys.Switch) {
			return p, p.d.navigate(routeLogin)
		}
		submit, cmd := p.form.handleKey(msg, p.d.keys)
		if submit {
			return p, p.submit()
		}
		return p, cmd

	case registeredMsg:
		p.submitting = false
		if msg.err != nil {
			p.d.warn("registration failed", msg.err)
			p.err = registrationFailedText
			if detail := library.Message(msg.err, ""); detail != "" {
				p.err += ": " + detail
			}
			return p, nil
		}
		return p, p.d.navigate(routeLogin)
	}
	return p, nil
}

func (p *signupPage) submit() tea.Cmd {
	if p.submitting {
		return nil
	}
	email, password := p.form.values()
	if email == "" || password == "" {
		p.err = "Email and password are required"
		return nil
	}
	p.submitting = true
	p.err = ""

	d, s := p.d, p.d.scope()
	return func() tea.Msg {
		_, err := d.api.Register(d.ctx, email, password)
		return registeredMsg{scoped: s, err: err}
	}
}

func (p *signupPage) View(theme Theme, width, height int) string {
	styles, bg := pageStyles(theme)

	lines := []string{bg.Render("Sign up", styles.Text.Bold(true)), ""}
	if p.err != "" {
		lines = append(lines, renderAlert(styles, alertError, p.err), "")
	}
	lines = append(lines, p.form.render(styles, bg, width)...)
	if p.submitting {
		lines = append(lines, p.d.loading(styles, bg, "Creating account..."))
	} else {
		lines = append(lines, bg.Render("Already have an account? Press ctrl+o to sign in.", styles.FaintText))
	}
	return strings.Join(lines, "\n")
}
