package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/shelf/internal/library"
)

type usersLoadedMsg struct {
	scoped
	users []library.User
	err   error
}

type userUpdatedMsg struct {
	scoped
	id  int64
	err error
}

// adminPage lists accounts and toggles their flags. Rows only change after
// the refetch that follows each update.
type adminPage struct {
	d      deps
	users  []library.User
	loaded bool
	err    string
	cursor listCursor
}

func newAdminPage(d deps) *adminPage {
	return &adminPage{d: d}
}

func (p *adminPage) Init() tea.Cmd {
	return p.fetch()
}

func (p *adminPage) Title() string { return "User Management" }

func (p *adminPage) Capturing() bool { return false }

func (p *adminPage) Hints() []hint {
	return []hint{{"a", "Toggle active"}, {"s", "Toggle admin"}, {"j/k", "Navigate"}, {"r", "Refresh"}}
}

func (p *adminPage) fetch() tea.Cmd {
	d, s := p.d, p.d.scope()
	return func() tea.Msg {
		users, err := d.api.ListUsers(d.ctx)
		return usersLoadedMsg{scoped: s, users: users, err: err}
	}
}

func (p *adminPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case usersLoadedMsg:
		p.loaded = true
		if msg.err != nil {
			p.d.warn("fetch users failed", msg.err)
			p.err = library.Message(msg.err, "Failed to load users")
			return p, nil
		}
		p.users = msg.users
		p.cursor.clamp(len(p.users))
		return p, nil

	case userUpdatedMsg:
		if msg.err != nil {
			p.d.warn("update user failed", msg.err, zap.Int64("user_id", msg.id))
			p.err = library.Message(msg.err, "Failed to update user")
			return p, nil
		}
		p.err = ""
		return p, p.fetch()

	case tea.KeyMsg:
		keys := p.d.keys
		if p.cursor.handleKey(msg, keys, len(p.users)) {
			return p, nil
		}
		switch {
		case key.Matches(msg, keys.Refresh):
			return p, p.fetch()
		case key.Matches(msg, keys.ToggleActive):
			return p, p.toggle(func(u library.User) library.UserUpdate {
				v := !u.IsActive
				return library.UserUpdate{IsActive: &v}
			})
		case key.Matches(msg, keys.ToggleSuperuser):
			return p, p.toggle(func(u library.User) library.UserUpdate {
				v := !u.IsSuperuser
				return library.UserUpdate{IsSuperuser: &v}
			})
		}
	}
	return p, nil
}

// toggle sends the update built from the selected user's current flags.
func (p *adminPage) toggle(build func(library.User) library.UserUpdate) tea.Cmd {
	if p.cursor.index < 0 || p.cursor.index >= len(p.users) {
		return nil
	}
	user := p.users[p.cursor.index]
	update := build(user)
	d, s := p.d, p.d.scope()
	return func() tea.Msg {
		_, err := d.api.UpdateUser(d.ctx, user.ID, update)
		return userUpdatedMsg{scoped: s, id: user.ID, err: err}
	}
}

func (p *adminPage) View(theme Theme, width, height int) string {
	styles, bg := pageStyles(theme)

	var lines []string
	if p.err != "" {
		lines = append(lines, renderAlert(styles, alertError, p.err), "")
	}
	if !p.loaded {
		lines = append(lines, p.d.loading(styles, bg, "Loading users..."))
		return strings.Join(lines, "\n")
	}

	emailWidth := max(min(width-28, 48), 10)
	header := fmt.Sprintf("  %-6s %s %-8s %-8s", "ID", padRight("Email", emailWidth), "Active", "Admin")
	lines = append(lines, bg.Render(header, styles.MutedText.Bold(true)))

	start, end := p.cursor.window(len(p.users), max(height-len(lines), 1))
	for i := start; i < end; i++ {
		u := p.users[i]
		marker := "  "
		rowStyle := styles.Text
		if i == p.cursor.index {
			marker = "▸ "
			rowStyle = styles.AccentText
		}
		row := fmt.Sprintf("%-6d %s %-8s %-8s",
			u.ID, padRight(truncate(u.Email, emailWidth), emailWidth), checkbox(u.IsActive), checkbox(u.IsSuperuser))
		lines = append(lines, bg.Render(marker, styles.AccentText)+bg.Render(row, rowStyle))
	}
	return strings.Join(lines, "\n")
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
