package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding the pages match against.
type keyMap struct {
	Quit, Help, CycleTheme, Logout key.Binding
	Tab, ShiftTab, Escape          key.Binding

	GoBooks, GoPicks, GoDocuments, GoChat, GoUsers key.Binding

	Up, Down, Top, Bottom, PageUp, PageDown key.Binding

	Open, New, Edit, Delete, Write  key.Binding
	Upload, Ingest, Refresh         key.Binding
	Save, Generate, Example, Switch key.Binding

	ToggleActive, ToggleSuperuser key.Binding

	Confirm, Yes, No key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns shelf's key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit:       bind("Q", "Quit", "ctrl+c", "Q"),
		Help:       bind("?", "Toggle help", "?"),
		CycleTheme: bind("T", "Cycle theme", "T"),
		Logout:     bind("L", "Logout", "L"),
		Tab:        bind("tab", "Next field", "tab"),
		ShiftTab:   bind("shift+tab", "Previous field", "shift+tab"),
		Escape:     bind("esc", "Back / leave input", "esc"),

		GoBooks:     bind("1", "Books", "1"),
		GoPicks:     bind("2", "Picks", "2"),
		GoDocuments: bind("3", "Documents", "3"),
		GoChat:      bind("4", "Q&A", "4"),
		GoUsers:     bind("5", "Users (admins)", "5"),

		Up:       bind("k", "Move up", "k", "up"),
		Down:     bind("j", "Move down", "j", "down"),
		Top:      bind("g", "Go to top", "g", "home"),
		Bottom:   bind("G", "Go to bottom", "G", "end"),
		PageUp:   bind("pgup", "Page up", "pgup", "ctrl+u"),
		PageDown: bind("pgdown", "Page down", "pgdown", "ctrl+d"),

		Open:     bind("enter", "Open book", "enter"),
		New:      bind("n", "New book", "n"),
		Edit:     bind("e", "Edit book", "e"),
		Delete:   bind("d", "Delete", "d", "x"),
		Write:    bind("w", "Write review", "w"),
		Upload:   bind("u", "Upload file", "u"),
		Ingest:   bind("i", "Request ingestion", "i"),
		Refresh:  bind("r", "Refresh", "r"),
		Save:     bind("ctrl+s", "Save", "ctrl+s"),
		Generate: bind("ctrl+g", "Generate summary", "ctrl+g"),
		Example:  bind("ctrl+p", "Example question", "ctrl+p"),
		Switch:   bind("ctrl+o", "Sign up / Sign in", "ctrl+o"),

		ToggleActive:    bind("a", "Toggle active", "a"),
		ToggleSuperuser: bind("s", "Toggle admin", "s"),

		Confirm: bind("enter", "Confirm", "enter"),
		Yes:     bind("y", "Delete", "y", "enter"),
		No:      bind("n/esc", "Cancel", "n", "esc"),
	}
}

// helpGroup is one titled column of the help overlay.
type helpGroup struct {
	title    string
	bindings []key.Binding
}

func (k keyMap) helpGroups() []helpGroup {
	return []helpGroup{
		{"Pages", []key.Binding{k.GoBooks, k.GoPicks, k.GoDocuments, k.GoChat, k.GoUsers}},
		{"Lists", []key.Binding{k.Up, k.Down, k.Top, k.Bottom, k.Escape}},
		{"Books", []key.Binding{k.Open, k.New, k.Edit, k.Delete, k.Write}},
		{"Documents", []key.Binding{k.Upload, k.Ingest, k.Refresh}},
		{"Forms", []key.Binding{k.Tab, k.Save, k.Generate, k.Example, k.Switch}},
		{"Users", []key.Binding{k.ToggleActive, k.ToggleSuperuser}},
		{"General", []key.Binding{k.CycleTheme, k.Logout, k.Help, k.Quit}},
	}
}
