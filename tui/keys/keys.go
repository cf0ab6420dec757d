package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the application.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Escape    key.Binding
	Quit      key.Binding
	Dashboard key.Binding
	Refresh   key.Binding
	Theme     key.Binding
	Help      key.Binding
}

// DefaultKeyMap provides the default set of key bindings.
var DefaultKeyMap = KeyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down/j", "down")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Dashboard: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "dashboards")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reconnect")),
	Theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
}
