package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the explorer.
type KeyMap struct {
	NextPane    key.Binding
	PrevPane    key.Binding
	Up          key.Binding
	Down        key.Binding
	Scan        key.Binding
	Connect     key.Binding
	Disconnect  key.Binding
	Read        key.Binding
	Notify      key.Binding
	Write       key.Binding
	ClearLog    key.Binding
	ExpandValue key.Binding
	Quit        key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextPane: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next pane"),
		),
		PrevPane: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev pane"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Scan: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "scan"),
		),
		Connect: key.NewBinding(
			key.WithKeys("c", "enter"),
			key.WithHelp("c/enter", "connect/read"),
		),
		Disconnect: key.NewBinding(
			key.WithKeys("d", "esc"),
			key.WithHelp("d", "disconnect"),
		),
		Read: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "read"),
		),
		Notify: key.NewBinding(
			key.WithKeys("n", " "),
			key.WithHelp("n", "notify"),
		),
		Write: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "write"),
		),
		ClearLog: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "clear log"),
		),
		ExpandValue: key.NewBinding(
			key.WithKeys("h"),
			key.WithHelp("h", "expand value"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Scan, k.Connect, k.Read, k.Notify, k.Write, k.ClearLog, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextPane, k.PrevPane, k.Up, k.Down},
		{k.Scan, k.Connect, k.Disconnect},
		{k.Read, k.Notify, k.Write, k.ClearLog, k.ExpandValue, k.Quit},
	}
}
