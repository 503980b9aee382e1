package ui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the application
type KeyMap struct {
	// Navigation
	Up          key.Binding
	Down        key.Binding
	NextProject key.Binding
	PrevProject key.Binding

	// Timer
	Start  key.Binding
	Stop   key.Binding
	Toggle key.Binding

	// Tree
	NewProject key.Binding
	NewTask    key.Binding
	Delete     key.Binding

	// Store
	Save      key.Binding
	OpenStore key.Binding
	NewStore  key.Binding

	// General
	ThemeCycle key.Binding
	Help       key.Binding
	Quit       key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
	Yes        key.Binding
	No         key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		NextProject: key.NewBinding(
			key.WithKeys("right", "l", "tab"),
			key.WithHelp("→/l", "next project"),
		),
		PrevProject: key.NewBinding(
			key.WithKeys("left", "h", "shift+tab"),
			key.WithHelp("←/h", "prev project"),
		),

		Start: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start"),
		),
		Stop: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "stop"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "start/stop"),
		),

		NewProject: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "new project"),
		),
		NewTask: key.NewBinding(
			key.WithKeys("a", "ctrl+t"),
			key.WithHelp("a", "new task"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete task"),
		),

		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "save"),
		),
		OpenStore: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open store"),
		),
		NewStore: key.NewBinding(
			key.WithKeys("O"),
			key.WithHelp("O", "new store"),
		),

		ThemeCycle: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}

// ShortHelp returns short help bindings (for status bar)
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.NewTask, k.NewProject, k.Help, k.Quit}
}

// FullHelp returns full help bindings (for help view)
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextProject, k.PrevProject},
		{k.Start, k.Stop, k.Toggle},
		{k.NewProject, k.NewTask, k.Delete},
		{k.Save, k.OpenStore, k.NewStore},
		{k.ThemeCycle, k.Help, k.Quit},
	}
}
