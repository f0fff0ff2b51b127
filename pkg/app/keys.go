package app

import (
	"github.com/charmbracelet/bubbles/key"

	"gitlab.com/tinyland/lab/chain-pulse/pkg/dashboard"
)

// KeyMap holds every key binding of the dashboard.
type KeyMap struct {
	Quit         key.Binding
	Left         key.Binding
	Right        key.Binding
	Up           key.Binding
	Down         key.Binding
	Sort         key.Binding
	Delta        key.Binding
	Focus        key.Binding
	NextScreen   key.Binding
	Sync         key.Binding
	Endorsements key.Binding
	Baking       key.Binding
	Mempool      key.Binding
	Mouse        key.Binding
	Help         key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "column left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "column right"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "row up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "row down"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort column"),
		),
		Delta: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delta times"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch table"),
		),
		NextScreen: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next screen"),
		),
		Sync: key.NewBinding(
			key.WithKeys("1", "f1"),
			key.WithHelp("1", "synchronization"),
		),
		Endorsements: key.NewBinding(
			key.WithKeys("2", "f2"),
			key.WithHelp("2", "endorsements"),
		),
		Baking: key.NewBinding(
			key.WithKeys("3", "f3"),
			key.WithHelp("3", "baking"),
		),
		Mempool: key.NewBinding(
			key.WithKeys("4", "f4"),
			key.WithHelp("4", "mempool"),
		),
		Mouse: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mouse capture"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Sort, k.Delta, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.Sort, k.Delta, k.Focus, k.Mouse},
		{k.NextScreen, k.Sync, k.Endorsements, k.Baking, k.Mempool},
		{k.Help, k.Quit},
	}
}

type screenKey struct {
	binding key.Binding
	screen  dashboard.Screen
}

func (k KeyMap) screenKeys() []screenKey {
	return []screenKey{
		{k.Sync, dashboard.ScreenSync},
		{k.Endorsements, dashboard.ScreenEndorsements},
		{k.Baking, dashboard.ScreenBaking},
		{k.Mempool, dashboard.ScreenMempool},
	}
}
