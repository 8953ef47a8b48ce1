package bubbletea

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings the model handles itself. Everything else goes
// to the text input, so no binding may use a bare printable key.
type KeyMap struct {
	Quit         key.Binding
	Send         key.Binding
	Follow       key.Binding
	Dismiss      key.Binding
	LineUp       key.Binding
	LineDown     key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding
	Top          key.Binding
	Bottom       key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:         key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Send:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Follow:       key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "follow")),
		Dismiss:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss error")),
		LineUp:       key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "scroll up")),
		LineDown:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "scroll down")),
		PageUp:       key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:     key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "half page up")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "half page down")),
		Top:          key.NewBinding(key.WithKeys("ctrl+home"), key.WithHelp("ctrl+home", "oldest")),
		Bottom:       key.NewBinding(key.WithKeys("ctrl+end"), key.WithHelp("ctrl+end", "newest")),
	}
}
