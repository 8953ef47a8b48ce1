package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/chatline"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	Author    lipgloss.Style
	Self      lipgloss.Style
	Timestamp lipgloss.Style
	Edited    lipgloss.Style
	Typing    lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Accent    lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t chatline.Theme) Styles {
	return Styles{
		Author:    lipgloss.NewStyle().Foreground(ansiColor(t.Author)).Bold(true),
		Self:      lipgloss.NewStyle().Foreground(ansiColor(t.SelfName)).Bold(true),
		Timestamp: lipgloss.NewStyle().Foreground(ansiColor(t.Timestamp)).Faint(true),
		Edited:    lipgloss.NewStyle().Foreground(ansiColor(t.Edited)).Italic(true),
		Typing:    lipgloss.NewStyle().Foreground(ansiColor(t.Typing)).Italic(true),
		Error:     lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Muted:     lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:    lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
