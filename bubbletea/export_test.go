package bubbletea

import "github.com/charmbracelet/bubbles/viewport"

// BlockSeparator exports blockSeparator for testing.
func BlockSeparator(prev, curr Block) string {
	return blockSeparator(prev, curr)
}

// RenderContent exports the rendered message list for testing.
func RenderContent(m Model) string {
	return m.screen.render()
}

// Viewport exports the message list viewport for testing.
func Viewport(m Model) viewport.Model {
	return m.screen.viewport
}

// StatusLine exports statusLine for testing.
func StatusLine(m Model) string {
	return m.statusLine()
}

// Sanitize exports sanitize for testing.
func Sanitize(s string) string {
	return sanitize(s)
}

// Report exports the model's error reporter for testing.
func Report(m Model, title, detail string) {
	m.screen.Report(title, detail)
}
