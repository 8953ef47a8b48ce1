package bubbletea

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// tabWidth is the number of spaces a tab expands to.
const tabWidth = 4

// sanitize makes remote text safe to print: escape sequences and control
// characters are removed, CRLF and lone CR become LF, tabs become spaces.
func sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteByte('\n')
		case r == '\t':
			b.WriteString(strings.Repeat(" ", tabWidth))
		case r <= 0x1F || r == 0x7F:
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// wrap word-wraps s to width, breaking words that do not fit on a line.
func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Wrap(s, width, "")
}
