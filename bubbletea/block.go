package bubbletea

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/fwojciec/chatline/timeline"
	"github.com/mattn/go-runewidth"
)

// maxAuthorWidth bounds the author column in a header.
const maxAuthorWidth = 24

// Block is a renderable element of the message list. View takes a width so
// the root model controls layout and blocks are testable in isolation.
type Block interface {
	View(width int) string
}

// EntryBlock renders one timeline entry. Merged entries omit the header.
type EntryBlock struct {
	entry  timeline.Entry
	self   bool
	styles Styles
}

// NewEntryBlock creates a block for e. Self selects the local user's author
// style.
func NewEntryBlock(e timeline.Entry, self bool, styles Styles) *EntryBlock {
	return &EntryBlock{entry: e, self: self, styles: styles}
}

// View renders the entry wrapped to width.
func (b *EntryBlock) View(width int) string {
	var lines []string
	if !b.entry.Merged {
		lines = append(lines, b.header())
	}

	if b.entry.Content != "" {
		lines = append(lines, wrap(sanitize(b.entry.Content), width))
	}
	if b.entry.Edited() {
		marker := b.styles.Edited.Render("(edited)")
		if n := len(lines); b.entry.Content != "" && fits(lines[n-1], marker, width) {
			lines[n-1] += " " + marker
		} else {
			lines = append(lines, marker)
		}
	}
	for _, a := range b.entry.Attachments {
		name := sanitize(a.Filename)
		if name == "" {
			name = a.ID
		}
		line := "[file] " + b.styles.Accent.Render(name)
		if a.Size > 0 {
			line += " " + b.styles.Muted.Render("("+humanize.Bytes(uint64(a.Size))+")")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (b *EntryBlock) header() string {
	name := strings.ReplaceAll(sanitize(b.entry.AuthorName), "\n", " ")
	if name == "" {
		name = "user " + b.entry.AuthorID.String()
	}
	name = runewidth.Truncate(name, maxAuthorWidth, "…")
	style := b.styles.Author
	if b.self {
		style = b.styles.Self
	}
	return style.Render(name) + " " + b.styles.Timestamp.Render(formatTimestamp(b.entry.CreatedAt))
}

// fits reports whether suffix fits after the last line of text.
func fits(text, suffix string, width int) bool {
	last := text[strings.LastIndex(text, "\n")+1:]
	return lipgloss.Width(last)+1+lipgloss.Width(suffix) <= width
}

// formatTimestamp renders t in local time.
func formatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

// BannerBlock marks the beginning of a channel's history.
type BannerBlock struct {
	channel string
	styles  Styles
}

// NewBannerBlock creates a banner for the named channel.
func NewBannerBlock(channel string, styles Styles) *BannerBlock {
	return &BannerBlock{channel: channel, styles: styles}
}

// View renders the banner centred in width.
func (b *BannerBlock) View(width int) string {
	text := b.styles.Muted.Render("beginning of #" + b.channel)
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, text)
}

// blockSeparator returns the separator between two adjacent blocks. Entries
// in the same author group sit on consecutive lines; everything else is
// separated by a blank line.
func blockSeparator(_, curr Block) string {
	if e, ok := curr.(*EntryBlock); ok && e.entry.Merged {
		return "\n"
	}
	return "\n\n"
}

var (
	_ Block = (*EntryBlock)(nil)
	_ Block = (*BannerBlock)(nil)
)
