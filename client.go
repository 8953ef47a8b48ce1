package chatline

import (
	"context"
	"time"
)

// HistoryFetcher loads pages of channel history.
type HistoryFetcher interface {
	// FetchHistory returns up to count messages created strictly before
	// before, newest first or oldest first at the implementation's choice.
	// A zero before means "ending at now".
	FetchHistory(ctx context.Context, channel ChannelID, before time.Time, count int) ([]Message, error)
}

// Sender posts messages.
type Sender interface {
	SendMessage(ctx context.Context, channel ChannelID, content string, attachments []AttachmentRef) (Message, error)
}

// Client is the network client. Subscribe blocks on the caller's goroutine
// (the network context), invoking handler once per event in delivery order
// until ctx is done or the connection ends.
type Client interface {
	HistoryFetcher
	Sender
	Subscribe(ctx context.Context, handler func(Event)) error
}

// Layout is the rendering layer's view of scroll state. Values are in the
// layout's own unit (lines for a terminal, pixels for a toolkit).
type Layout interface {
	Extent() float64
	ViewportHeight() float64
	ScrollOffset() float64
	SetScrollOffset(offset float64)
}

// ErrorReporter surfaces failures to a human.
type ErrorReporter interface {
	Report(title, detail string)
}

// ErrorReporterFunc adapts a function to ErrorReporter.
type ErrorReporterFunc func(title, detail string)

// Report calls f(title, detail).
func (f ErrorReporterFunc) Report(title, detail string) { f(title, detail) }
