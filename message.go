package chatline

import (
	"fmt"
	"strconv"
	"time"
)

// MessageID identifies a message. Ids come from the remote service and grow
// roughly with creation time, but delivery order is not guaranteed to match.
type MessageID uint64

// String returns the decimal form of the id.
func (id MessageID) String() string { return strconv.FormatUint(uint64(id), 10) }

// UserID identifies a user.
type UserID uint64

// String returns the decimal form of the id.
func (id UserID) String() string { return strconv.FormatUint(uint64(id), 10) }

// ChannelID identifies a channel.
type ChannelID uint64

// String returns the decimal form of the id.
func (id ChannelID) String() string { return strconv.FormatUint(uint64(id), 10) }

// AttachmentRef is an opaque handle to an attachment. Resolving it into
// something displayable is the renderer's job.
type AttachmentRef struct {
	ID       string
	Filename string
	URL      string
	Size     int64
}

// Message is a message as delivered by the remote service.
type Message struct {
	ID          MessageID
	ChannelID   ChannelID
	AuthorID    UserID
	AuthorName  string
	CreatedAt   time.Time // authoritative for ordering
	Content     string
	Attachments []AttachmentRef
	EditedAt    time.Time // zero if never edited
}

// Validate checks the fields the timeline depends on.
func (m Message) Validate() error {
	if m.ID == 0 {
		return fmt.Errorf("missing id: %w", ErrMalformedMessage)
	}
	if m.CreatedAt.IsZero() {
		return fmt.Errorf("message %s has no timestamp: %w", m.ID, ErrMalformedMessage)
	}
	return nil
}

// Direction hints where a batch lands relative to what is already loaded.
// Actual placement is always computed from timestamps; the hint only selects
// the cheapest repair path.
type Direction int

const (
	Append  Direction = iota // live messages and sends, at the newest end
	Prepend                  // history pages, at the oldest end
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Append:
		return "append"
	case Prepend:
		return "prepend"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}
