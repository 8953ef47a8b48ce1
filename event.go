package chatline

import "time"

// Event is a sealed interface representing something the remote service told
// us about. Events are immutable once published; they carry no identity of
// their own and are never deduplicated. Only their effects on a timeline are.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventConnected signals that the network client established a session.
type EventConnected struct{}

func (EventConnected) event() {}

// EventDisconnected signals that the network client lost its session.
// Err is nil for a clean shutdown.
type EventDisconnected struct {
	Err error
}

func (EventDisconnected) event() {}

// EventReady signals that the initial state has been received. Self is the
// id of the logged-in user.
type EventReady struct {
	Self UserID
}

func (EventReady) event() {}

// EventMessageCreated carries a newly created message.
type EventMessageCreated struct {
	Message Message
}

func (EventMessageCreated) event() {}

// EventMessageEdited carries the new state of an edited message.
type EventMessageEdited struct {
	Message Message
}

func (EventMessageEdited) event() {}

// EventMessageDeleted signals that a message was removed.
type EventMessageDeleted struct {
	ChannelID ChannelID
	ID        MessageID
}

func (EventMessageDeleted) event() {}

// EventTypingStarted signals that a user started (or is still) typing.
// The remote service repeats it periodically while the user keeps typing.
type EventTypingStarted struct {
	ChannelID ChannelID
	UserID    UserID
	At        time.Time
}

func (EventTypingStarted) event() {}

// EventPresenceChanged is published locally whenever the set of users typing
// in a channel changes. Typing is ordered by when each user started typing.
type EventPresenceChanged struct {
	ChannelID ChannelID
	Typing    []UserID
}

func (EventPresenceChanged) event() {}

// Interface compliance checks.
var (
	_ Event = EventConnected{}
	_ Event = EventDisconnected{}
	_ Event = EventReady{}
	_ Event = EventMessageCreated{}
	_ Event = EventMessageEdited{}
	_ Event = EventMessageDeleted{}
	_ Event = EventTypingStarted{}
	_ Event = EventPresenceChanged{}
)
