// Package typing tracks which users are currently typing in a channel.
package typing

import (
	"slices"
	"strings"
	"time"

	"github.com/fwojciec/chatline"
	"github.com/fwojciec/chatline/logging"
	"github.com/rs/zerolog"
)

// DefaultTimeout is how long a typing event keeps a user in the set. It must
// exceed the interval at which the remote service repeats typing events.
const DefaultTimeout = 10 * time.Second

// Publisher receives presence changes.
type Publisher interface {
	Publish(evt chatline.Event)
}

// Tracker is owned by the UI context and is not safe for concurrent use.
// Delayed expiry checks are scheduled through the after function, which must
// run its callback on the UI context.
type Tracker struct {
	channel chatline.ChannelID
	bus     Publisher
	after   func(time.Duration, func())
	timeout time.Duration
	self    chatline.UserID
	logger  zerolog.Logger

	// latest holds the newest typing timestamp seen per user in the set.
	latest map[chatline.UserID]time.Time
	order  []chatline.UserID
	closed bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithTimeout sets how long a typing event lasts.
func WithTimeout(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithSelf sets the local user, whose typing events are ignored.
func WithSelf(id chatline.UserID) Option {
	return func(t *Tracker) { t.self = id }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logging.Component(l, "typing")
	}
}

// New creates a Tracker for channel that publishes presence changes to bus.
func New(channel chatline.ChannelID, bus Publisher, after func(time.Duration, func()), opts ...Option) *Tracker {
	t := &Tracker{
		channel: channel,
		bus:     bus,
		after:   after,
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
		latest:  make(map[chatline.UserID]time.Time),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SetSelf sets the local user once it is known.
func (t *Tracker) SetSelf(id chatline.UserID) { t.self = id }

// OnTyping records that user was typing at the given time and schedules the
// expiry check.
func (t *Tracker) OnTyping(user chatline.UserID, at time.Time) {
	if t.closed || (t.self != 0 && user == t.self) {
		return
	}
	prev, ok := t.latest[user]
	if !ok || at.After(prev) {
		t.latest[user] = at
	}
	if !ok {
		t.order = append(t.order, user)
		t.publish()
	}
	t.after(t.timeout, func() { t.expire(user, at) })
}

// expire removes user unless a newer typing event arrived after the one that
// scheduled this check.
func (t *Tracker) expire(user chatline.UserID, at time.Time) {
	if t.closed {
		return
	}
	latest, ok := t.latest[user]
	if !ok || latest.After(at) {
		return
	}
	t.logger.Debug().Stringer("user", user).Msg("typing expired")
	t.remove(user)
}

// OnMessageSentBy removes user immediately: sending a message ends typing.
func (t *Tracker) OnMessageSentBy(user chatline.UserID) {
	if t.closed {
		return
	}
	if _, ok := t.latest[user]; ok {
		t.remove(user)
	}
}

func (t *Tracker) remove(user chatline.UserID) {
	delete(t.latest, user)
	t.order = slices.DeleteFunc(t.order, func(id chatline.UserID) bool { return id == user })
	t.publish()
}

func (t *Tracker) publish() {
	t.bus.Publish(chatline.EventPresenceChanged{
		ChannelID: t.channel,
		Typing:    t.Typing(),
	})
}

// Typing returns the users currently typing in the order they started.
func (t *Tracker) Typing() []chatline.UserID {
	return slices.Clone(t.order)
}

// IsTyping reports whether user is in the set.
func (t *Tracker) IsTyping(user chatline.UserID) bool {
	_, ok := t.latest[user]
	return ok
}

// Close empties the set and turns pending expiry checks into no-ops.
func (t *Tracker) Close() {
	t.closed = true
	clear(t.latest)
	t.order = nil
}

// Describe renders a typing line such as "alice, bob are typing...".
// It returns an empty string when nobody is typing.
func Describe(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0] + " is typing..."
	default:
		return strings.Join(names, ", ") + " are typing..."
	}
}
