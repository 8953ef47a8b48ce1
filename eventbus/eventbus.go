// Package eventbus provides the process-wide publish/subscribe registry that
// fans chatline events out to UI components.
package eventbus

import (
	"fmt"
	"sync"

	"github.com/fwojciec/chatline"
	"github.com/fwojciec/chatline/logging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Receiver handles events, one method per event kind. Embed NopReceiver to
// get no-op defaults and override only the kinds of interest.
type Receiver interface {
	OnConnected(chatline.EventConnected)
	OnDisconnected(chatline.EventDisconnected)
	OnReady(chatline.EventReady)
	OnMessageCreated(chatline.EventMessageCreated)
	OnMessageEdited(chatline.EventMessageEdited)
	OnMessageDeleted(chatline.EventMessageDeleted)
	OnTypingStarted(chatline.EventTypingStarted)
	OnPresenceChanged(chatline.EventPresenceChanged)
}

// NopReceiver implements Receiver with methods that do nothing.
type NopReceiver struct{}

func (NopReceiver) OnConnected(chatline.EventConnected)             {}
func (NopReceiver) OnDisconnected(chatline.EventDisconnected)       {}
func (NopReceiver) OnReady(chatline.EventReady)                     {}
func (NopReceiver) OnMessageCreated(chatline.EventMessageCreated)   {}
func (NopReceiver) OnMessageEdited(chatline.EventMessageEdited)     {}
func (NopReceiver) OnMessageDeleted(chatline.EventMessageDeleted)   {}
func (NopReceiver) OnTypingStarted(chatline.EventTypingStarted)     {}
func (NopReceiver) OnPresenceChanged(chatline.EventPresenceChanged) {}

var _ Receiver = NopReceiver{}

type subscription struct {
	id       string
	receiver Receiver
}

// Bus is a thread-safe registry of receivers. Publish fans an event out to
// every receiver synchronously on the calling goroutine; cross-goroutine
// delivery is the dispatch package's job.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	logger zerolog.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report receiver panics.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Bus) {
		b.logger = logging.Component(l, "eventbus")
	}
}

// New creates an empty Bus.
func New(opts ...Option) *Bus {
	b := &Bus{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers r and returns a subscription id for Unsubscribe.
// Receivers are called in subscription order.
func (b *Bus) Subscribe(r Receiver) string {
	id := uuid.NewString()
	b.mu.Lock()
	b.subs = append(b.subs, subscription{id: id, receiver: r})
	b.mu.Unlock()
	return id
}

// Unsubscribe removes the subscription with the given id. It reports whether
// a subscription was removed. A receiver may unsubscribe itself from inside a
// handler; the current fan-out still completes.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Publish delivers evt to every receiver. A receiver that panics is logged
// and skipped; the others still run.
func (b *Bus) Publish(evt chatline.Event) {
	if evt == nil {
		return
	}
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(s, evt)
	}
}

func (b *Bus) deliver(s subscription, evt chatline.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Str("subscription", s.id).
				Str("event", fmt.Sprintf("%T", evt)).
				Interface("panic", r).
				Msg("receiver panicked")
		}
	}()
	dispatch(s.receiver, evt, b.logger)
}

// dispatch routes evt to the handler for its kind.
func dispatch(r Receiver, evt chatline.Event, logger zerolog.Logger) {
	switch e := evt.(type) {
	case chatline.EventConnected:
		r.OnConnected(e)
	case chatline.EventDisconnected:
		r.OnDisconnected(e)
	case chatline.EventReady:
		r.OnReady(e)
	case chatline.EventMessageCreated:
		r.OnMessageCreated(e)
	case chatline.EventMessageEdited:
		r.OnMessageEdited(e)
	case chatline.EventMessageDeleted:
		r.OnMessageDeleted(e)
	case chatline.EventTypingStarted:
		r.OnTypingStarted(e)
	case chatline.EventPresenceChanged:
		r.OnPresenceChanged(e)
	default:
		logger.Warn().Str("event", fmt.Sprintf("%T", evt)).Msg("unhandled event kind")
	}
}
