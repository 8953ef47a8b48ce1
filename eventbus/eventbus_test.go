package eventbus_test

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/chatline"
	"github.com/fwojciec/chatline/eventbus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder records the kinds it sees. It only overrides two handlers to
// exercise the NopReceiver defaults.
type recorder struct {
	eventbus.NopReceiver
	mu   sync.Mutex
	seen []chatline.Event
}

func (r *recorder) OnMessageCreated(e chatline.EventMessageCreated) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, e)
}

func (r *recorder) OnTypingStarted(e chatline.EventTypingStarted) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, e)
}

func (r *recorder) events() []chatline.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]chatline.Event(nil), r.seen...)
}

type panicker struct {
	eventbus.NopReceiver
}

func (panicker) OnMessageCreated(chatline.EventMessageCreated) {
	panic("boom")
}

func TestBus_Publish(t *testing.T) {
	t.Parallel()

	t.Run("fans out to every receiver", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New()
		a, b := &recorder{}, &recorder{}
		bus.Subscribe(a)
		bus.Subscribe(b)

		evt := chatline.EventMessageCreated{Message: chatline.Message{ID: 1}}
		bus.Publish(evt)

		assert.Equal(t, []chatline.Event{evt}, a.events())
		assert.Equal(t, []chatline.Event{evt}, b.events())
	})

	t.Run("unhandled kinds default to no-op", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New()
		r := &recorder{}
		bus.Subscribe(r)

		assert.NotPanics(t, func() {
			bus.Publish(chatline.EventConnected{})
			bus.Publish(chatline.EventReady{Self: 7})
			bus.Publish(chatline.EventMessageDeleted{ID: 1})
		})
		assert.Empty(t, r.events())
	})

	t.Run("routes each kind to its handler", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New()
		r := &recorder{}
		bus.Subscribe(r)

		typing := chatline.EventTypingStarted{ChannelID: 1, UserID: 2, At: time.Unix(10, 0)}
		bus.Publish(typing)

		assert.Equal(t, []chatline.Event{typing}, r.events())
	})

	t.Run("panicking receiver does not stop the others", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		bus := eventbus.New(eventbus.WithLogger(zerolog.New(&buf)))
		bus.Subscribe(panicker{})
		r := &recorder{}
		bus.Subscribe(r)

		assert.NotPanics(t, func() {
			bus.Publish(chatline.EventMessageCreated{Message: chatline.Message{ID: 1}})
		})
		assert.Len(t, r.events(), 1)
		assert.Contains(t, buf.String(), "receiver panicked")
		assert.Contains(t, buf.String(), `"component":"eventbus"`)
		assert.Contains(t, buf.String(), "boom")
	})

	t.Run("nil event is ignored", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New()
		r := &recorder{}
		bus.Subscribe(r)
		bus.Publish(nil)
		assert.Empty(t, r.events())
	})
}

func TestBus_Unsubscribe(t *testing.T) {
	t.Parallel()

	t.Run("removed receiver stops receiving", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New()
		r := &recorder{}
		id := bus.Subscribe(r)
		require.Equal(t, 1, bus.Len())

		assert.True(t, bus.Unsubscribe(id))
		assert.Equal(t, 0, bus.Len())

		bus.Publish(chatline.EventMessageCreated{Message: chatline.Message{ID: 1}})
		assert.Empty(t, r.events())
	})

	t.Run("unknown id reports false", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New()
		assert.False(t, bus.Unsubscribe("missing"))
	})

	t.Run("receiver may unsubscribe itself during fan-out", func(t *testing.T) {
		t.Parallel()
		bus := eventbus.New()
		self := &selfRemover{bus: bus}
		self.id = bus.Subscribe(self)
		after := &recorder{}
		bus.Subscribe(after)

		bus.Publish(chatline.EventMessageCreated{Message: chatline.Message{ID: 1}})

		assert.Equal(t, 1, self.calls)
		assert.Len(t, after.events(), 1)
		assert.Equal(t, 1, bus.Len())
	})
}

type selfRemover struct {
	eventbus.NopReceiver
	bus   *eventbus.Bus
	id    string
	calls int
}

func (s *selfRemover) OnMessageCreated(chatline.EventMessageCreated) {
	s.calls++
	s.bus.Unsubscribe(s.id)
}

func TestBus_ConcurrentPublish(t *testing.T) {
	t.Parallel()
	bus := eventbus.New()
	r := &recorder{}
	bus.Subscribe(r)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(chatline.EventMessageCreated{Message: chatline.Message{ID: chatline.MessageID(i + 1)}})
		}()
	}
	wg.Wait()
	assert.Len(t, r.events(), 8)
}
