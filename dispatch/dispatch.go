// Package dispatch moves work from network goroutines onto the single UI
// context. The Bridge owns one ordered queue; Forward and Post are the only
// entry points that may be called from other goroutines.
package dispatch

import (
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/chatline"
	"github.com/fwojciec/chatline/logging"
	"github.com/rs/zerolog"
)

// Publisher fans an event out to receivers on the calling goroutine.
type Publisher interface {
	Publish(chatline.Event)
}

type job struct {
	seq uint64
	fn  func()
}

// Bridge queues closures produced on any goroutine and runs them, in enqueue
// order, when the UI context calls Drain. Enqueueing never blocks on the UI.
type Bridge struct {
	bus    Publisher
	logger zerolog.Logger

	mu      sync.Mutex
	queue   []job
	seq     uint64
	closed  bool
	ready   chan struct{} // capacity 1; signalled when the queue becomes non-empty
	done    chan struct{} // closed by Close
	last    uint64        // last sequence number run; UI context only
	running bool          // UI context only
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logging.Component(l, "dispatch")
	}
}

// New creates a Bridge that publishes forwarded events to bus.
func New(bus Publisher, opts ...Option) *Bridge {
	b := &Bridge{
		bus:    bus,
		logger: zerolog.Nop(),
		ready:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Forward schedules evt for publication on the UI context. It is safe to call
// from any goroutine and returns immediately. It reports false when the
// bridge has been closed and the event was dropped.
func (b *Bridge) Forward(evt chatline.Event) bool {
	ok := b.Post(func() { b.bus.Publish(evt) })
	if !ok {
		b.logger.Debug().Str("event", fmt.Sprintf("%T", evt)).Msg("dropped event after close")
	}
	return ok
}

// Post schedules fn to run on the UI context. It is safe to call from any
// goroutine. It reports false when the bridge has been closed.
func (b *Bridge) Post(fn func()) bool {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return false
	}
	b.seq++
	b.queue = append(b.queue, job{seq: b.seq, fn: fn})
	b.mu.Unlock()

	select {
	case b.ready <- struct{}{}:
	default:
	}
	return true
}

// After runs fn on the UI context once d has elapsed. Timers that fire after
// Close are dropped.
func (b *Bridge) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { b.Post(fn) })
}

// Ready returns a channel that receives a value when work is queued. A single
// receive may stand for many queued closures; call Drain after each receive.
func (b *Bridge) Ready() <-chan struct{} { return b.ready }

// Done returns a channel that is closed when the bridge is closed.
func (b *Bridge) Done() <-chan struct{} { return b.done }

// Drain runs all queued closures on the calling goroutine, which must be the
// UI context, and returns how many ran. Closures queued while draining run in
// the same call. A panicking closure is logged and does not stop the rest.
func (b *Bridge) Drain() int {
	if b.running {
		// A closure called Drain; the outer call will pick up new work.
		return 0
	}
	b.running = true
	defer func() { b.running = false }()

	n := 0
	for {
		b.mu.Lock()
		if b.closed || len(b.queue) == 0 {
			b.queue = nil
			b.mu.Unlock()
			return n
		}
		batch := b.queue
		b.queue = nil
		b.mu.Unlock()

		for i, j := range batch {
			if b.Closed() {
				return n + i
			}
			if j.seq <= b.last {
				b.logger.Error().Uint64("seq", j.seq).Uint64("last", b.last).Msg("out of order job")
			}
			b.last = j.seq
			b.run(j)
		}
		n += len(batch)
	}
}

func (b *Bridge) run(j job) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().Uint64("seq", j.seq).Interface("panic", r).Msg("queued work panicked")
		}
	}()
	j.fn()
}

// Pending returns the number of queued closures.
func (b *Bridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Close tears the bridge down. Queued work is discarded and later Forward and
// Post calls are no-ops. Close is idempotent.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	dropped := len(b.queue)
	b.queue = nil
	close(b.done)
	if dropped > 0 {
		b.logger.Debug().Int("dropped", dropped).Msg("discarded queued work on close")
	}
}

// Closed reports whether Close has been called.
func (b *Bridge) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}
