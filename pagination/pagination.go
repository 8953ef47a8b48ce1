// Package pagination governs on-demand history loads for one channel. At most
// one fetch is in flight at a time; the fetch runs on its own goroutine and
// its result is posted back to the UI context before touching the timeline.
package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/fwojciec/chatline"
	"github.com/fwojciec/chatline/logging"
	"github.com/fwojciec/chatline/timeline"
	"github.com/rs/zerolog"
)

// Defaults for page sizes and the scroll trigger.
const (
	DefaultInitialBatch   = 40
	DefaultMoreBatch      = 15
	DefaultPrefetchScreen = 1.5
)

// State is the controller state.
type State int

const (
	Idle State = iota
	Loading
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// NearOldest reports whether a scroll offset is within screens viewport
// heights of the oldest loaded content, the point at which the scroll layer
// should call LoadMore.
func NearOldest(offset, viewportHeight, screens float64) bool {
	return offset < viewportHeight*screens
}

// Hooks lets the owner bracket each page insertion, for example to capture
// and restore scroll position.
type Hooks struct {
	// BeforeInsert runs on the UI context just before a page is inserted.
	BeforeInsert func(dir chatline.Direction)
	// AfterInsert runs on the UI context after a page was inserted.
	AfterInsert func(dir chatline.Direction, inserted int)
}

// Controller is the pagination state machine. Apart from the fetch itself,
// everything runs on the UI context.
type Controller struct {
	channel  chatline.ChannelID
	fetcher  chatline.HistoryFetcher
	timeline *timeline.Timeline
	post     func(func()) bool

	ctx          context.Context
	initialBatch int
	reporter     chatline.ErrorReporter
	hooks        Hooks
	logger       zerolog.Logger

	state     State
	exhausted bool
	closed    bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithInitialBatch sets the page size used by LoadInitial.
func WithInitialBatch(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.initialBatch = n
		}
	}
}

// WithReporter sets where fetch failures are reported.
func WithReporter(r chatline.ErrorReporter) Option {
	return func(c *Controller) {
		c.reporter = r
	}
}

// WithHooks sets page insertion hooks.
func WithHooks(h Hooks) Option {
	return func(c *Controller) {
		c.hooks = h
	}
}

// WithContext sets the context passed to fetches.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) {
		c.ctx = ctx
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logging.Component(l, "pagination")
	}
}

// New creates a Controller that loads history for channel into tl. post
// schedules a closure on the UI context and reports false if the UI context
// is gone.
func New(channel chatline.ChannelID, fetcher chatline.HistoryFetcher, tl *timeline.Timeline, post func(func()) bool, opts ...Option) *Controller {
	c := &Controller{
		channel:      channel,
		fetcher:      fetcher,
		timeline:     tl,
		post:         post,
		ctx:          context.Background(),
		initialBatch: DefaultInitialBatch,
		reporter:     chatline.ErrorReporterFunc(func(string, string) {}),
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Exhausted reports whether a page came back short, meaning there is no older
// history to load.
func (c *Controller) Exhausted() bool { return c.exhausted }

// LoadInitial fetches the newest page. It is valid only while the timeline is
// empty and no load is in flight; otherwise it does nothing. It reports
// whether a fetch was started.
func (c *Controller) LoadInitial() bool {
	if !c.acquire("initial") {
		return false
	}
	if c.timeline.Len() > 0 {
		c.state = Idle
		c.logger.Debug().Msg("initial load skipped: timeline not empty")
		return false
	}
	c.start(time.Time{}, c.initialBatch, chatline.Append)
	return true
}

// LoadMore fetches extra entries older than the oldest loaded one. It does
// nothing while a load is in flight or once history is exhausted. It reports
// whether a fetch was started.
func (c *Controller) LoadMore(extra int) bool {
	if extra <= 0 || c.exhausted {
		return false
	}
	if !c.acquire("more") {
		return false
	}
	before, _ := c.timeline.OldestTimestamp()
	c.start(before, extra, chatline.Prepend)
	return true
}

// acquire moves Idle to Loading.
func (c *Controller) acquire(kind string) bool {
	if c.closed {
		return false
	}
	if c.state == Loading {
		c.logger.Debug().Str("kind", kind).Msg("load rejected: already loading")
		return false
	}
	c.state = Loading
	return true
}

func (c *Controller) start(before time.Time, count int, dir chatline.Direction) {
	log := c.logger.With().
		Str("channel", c.channel.String()).
		Time("before", before).
		Int("count", count).
		Stringer("direction", dir).
		Logger()
	log.Debug().Msg("fetching history")

	go func() {
		msgs, err := c.fetcher.FetchHistory(c.ctx, c.channel, before, count)
		posted := c.post(func() { c.complete(msgs, err, count, dir, log) })
		if !posted {
			log.Debug().Msg("history result dropped: ui closed")
		}
	}()
}

// complete runs on the UI context.
func (c *Controller) complete(msgs []chatline.Message, err error, count int, dir chatline.Direction, log zerolog.Logger) {
	if c.closed {
		log.Debug().Msg("history result ignored: view closed")
		return
	}
	c.state = Idle
	if err != nil {
		log.Error().Err(err).Msg("history fetch failed")
		c.reporter.Report("Failure loading history", err.Error())
		return
	}

	if c.hooks.BeforeInsert != nil {
		c.hooks.BeforeInsert(dir)
	}
	n := c.timeline.InsertBatch(msgs, dir)
	if len(msgs) < count {
		c.exhausted = true
	}
	log.Debug().Int("received", len(msgs)).Int("inserted", n).Bool("exhausted", c.exhausted).Msg("history loaded")
	if c.hooks.AfterInsert != nil {
		c.hooks.AfterInsert(dir, n)
	}
}

// Close marks the controller dead. A fetch still in flight completes on its
// goroutine but its result is discarded.
func (c *Controller) Close() {
	c.closed = true
	c.state = Idle
}
