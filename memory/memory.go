// Package memory implements chatline.Client over a transcript held in memory.
// It stands in for a real chat service: history pages are served from the
// transcript, sends are accepted and echoed, and the transcript's live script
// is replayed to the subscriber.
package memory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/fwojciec/chatline"
	"github.com/fwojciec/chatline/logging"
	"github.com/rs/zerolog"
)

var _ chatline.Client = (*Client)(nil)

// ErrAlreadySubscribed is returned when Subscribe is called while another
// subscription is active.
var ErrAlreadySubscribed = errors.New("already subscribed")

// Client serves one channel. It is safe for concurrent use.
type Client struct {
	latency time.Duration
	now     func() time.Time
	logger  zerolog.Logger

	mu         sync.Mutex
	transcript chatline.Transcript
	nextID     chatline.MessageID
	echo       chan chatline.Event
	subscribed bool
}

// Option configures a Client.
type Option func(*Client)

// WithLatency delays every fetch and send by d.
func WithLatency(d time.Duration) Option {
	return func(c *Client) { c.latency = d }
}

// WithNow sets the clock used to stamp sent and scripted messages.
func WithNow(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.Component(l, "memory")
	}
}

// New creates a Client serving t. The history is copied and sorted.
func New(t chatline.Transcript, opts ...Option) *Client {
	c := &Client{
		now:    time.Now,
		logger: zerolog.Nop(),
		echo:   make(chan chatline.Event, 64),
	}
	for _, opt := range opts {
		opt(c)
	}
	t.History = slices.Clone(t.History)
	t.Live = slices.Clone(t.Live)
	slices.SortStableFunc(t.History, compare)
	for _, m := range t.History {
		c.nextID = max(c.nextID, m.ID)
	}
	c.transcript = t
	return c
}

func compare(a, b chatline.Message) int {
	if n := a.CreatedAt.Compare(b.CreatedAt); n != 0 {
		return n
	}
	return cmp.Compare(a.ID, b.ID)
}

// FetchHistory returns up to count messages created strictly before before,
// oldest first. A zero before returns the newest page.
func (c *Client) FetchHistory(ctx context.Context, channel chatline.ChannelID, before time.Time, count int) ([]chatline.Message, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if channel != c.transcript.Channel {
		return nil, fmt.Errorf("channel %s: %w", channel, chatline.ErrHistoryUnavailable)
	}
	if count <= 0 {
		return nil, nil
	}
	h := c.transcript.History
	end := len(h)
	if !before.IsZero() {
		end, _ = slices.BinarySearchFunc(h, before, func(m chatline.Message, t time.Time) int {
			return m.CreatedAt.Compare(t)
		})
	}
	start := max(0, end-count)
	c.logger.Debug().Time("before", before).Int("count", count).Int("returned", end-start).Msg("history page served")
	return slices.Clone(h[start:end]), nil
}

// SendMessage stores a message from the local user and echoes it to the
// subscriber, as a chat service would.
func (c *Client) SendMessage(ctx context.Context, channel chatline.ChannelID, content string, attachments []chatline.AttachmentRef) (chatline.Message, error) {
	if err := c.wait(ctx); err != nil {
		return chatline.Message{}, err
	}
	c.mu.Lock()
	if channel != c.transcript.Channel {
		c.mu.Unlock()
		return chatline.Message{}, fmt.Errorf("send to unknown channel %s", channel)
	}
	m := c.stamp(chatline.Message{
		AuthorID:    c.transcript.Self,
		AuthorName:  c.transcript.SelfName,
		Content:     content,
		Attachments: slices.Clone(attachments),
	})
	c.insert(m)
	subscribed := c.subscribed
	c.mu.Unlock()

	c.logger.Debug().Stringer("id", m.ID).Msg("message accepted")
	if subscribed {
		select {
		case c.echo <- chatline.EventMessageCreated{Message: m}:
		default:
			c.logger.Warn().Stringer("id", m.ID).Msg("echo dropped: subscriber is behind")
		}
	}
	return m, nil
}

// stamp fills in the fields the server owns. Callers hold c.mu.
func (c *Client) stamp(m chatline.Message) chatline.Message {
	if m.ID == 0 {
		c.nextID++
		m.ID = c.nextID
	} else {
		c.nextID = max(c.nextID, m.ID)
	}
	m.ChannelID = c.transcript.Channel
	if m.CreatedAt.IsZero() {
		m.CreatedAt = c.now()
	}
	return m
}

// Subscribe reports the local user, then replays the live script while
// delivering echoes of sent messages, until ctx is done. Only one
// subscription may be active at a time.
func (c *Client) Subscribe(ctx context.Context, handler func(chatline.Event)) error {
	c.mu.Lock()
	if c.subscribed {
		c.mu.Unlock()
		return ErrAlreadySubscribed
	}
	c.subscribed = true
	self := c.transcript.Self
	script := c.transcript.Live
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.subscribed = false
		c.mu.Unlock()
	}()

	handler(chatline.EventReady{Self: self})

	for i, step := range script {
		timer := time.NewTimer(step.After)
	wait:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil
			case evt := <-c.echo:
				handler(evt)
			case <-timer.C:
				break wait
			}
		}
		c.logger.Debug().Int("step", i).Str("event", fmt.Sprintf("%T", step.Event)).Msg("replaying live step")
		handler(c.apply(step.Event))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-c.echo:
			handler(evt)
		}
	}
}

// apply records the effect of a scripted event so later history pages agree
// with it, and returns the event as delivered.
func (c *Client) apply(evt chatline.Event) chatline.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch e := evt.(type) {
	case chatline.EventMessageCreated:
		m := c.stamp(e.Message)
		c.insert(m)
		return chatline.EventMessageCreated{Message: m}
	case chatline.EventMessageEdited:
		m := e.Message
		m.ChannelID = c.transcript.Channel
		if m.EditedAt.IsZero() {
			m.EditedAt = c.now()
		}
		if i := c.index(m.ID); i >= 0 {
			orig := c.transcript.History[i]
			orig.Content, orig.Attachments, orig.EditedAt = m.Content, m.Attachments, m.EditedAt
			c.transcript.History[i] = orig
			m = orig
		}
		return chatline.EventMessageEdited{Message: m}
	case chatline.EventMessageDeleted:
		if i := c.index(e.ID); i >= 0 {
			c.transcript.History = slices.Delete(c.transcript.History, i, i+1)
		}
		return chatline.EventMessageDeleted{ChannelID: c.transcript.Channel, ID: e.ID}
	case chatline.EventTypingStarted:
		e.ChannelID = c.transcript.Channel
		if e.At.IsZero() {
			e.At = c.now()
		}
		return e
	default:
		return evt
	}
}

// insert keeps the history sorted. Callers hold c.mu.
func (c *Client) insert(m chatline.Message) {
	i, _ := slices.BinarySearchFunc(c.transcript.History, m, compare)
	c.transcript.History = slices.Insert(c.transcript.History, i, m)
}

func (c *Client) index(id chatline.MessageID) int {
	return slices.IndexFunc(c.transcript.History, func(m chatline.Message) bool { return m.ID == id })
}

// Snapshot returns the current state as a transcript without a live script,
// suitable for saving.
func (c *Client) Snapshot() chatline.Transcript {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.transcript
	t.History = slices.Clone(t.History)
	t.Live = nil
	return t
}

func (c *Client) wait(ctx context.Context) error {
	if c.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
