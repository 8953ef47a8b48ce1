package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/chatline"
	"github.com/fwojciec/chatline/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func transcript(n int) chatline.Transcript {
	t := chatline.Transcript{Self: 9, SelfName: "me", Channel: 1}
	// Deliberately out of order.
	for i := n; i >= 1; i-- {
		t.History = append(t.History, chatline.Message{
			ID:        chatline.MessageID(i),
			ChannelID: 1,
			AuthorID:  2,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return t
}

func ids(msgs []chatline.Message) []chatline.MessageID {
	out := make([]chatline.MessageID, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func TestClient_FetchHistory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("zero cursor returns newest page oldest first", func(t *testing.T) {
		t.Parallel()
		c := memory.New(transcript(10))

		got, err := c.FetchHistory(ctx, 1, time.Time{}, 3)

		require.NoError(t, err)
		assert.Equal(t, []chatline.MessageID{8, 9, 10}, ids(got))
	})

	t.Run("cursor is exclusive", func(t *testing.T) {
		t.Parallel()
		c := memory.New(transcript(10))

		got, err := c.FetchHistory(ctx, 1, base.Add(8*time.Minute), 3)

		require.NoError(t, err)
		assert.Equal(t, []chatline.MessageID{5, 6, 7}, ids(got))
	})

	t.Run("short page at the start of history", func(t *testing.T) {
		t.Parallel()
		c := memory.New(transcript(10))

		got, err := c.FetchHistory(ctx, 1, base.Add(3*time.Minute), 15)

		require.NoError(t, err)
		assert.Equal(t, []chatline.MessageID{1, 2}, ids(got))
	})

	t.Run("unknown channel", func(t *testing.T) {
		t.Parallel()
		c := memory.New(transcript(1))

		_, err := c.FetchHistory(ctx, 2, time.Time{}, 3)

		assert.ErrorIs(t, err, chatline.ErrHistoryUnavailable)
	})

	t.Run("latency honours cancellation", func(t *testing.T) {
		t.Parallel()
		c := memory.New(transcript(1), memory.WithLatency(time.Hour))
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := c.FetchHistory(cctx, 1, time.Time{}, 3)

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestClient_SendMessage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := base.Add(time.Hour)

	t.Run("assigns id, author and time", func(t *testing.T) {
		t.Parallel()
		c := memory.New(transcript(3), memory.WithNow(func() time.Time { return now }))

		m, err := c.SendMessage(ctx, 1, "hello", []chatline.AttachmentRef{{ID: "a", Filename: "x.txt"}})

		require.NoError(t, err)
		assert.Equal(t, chatline.MessageID(4), m.ID)
		assert.Equal(t, chatline.UserID(9), m.AuthorID)
		assert.Equal(t, "me", m.AuthorName)
		assert.Equal(t, chatline.ChannelID(1), m.ChannelID)
		assert.True(t, now.Equal(m.CreatedAt))
		assert.Len(t, m.Attachments, 1)

		page, err := c.FetchHistory(ctx, 1, time.Time{}, 1)
		require.NoError(t, err)
		assert.Equal(t, []chatline.MessageID{4}, ids(page))
	})

	t.Run("unknown channel fails", func(t *testing.T) {
		t.Parallel()
		c := memory.New(transcript(1))

		_, err := c.SendMessage(ctx, 5, "hello", nil)

		assert.ErrorContains(t, err, "unknown channel")
	})
}

// collector gathers events delivered by Subscribe.
type collector struct {
	mu     sync.Mutex
	events []chatline.Event
	signal chan struct{}
}

func newCollector() *collector { return &collector{signal: make(chan struct{}, 128)} }

func (c *collector) handle(evt chatline.Event) {
	c.mu.Lock()
	c.events = append(c.events, evt)
	c.mu.Unlock()
	c.signal <- struct{}{}
}

func (c *collector) await(t *testing.T, n int) []chatline.Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		c.mu.Lock()
		if len(c.events) >= n {
			out := append([]chatline.Event(nil), c.events...)
			c.mu.Unlock()
			return out
		}
		c.mu.Unlock()
		select {
		case <-c.signal:
		case <-deadline:
			t.Fatalf("timed out waiting for %d events", n)
		}
	}
}

func TestClient_Subscribe(t *testing.T) {
	t.Parallel()

	t.Run("replays the live script and records its effects", func(t *testing.T) {
		t.Parallel()
		now := base.Add(time.Hour)
		tr := transcript(3)
		tr.Live = []chatline.ScriptStep{
			{Event: chatline.EventTypingStarted{UserID: 2}},
			{After: time.Millisecond, Event: chatline.EventMessageCreated{Message: chatline.Message{AuthorID: 2, Content: "hi"}}},
			{Event: chatline.EventMessageEdited{Message: chatline.Message{ID: 1, Content: "edited"}}},
			{Event: chatline.EventMessageDeleted{ID: 2}},
		}
		c := memory.New(tr, memory.WithNow(func() time.Time { return now }))
		col := newCollector()
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- c.Subscribe(ctx, col.handle) }()

		events := col.await(t, 5)
		cancel()
		require.NoError(t, <-done)

		assert.Equal(t, chatline.EventReady{Self: 9}, events[0])
		assert.Equal(t, chatline.EventTypingStarted{ChannelID: 1, UserID: 2, At: now}, events[1])

		created := events[2].(chatline.EventMessageCreated)
		assert.Equal(t, chatline.MessageID(4), created.Message.ID)
		assert.Equal(t, chatline.ChannelID(1), created.Message.ChannelID)
		assert.True(t, now.Equal(created.Message.CreatedAt))

		edited := events[3].(chatline.EventMessageEdited)
		assert.Equal(t, "edited", edited.Message.Content)
		assert.True(t, now.Equal(edited.Message.EditedAt))
		assert.True(t, base.Add(time.Minute).Equal(edited.Message.CreatedAt))

		assert.Equal(t, chatline.EventMessageDeleted{ChannelID: 1, ID: 2}, events[4])

		snap := c.Snapshot()
		assert.Equal(t, []chatline.MessageID{1, 3, 4}, ids(snap.History))
		assert.Equal(t, "edited", snap.History[0].Content)
		assert.Nil(t, snap.Live)
	})

	t.Run("echoes sends to the subscriber", func(t *testing.T) {
		t.Parallel()
		c := memory.New(transcript(1))
		col := newCollector()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = c.Subscribe(ctx, col.handle) }()
		col.await(t, 1)

		m, err := c.SendMessage(context.Background(), 1, "ping", nil)
		require.NoError(t, err)

		events := col.await(t, 2)
		assert.Equal(t, chatline.EventMessageCreated{Message: m}, events[1])
	})

	t.Run("second subscription is rejected", func(t *testing.T) {
		t.Parallel()
		c := memory.New(transcript(1))
		col := newCollector()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() { _ = c.Subscribe(ctx, col.handle) }()
		col.await(t, 1)

		err := c.Subscribe(ctx, func(chatline.Event) {})

		assert.ErrorIs(t, err, memory.ErrAlreadySubscribed)
	})
}
