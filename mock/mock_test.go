package mock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/chatline"
	"github.com/fwojciec/chatline/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchHistory(t *testing.T) {
	t.Parallel()
	t.Run("delegates to FetchHistoryFn", func(t *testing.T) {
		t.Parallel()
		want := []chatline.Message{{ID: 1}}
		c := mock.Client{
			FetchHistoryFn: func(_ context.Context, channel chatline.ChannelID, _ time.Time, count int) ([]chatline.Message, error) {
				assert.Equal(t, chatline.ChannelID(3), channel)
				assert.Equal(t, 40, count)
				return want, nil
			},
		}
		got, err := c.FetchHistory(context.Background(), 3, time.Time{}, 40)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("panics when FetchHistoryFn not set", func(t *testing.T) {
		t.Parallel()
		c := mock.Client{}
		assert.Panics(t, func() {
			_, _ = c.FetchHistory(context.Background(), 1, time.Time{}, 1)
		})
	})
}

func TestClient_SendMessage(t *testing.T) {
	t.Parallel()
	wantErr := errors.New("forbidden")
	c := mock.Client{
		SendMessageFn: func(context.Context, chatline.ChannelID, string, []chatline.AttachmentRef) (chatline.Message, error) {
			return chatline.Message{}, wantErr
		},
	}
	_, err := c.SendMessage(context.Background(), 1, "hi", nil)
	assert.ErrorIs(t, err, wantErr)
}

func TestClient_Subscribe(t *testing.T) {
	t.Parallel()
	c := mock.Client{
		SubscribeFn: func(_ context.Context, handler func(chatline.Event)) error {
			handler(chatline.EventConnected{})
			return nil
		},
	}
	var got []chatline.Event
	require.NoError(t, c.Subscribe(context.Background(), func(e chatline.Event) { got = append(got, e) }))
	assert.Equal(t, []chatline.Event{chatline.EventConnected{}}, got)
}

func TestErrorReporter_Report(t *testing.T) {
	t.Parallel()
	var title, detail string
	r := mock.ErrorReporter{ReportFn: func(t, d string) { title, detail = t, d }}
	r.Report("Failure", "details")
	assert.Equal(t, "Failure", title)
	assert.Equal(t, "details", detail)
}

func TestLayout(t *testing.T) {
	t.Parallel()
	l := mock.Layout{ExtentValue: 100, Height: 30}
	assert.Equal(t, 70.0, l.Bottom())

	l.Grow(20)
	l.SetScrollOffset(l.Bottom())
	assert.Equal(t, 90.0, l.ScrollOffset())
	assert.Equal(t, 1, l.SetCalls)

	short := mock.Layout{ExtentValue: 10, Height: 30}
	assert.Equal(t, 0.0, short.Bottom())
}
