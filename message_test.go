package chatline_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/chatline"
	"github.com/stretchr/testify/assert"
)

func TestMessage_Validate(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		m := chatline.Message{ID: 1, CreatedAt: ts}
		assert.NoError(t, m.Validate())
	})

	t.Run("missing id", func(t *testing.T) {
		t.Parallel()
		m := chatline.Message{CreatedAt: ts}
		err := m.Validate()
		assert.True(t, errors.Is(err, chatline.ErrMalformedMessage))
	})

	t.Run("missing timestamp", func(t *testing.T) {
		t.Parallel()
		m := chatline.Message{ID: 7}
		err := m.Validate()
		assert.True(t, errors.Is(err, chatline.ErrMalformedMessage))
		assert.Contains(t, err.Error(), "message 7")
	})
}

func TestIDs_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "42", chatline.MessageID(42).String())
	assert.Equal(t, "7", chatline.UserID(7).String())
	assert.Equal(t, "3", chatline.ChannelID(3).String())
}

func TestDirection_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "append", chatline.Append.String())
	assert.Equal(t, "prepend", chatline.Prepend.String())
	assert.Equal(t, "direction(5)", chatline.Direction(5).String())
}

func TestErrorReporterFunc(t *testing.T) {
	t.Parallel()

	var got [2]string
	r := chatline.ErrorReporterFunc(func(title, detail string) { got = [2]string{title, detail} })
	r.Report("Failure sending message", "boom")

	assert.Equal(t, [2]string{"Failure sending message", "boom"}, got)
}
