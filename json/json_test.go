package json_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/chatline"
	chatjson "github.com/fwojciec/chatline/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ts = time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)

func sampleTranscript() chatline.Transcript {
	return chatline.Transcript{
		Self:        9,
		SelfName:    "me",
		Channel:     1,
		ChannelName: "general",
		History: []chatline.Message{
			{ID: 1, ChannelID: 1, AuthorID: 2, AuthorName: "alice", CreatedAt: ts, Content: "morning"},
			{
				ID: 2, ChannelID: 1, AuthorID: 3, AuthorName: "bob", CreatedAt: ts.Add(time.Minute),
				Content:     "see attached",
				Attachments: []chatline.AttachmentRef{{ID: "att1", Filename: "plan.pdf", URL: "https://example.com/plan.pdf", Size: 2048}},
				EditedAt:    ts.Add(2 * time.Minute),
			},
		},
		Live: []chatline.ScriptStep{
			{Event: chatline.EventConnected{}},
			{After: 2 * time.Second, Event: chatline.EventTypingStarted{ChannelID: 1, UserID: 2}},
			{After: 1500 * time.Millisecond, Event: chatline.EventMessageCreated{Message: chatline.Message{ChannelID: 1, AuthorID: 2, AuthorName: "alice", Content: "hi"}}},
			{Event: chatline.EventMessageEdited{Message: chatline.Message{ID: 1, ChannelID: 1, AuthorID: 2, Content: "good morning"}}},
			{After: time.Second, Event: chatline.EventMessageDeleted{ChannelID: 1, ID: 2}},
			{Event: chatline.EventDisconnected{Err: errors.New("server going away")}},
		},
	}
}

func TestMarshalTranscript_RoundTrip(t *testing.T) {
	t.Parallel()
	want := sampleTranscript()

	data, err := chatjson.MarshalTranscript(want)
	require.NoError(t, err)

	got, err := chatjson.UnmarshalTranscript(data)
	require.NoError(t, err)

	assert.Equal(t, want.Self, got.Self)
	assert.Equal(t, "me", got.SelfName)
	assert.Equal(t, want.Channel, got.Channel)
	assert.Equal(t, "general", got.ChannelName)

	require.Len(t, got.History, 2)
	assert.Equal(t, "morning", got.History[0].Content)
	assert.True(t, ts.Equal(got.History[0].CreatedAt))
	assert.True(t, got.History[0].EditedAt.IsZero())
	assert.Equal(t, want.History[1].Attachments, got.History[1].Attachments)
	assert.True(t, want.History[1].EditedAt.Equal(got.History[1].EditedAt))

	require.Len(t, got.Live, 6)
	assert.Equal(t, chatline.EventConnected{}, got.Live[0].Event)
	assert.Equal(t, 2*time.Second, got.Live[1].After)
	assert.Equal(t, chatline.EventTypingStarted{ChannelID: 1, UserID: 2}, got.Live[1].Event)

	created, ok := got.Live[2].Event.(chatline.EventMessageCreated)
	require.True(t, ok, "expected EventMessageCreated")
	assert.Equal(t, 1500*time.Millisecond, got.Live[2].After)
	assert.Zero(t, created.Message.ID)
	assert.Equal(t, "hi", created.Message.Content)

	edited, ok := got.Live[3].Event.(chatline.EventMessageEdited)
	require.True(t, ok, "expected EventMessageEdited")
	assert.Equal(t, chatline.MessageID(1), edited.Message.ID)

	assert.Equal(t, chatline.EventMessageDeleted{ChannelID: 1, ID: 2}, got.Live[4].Event)

	disc, ok := got.Live[5].Event.(chatline.EventDisconnected)
	require.True(t, ok, "expected EventDisconnected")
	require.Error(t, disc.Err)
	assert.Equal(t, "server going away", disc.Err.Error())
}

func TestMarshalTranscript_JSONFieldNames(t *testing.T) {
	t.Parallel()

	data, err := chatjson.MarshalTranscript(sampleTranscript())
	require.NoError(t, err)

	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &env))

	var version int
	require.NoError(t, json.Unmarshal(env["version"], &version))
	assert.Equal(t, 1, version)
	for _, key := range []string{"self", "channel", "history", "live"} {
		_, ok := env[key]
		assert.True(t, ok, "expected %s key in JSON", key)
	}

	var history []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env["history"], &history))
	for _, key := range []string{"id", "author_id", "author_name", "created_at", "content"} {
		_, ok := history[0][key]
		assert.True(t, ok, "expected %s key in history message", key)
	}
	_, ok := history[0]["edited_at"]
	assert.False(t, ok, "unedited message has no edited_at")

	var live []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(env["live"], &live))
	assert.JSONEq(t, `"2s"`, string(live[1]["after"]))
	assert.JSONEq(t, `"typing"`, string(live[1]["type"]))
}

func TestMarshalTranscript_UnsupportedEvent(t *testing.T) {
	t.Parallel()
	tr := chatline.Transcript{
		Channel: 1,
		Live:    []chatline.ScriptStep{{Event: chatline.EventReady{Self: 1}}},
	}

	_, err := chatjson.MarshalTranscript(tr)
	assert.ErrorContains(t, err, "live step 0")
}

func TestUnmarshalTranscript_SkipsMalformedEntries(t *testing.T) {
	t.Parallel()
	data := []byte(`{
		"version": 1,
		"self": {"id": 9},
		"channel": {"id": 1},
		"history": [
			{"id": 1, "author_id": 2, "created_at": "2026-02-18T12:00:00Z", "content": "ok"},
			{"author_id": 2, "created_at": "2026-02-18T12:01:00Z", "content": "no id"},
			{"id": 3, "author_id": 2, "content": "no time"},
			{"id": 4, "author_id": 2, "created_at": "2026-02-18T12:03:00Z", "content": "ok too"}
		],
		"live": [
			{"type": "typing", "user_id": 2},
			{"type": "wave"},
			{"type": "typing", "user_id": 2, "after": "soon"},
			{"type": "delete"}
		]
	}`)

	got, err := chatjson.UnmarshalTranscript(data)

	var skipped *chatjson.SkippedError
	require.ErrorAs(t, err, &skipped)
	assert.Len(t, skipped.Errors, 5)
	assert.ErrorIs(t, err, chatline.ErrMalformedMessage)
	assert.ErrorContains(t, err, "history message 1")
	assert.ErrorContains(t, err, `unknown step type: "wave"`)

	require.Len(t, got.History, 2)
	assert.Equal(t, chatline.MessageID(1), got.History[0].ID)
	assert.Equal(t, chatline.MessageID(4), got.History[1].ID)
	assert.Equal(t, chatline.ChannelID(1), got.History[1].ChannelID)
	assert.Len(t, got.Live, 1)
}

func TestUnmarshalTranscript_Fatal(t *testing.T) {
	t.Parallel()

	t.Run("unsupported version", func(t *testing.T) {
		t.Parallel()
		_, err := chatjson.UnmarshalTranscript([]byte(`{"version": 2, "channel": {"id": 1}}`))
		assert.ErrorContains(t, err, "unsupported envelope version: 2")
	})

	t.Run("missing channel", func(t *testing.T) {
		t.Parallel()
		_, err := chatjson.UnmarshalTranscript([]byte(`{"version": 1}`))
		assert.ErrorContains(t, err, "missing channel id")
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()
		_, err := chatjson.UnmarshalTranscript([]byte(`{`))
		assert.ErrorContains(t, err, "unmarshal envelope")
	})
}

func TestSave_And_Load(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "dir", "general.json")

	require.NoError(t, chatjson.Save(path, sampleTranscript()))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")

	got, err := chatjson.Load(path)
	require.NoError(t, err)
	assert.Len(t, got.History, 2)
	assert.Len(t, got.Live, 6)
}

func TestLoad_NonexistentFile(t *testing.T) {
	t.Parallel()
	_, err := chatjson.Load("/nonexistent/path/transcript.json")
	assert.Error(t, err)
}
