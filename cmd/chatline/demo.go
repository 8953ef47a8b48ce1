package main

import (
	"time"

	"github.com/fwojciec/chatline"
)

// demoHistory is the number of messages in the built-in transcript.
const demoHistory = 240

var demoUsers = []struct {
	id   chatline.UserID
	name string
}{
	{1, "you"},
	{2, "ada"},
	{3, "grace"},
	{4, "linus"},
}

var demoLines = []string{
	"morning all",
	"did anyone look at the flaky test in the sync job?",
	"yeah, it's the clock. the fixture uses wall time",
	"I'll swap it for a fake clock after lunch",
	"the deploy window moved to thursday btw",
	"noted",
	"can someone review the migration? it is small, promise",
	"looking now",
	"left two comments, otherwise good to go",
	"thanks!",
	"standup in 5",
	"anyone else seeing slow builds today?",
	"cache got evicted, should recover after the next run",
	"lunch?",
}

// demoTranscript builds the transcript used when no file is given: a few
// hours of history ending at now, plus a short live script.
func demoTranscript(now time.Time) chatline.Transcript {
	t := chatline.Transcript{
		Self:        demoUsers[0].id,
		SelfName:    demoUsers[0].name,
		Channel:     1,
		ChannelName: "general",
	}

	start := now.Add(-demoHistory * 2 * time.Minute)
	for i := range demoHistory {
		// Authors change every one to three messages so groups form.
		u := demoUsers[(i/(1+i%3))%len(demoUsers)]
		m := chatline.Message{
			ID:         chatline.MessageID(i + 1),
			ChannelID:  t.Channel,
			AuthorID:   u.id,
			AuthorName: u.name,
			CreatedAt:  start.Add(time.Duration(i) * 2 * time.Minute),
			Content:    demoLines[i%len(demoLines)],
		}
		if i%17 == 0 {
			m.EditedAt = m.CreatedAt.Add(time.Minute)
		}
		if i%29 == 0 {
			m.Attachments = []chatline.AttachmentRef{{
				ID:       "a" + m.ID.String(),
				Filename: "notes-" + m.ID.String() + ".txt",
				Size:     int64(1024 * (i + 1)),
			}}
		}
		t.History = append(t.History, m)
	}

	ada, grace := demoUsers[1], demoUsers[2]
	t.Live = []chatline.ScriptStep{
		{After: 2 * time.Second, Event: chatline.EventTypingStarted{UserID: ada.id}},
		{After: 3 * time.Second, Event: chatline.EventMessageCreated{Message: chatline.Message{
			AuthorID: ada.id, AuthorName: ada.name, Content: "pushed the fix for the flaky test",
		}}},
		{After: 1 * time.Second, Event: chatline.EventTypingStarted{UserID: grace.id}},
		{After: 4 * time.Second, Event: chatline.EventMessageCreated{Message: chatline.Message{
			AuthorID: grace.id, AuthorName: grace.name, Content: "nice, rerunning the pipeline",
		}}},
		{After: 5 * time.Second, Event: chatline.EventMessageEdited{Message: chatline.Message{
			ID: demoHistory, Content: demoLines[(demoHistory-1)%len(demoLines)] + " (moved to 1pm)",
		}}},
		{After: 3 * time.Second, Event: chatline.EventMessageDeleted{ID: demoHistory - 1}},
	}
	return t
}
