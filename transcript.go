package chatline

import "time"

// Transcript is a recorded channel: the history a server would hold plus a
// script of live events to replay. It drives the in-memory client.
type Transcript struct {
	Self        UserID
	SelfName    string
	Channel     ChannelID
	ChannelName string
	History     []Message
	Live        []ScriptStep
}

// ScriptStep is one live event, delivered After the previous step.
//
// Message events may leave ID, ChannelID and CreatedAt zero; the player fills
// them in when the step fires. Typing events may leave At zero.
type ScriptStep struct {
	After time.Duration
	Event Event
}
