// Package json reads and writes transcripts in a versioned JSON envelope.
package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/chatline"
)

// envelope is the v1 wire format for a transcript.
type envelope struct {
	Version int          `json:"version"`
	Self    userDTO      `json:"self"`
	Channel channelDTO   `json:"channel"`
	History []messageDTO `json:"history"`
	Live    []stepDTO    `json:"live,omitempty"`
}

type userDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name,omitempty"`
}

type channelDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name,omitempty"`
}

// SkippedError lists entries that were dropped while decoding. The rest of
// the transcript is still usable.
type SkippedError struct {
	Errors []error
}

func (e *SkippedError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("skipped %d entries: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the individual entry errors to errors.Is and errors.As.
func (e *SkippedError) Unwrap() []error { return e.Errors }

// MarshalTranscript serializes a Transcript in v1 envelope format.
func MarshalTranscript(t chatline.Transcript) ([]byte, error) {
	env := envelope{
		Version: 1,
		Self:    userDTO{ID: uint64(t.Self), Name: t.SelfName},
		Channel: channelDTO{ID: uint64(t.Channel), Name: t.ChannelName},
		History: make([]messageDTO, len(t.History)),
	}
	for i, m := range t.History {
		env.History[i] = marshalMessage(m)
	}
	for i, step := range t.Live {
		dto, err := marshalStep(step)
		if err != nil {
			return nil, fmt.Errorf("live step %d: %w", i, err)
		}
		env.Live = append(env.Live, dto)
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalTranscript deserializes a Transcript in v1 envelope format.
//
// A malformed history message or live step does not fail the whole document:
// it is dropped, and the returned error is a *SkippedError alongside a
// transcript holding everything else.
func UnmarshalTranscript(data []byte) (chatline.Transcript, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return chatline.Transcript{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return chatline.Transcript{}, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	if env.Channel.ID == 0 {
		return chatline.Transcript{}, errors.New("missing channel id")
	}

	t := chatline.Transcript{
		Self:        chatline.UserID(env.Self.ID),
		SelfName:    env.Self.Name,
		Channel:     chatline.ChannelID(env.Channel.ID),
		ChannelName: env.Channel.Name,
	}
	var skipped []error
	for i, dto := range env.History {
		m := unmarshalMessage(dto, t.Channel)
		if err := m.Validate(); err != nil {
			skipped = append(skipped, fmt.Errorf("history message %d: %w", i, err))
			continue
		}
		t.History = append(t.History, m)
	}
	for i, dto := range env.Live {
		step, err := unmarshalStep(dto, t.Channel)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("live step %d: %w", i, err))
			continue
		}
		t.Live = append(t.Live, step)
	}
	if len(skipped) > 0 {
		return t, &SkippedError{Errors: skipped}
	}
	return t, nil
}

// Save writes a Transcript to a JSON file, creating parent directories as
// needed.
func Save(path string, t chatline.Transcript) error {
	data, err := MarshalTranscript(t)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a Transcript from a JSON file. Like UnmarshalTranscript it may
// return a usable transcript together with a *SkippedError.
func Load(path string) (chatline.Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return chatline.Transcript{}, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalTranscript(data)
}
