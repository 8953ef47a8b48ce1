package json

import (
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/chatline"
)

// stepDTO is the JSON representation of a ScriptStep with a type
// discriminator. After is a Go duration string such as "1.5s".
type stepDTO struct {
	After   string      `json:"after,omitempty"`
	Type    string      `json:"type"`
	Message *messageDTO `json:"message,omitempty"`
	ID      *uint64     `json:"id,omitempty"`
	UserID  *uint64     `json:"user_id,omitempty"`
	At      *time.Time  `json:"at,omitempty"`
	Error   *string     `json:"error,omitempty"`
}

func marshalStep(s chatline.ScriptStep) (stepDTO, error) {
	dto := stepDTO{}
	if s.After > 0 {
		dto.After = s.After.String()
	}
	switch e := s.Event.(type) {
	case chatline.EventConnected:
		dto.Type = "connected"
	case chatline.EventDisconnected:
		dto.Type = "disconnected"
		if e.Err != nil {
			msg := e.Err.Error()
			dto.Error = &msg
		}
	case chatline.EventMessageCreated:
		m := marshalMessage(e.Message)
		dto.Type, dto.Message = "message", &m
	case chatline.EventMessageEdited:
		m := marshalMessage(e.Message)
		dto.Type, dto.Message = "edit", &m
	case chatline.EventMessageDeleted:
		id := uint64(e.ID)
		dto.Type, dto.ID = "delete", &id
	case chatline.EventTypingStarted:
		user := uint64(e.UserID)
		dto.Type, dto.UserID, dto.At = "typing", &user, timePtr(e.At)
	default:
		return stepDTO{}, fmt.Errorf("unsupported event type: %T", s.Event)
	}
	return dto, nil
}

func unmarshalStep(dto stepDTO, channel chatline.ChannelID) (chatline.ScriptStep, error) {
	var step chatline.ScriptStep
	if dto.After != "" {
		d, err := time.ParseDuration(dto.After)
		if err != nil {
			return step, fmt.Errorf("parse delay: %w", err)
		}
		if d < 0 {
			return step, fmt.Errorf("negative delay: %s", dto.After)
		}
		step.After = d
	}

	switch dto.Type {
	case "connected":
		step.Event = chatline.EventConnected{}
	case "disconnected":
		var err error
		if dto.Error != nil {
			err = errors.New(*dto.Error)
		}
		step.Event = chatline.EventDisconnected{Err: err}
	case "message":
		if dto.Message == nil {
			return step, errors.New("message step without message")
		}
		step.Event = chatline.EventMessageCreated{Message: unmarshalMessage(*dto.Message, channel)}
	case "edit":
		if dto.Message == nil || dto.Message.ID == 0 {
			return step, fmt.Errorf("edit step: %w", chatline.ErrMalformedMessage)
		}
		step.Event = chatline.EventMessageEdited{Message: unmarshalMessage(*dto.Message, channel)}
	case "delete":
		if dto.ID == nil || *dto.ID == 0 {
			return step, errors.New("delete step without id")
		}
		step.Event = chatline.EventMessageDeleted{ChannelID: channel, ID: chatline.MessageID(*dto.ID)}
	case "typing":
		if dto.UserID == nil {
			return step, errors.New("typing step without user_id")
		}
		e := chatline.EventTypingStarted{ChannelID: channel, UserID: chatline.UserID(*dto.UserID)}
		if dto.At != nil {
			e.At = *dto.At
		}
		step.Event = e
	default:
		return step, fmt.Errorf("unknown step type: %q", dto.Type)
	}
	return step, nil
}
