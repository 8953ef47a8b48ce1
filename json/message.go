package json

import (
	"time"

	"github.com/fwojciec/chatline"
)

// messageDTO is the JSON representation of a Message. The channel is implied
// by the envelope.
type messageDTO struct {
	ID          uint64          `json:"id,omitempty"`
	AuthorID    uint64          `json:"author_id"`
	AuthorName  string          `json:"author_name,omitempty"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
	Content     string          `json:"content"`
	Attachments []attachmentDTO `json:"attachments,omitempty"`
	EditedAt    *time.Time      `json:"edited_at,omitempty"`
}

type attachmentDTO struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

func marshalMessage(m chatline.Message) messageDTO {
	dto := messageDTO{
		ID:         uint64(m.ID),
		AuthorID:   uint64(m.AuthorID),
		AuthorName: m.AuthorName,
		Content:    m.Content,
		CreatedAt:  timePtr(m.CreatedAt),
		EditedAt:   timePtr(m.EditedAt),
	}
	for _, a := range m.Attachments {
		dto.Attachments = append(dto.Attachments, attachmentDTO{
			ID:       a.ID,
			Filename: a.Filename,
			URL:      a.URL,
			Size:     a.Size,
		})
	}
	return dto
}

func unmarshalMessage(dto messageDTO, channel chatline.ChannelID) chatline.Message {
	m := chatline.Message{
		ID:         chatline.MessageID(dto.ID),
		ChannelID:  channel,
		AuthorID:   chatline.UserID(dto.AuthorID),
		AuthorName: dto.AuthorName,
		Content:    dto.Content,
	}
	if dto.CreatedAt != nil {
		m.CreatedAt = *dto.CreatedAt
	}
	if dto.EditedAt != nil {
		m.EditedAt = *dto.EditedAt
	}
	for _, a := range dto.Attachments {
		m.Attachments = append(m.Attachments, chatline.AttachmentRef{
			ID:       a.ID,
			Filename: a.Filename,
			URL:      a.URL,
			Size:     a.Size,
		})
	}
	return m
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
