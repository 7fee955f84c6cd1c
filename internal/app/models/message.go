package models

import (
	"time"

	"github.com/yigit/skillswap/internal/domain"
)

// Message is an entry in an exchange thread. It is stored in the
// 'exchange_messages' table or the collection of the same name.
type Message struct {
	ID            string             `json:"id" db:"id" bson:"_id"`
	ExchangeID    string             `json:"exchangeId" db:"exchange_id" bson:"exchange_id"`
	Type          domain.MessageType `json:"type" db:"type" bson:"type"`
	Text          string             `json:"text" db:"text" bson:"text"`
	SenderID      string             `json:"senderId" db:"sender_id" bson:"sender_id"`
	SenderName    string             `json:"senderName" db:"sender_name" bson:"sender_name"`
	SenderPhoto   string             `json:"senderPhoto" db:"sender_photo" bson:"sender_photo"`
	MeetingLink   string             `json:"meetingLink,omitempty" db:"meeting_link" bson:"meeting_link,omitempty"`
	ResourceTitle string             `json:"resourceTitle,omitempty" db:"resource_title" bson:"resource_title,omitempty"`
	ResourceURL   string             `json:"resourceUrl,omitempty" db:"resource_url" bson:"resource_url,omitempty"`
	ResourceType  string             `json:"resourceType,omitempty" db:"resource_type" bson:"resource_type,omitempty"`
	CreatedAt     time.Time          `json:"timestamp" db:"created_at" bson:"created_at"`
}

// ThreadMessage converts the stored message for thread rendering.
func (m *Message) ThreadMessage() domain.ThreadMessage {
	return domain.ThreadMessage{
		ID:            m.ID,
		Type:          m.Type,
		Text:          m.Text,
		SenderID:      m.SenderID,
		SenderName:    m.SenderName,
		SenderPhoto:   m.SenderPhoto,
		MeetingLink:   m.MeetingLink,
		ResourceTitle: m.ResourceTitle,
		ResourceURL:   m.ResourceURL,
		ResourceType:  m.ResourceType,
		CreatedAt:     m.CreatedAt,
	}
}
