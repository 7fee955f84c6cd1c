package dto

import (
	"time"

	"github.com/yigit/skillswap/internal/app/models"
	"github.com/yigit/skillswap/internal/domain"
)

// SendMessageRequest posts a text message to a thread
type SendMessageRequest struct {
	Text string `json:"text" binding:"required,max=4000" example:"See you tomorrow!"`
}

// ShareResourceRequest posts a link to a thread
type ShareResourceRequest struct {
	Title    string `json:"title" binding:"required,max=200" example:"Go tour"`
	URL      string `json:"url" binding:"required,url" example:"https://go.dev/tour"`
	MimeType string `json:"mimeType" example:"text/html"`
}

// MessageResponse is one thread entry
type MessageResponse struct {
	ID            string             `json:"id"`
	Type          domain.MessageType `json:"type" example:"text"`
	Text          string             `json:"text"`
	SenderID      string             `json:"senderId"`
	SenderName    string             `json:"senderName"`
	SenderPhoto   string             `json:"senderPhoto"`
	MeetingLink   string             `json:"meetingLink,omitempty"`
	ResourceTitle string             `json:"resourceTitle,omitempty"`
	ResourceURL   string             `json:"resourceUrl,omitempty"`
	ResourceType  string             `json:"resourceType,omitempty"`
	Mine          bool               `json:"mine"`
	Joinable      bool               `json:"joinable"`
	Timestamp     time.Time          `json:"timestamp"`
}

// ThreadResponse is the rendered thread of an exchange
type ThreadResponse struct {
	ExchangeID    string            `json:"exchangeId"`
	Messages      []MessageResponse `json:"messages"`
	Empty         bool              `json:"empty"`
	Placeholder   string            `json:"placeholder,omitempty"`
	MeetingActive bool              `json:"meetingActive"`
}

// ClearThreadResponse reports how many messages were removed
type ClearThreadResponse struct {
	Deleted int64 `json:"deleted"`
}

func fromEntry(e domain.ThreadEntry) MessageResponse {
	return MessageResponse{
		ID:            e.ID,
		Type:          e.Type,
		Text:          e.Text,
		SenderID:      e.SenderID,
		SenderName:    e.SenderName,
		SenderPhoto:   e.SenderPhoto,
		MeetingLink:   e.MeetingLink,
		ResourceTitle: e.ResourceTitle,
		ResourceURL:   e.ResourceURL,
		ResourceType:  e.ResourceType,
		Mine:          e.Mine,
		Joinable:      e.Joinable,
		Timestamp:     e.CreatedAt,
	}
}

// FromThread converts a rendered thread
func FromThread(exchangeID string, t domain.Thread) ThreadResponse {
	messages := make([]MessageResponse, 0, len(t.Entries))
	for _, e := range t.Entries {
		messages = append(messages, fromEntry(e))
	}
	return ThreadResponse{
		ExchangeID:    exchangeID,
		Messages:      messages,
		Empty:         t.Empty,
		Placeholder:   t.Placeholder,
		MeetingActive: t.MeetingActive,
	}
}

// FromMessage converts a stored message for viewerID without join information
func FromMessage(m *models.Message, viewerID string) MessageResponse {
	tm := domain.NormalizeMessage(m.ThreadMessage())
	return fromEntry(domain.ThreadEntry{ThreadMessage: tm, Mine: viewerID != "" && tm.SenderID == viewerID})
}
