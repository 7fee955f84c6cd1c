package domain

import (
	"sort"
	"time"
)

// MessageType classifies an entry in an exchange thread.
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageSystem   MessageType = "system"
	MessageResource MessageType = "resource"
	MessageVideo    MessageType = "video"
)

// EmptyThreadPlaceholder is shown for a thread without messages.
const EmptyThreadPlaceholder = "No messages yet. Start the conversation!"

// UnknownSender is substituted when a message carries no sender name.
const UnknownSender = "Unknown"

// ParseMessageType maps a stored type to a known one. "schedule" is an alias of
// video; anything unknown reads as text.
func ParseMessageType(s string) MessageType {
	switch MessageType(s) {
	case MessageText, MessageSystem, MessageResource, MessageVideo:
		return MessageType(s)
	case "schedule":
		return MessageVideo
	}
	return MessageText
}

// ThreadMessage is one message as the thread renders it.
type ThreadMessage struct {
	ID            string
	Type          MessageType
	Text          string
	SenderID      string
	SenderName    string
	SenderPhoto   string
	MeetingLink   string
	ResourceTitle string
	ResourceURL   string
	ResourceType  string
	CreatedAt     time.Time
}

// NormalizeMessage fills in defaults for missing fields.
func NormalizeMessage(m ThreadMessage) ThreadMessage {
	m.Type = ParseMessageType(string(m.Type))
	if m.SenderName == "" {
		m.SenderName = UnknownSender
	}
	return m
}

// ThreadEntry is a normalized message as seen by one viewer.
type ThreadEntry struct {
	ThreadMessage
	Mine     bool
	Joinable bool
}

// Thread is the rendered state of an exchange conversation.
type Thread struct {
	Entries       []ThreadEntry
	Empty         bool
	Placeholder   string
	MeetingActive bool
}

// BuildThread orders messages by timestamp (ties keep storage order) and marks
// which entries belong to viewerID. Meeting links are joinable only while the
// session's join window is open.
func BuildThread(messages []ThreadMessage, viewerID string, s Schedule, now time.Time, w JoinWindow) Thread {
	active := IsMeetingActive(s, now, w)
	if len(messages) == 0 {
		return Thread{
			Entries:       []ThreadEntry{},
			Empty:         true,
			Placeholder:   EmptyThreadPlaceholder,
			MeetingActive: active,
		}
	}

	entries := make([]ThreadEntry, len(messages))
	for i, m := range messages {
		m = NormalizeMessage(m)
		entries[i] = ThreadEntry{
			ThreadMessage: m,
			Mine:          viewerID != "" && m.SenderID == viewerID,
			Joinable:      active && m.MeetingLink != "",
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	return Thread{Entries: entries, MeetingActive: active}
}
