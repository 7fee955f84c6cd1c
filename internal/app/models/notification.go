package models

import (
	"fmt"
	"time"
)

// NotificationType represents the kind of notification
type NotificationType string

const (
	NotificationExchangeRequest      NotificationType = "exchange_request"
	NotificationExchangeConfirmation NotificationType = "exchange_confirmation"
	NotificationExchangeRejected     NotificationType = "exchange_rejected"
	NotificationSessionScheduled     NotificationType = "session_scheduled"
)

// Notification is an in-app notification based on the 'notifications' table
type Notification struct {
	ID          string           `json:"id" db:"id"`
	UserID      string           `json:"userId" db:"user_id"`
	Title       string           `json:"title" db:"title"`
	Message     string           `json:"message" db:"message"`
	Type        NotificationType `json:"type" db:"type"`
	RelatedID   string           `json:"relatedId,omitempty" db:"related_id"`
	MeetingLink string           `json:"meetingLink,omitempty" db:"meeting_link"`
	Read        bool             `json:"read" db:"read"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
}

// NewExchangeRequestNotification tells the recipient about a new request.
func NewExchangeRequestNotification(ex *Exchange) *Notification {
	return &Notification{
		UserID:      ex.RecipientID,
		Title:       "New Exchange Request",
		Message:     fmt.Sprintf("%s wants to exchange %s for %s", ex.RequesterName, ex.SkillToTeach, ex.SkillToLearn),
		Type:        NotificationExchangeRequest,
		RelatedID:   ex.ID,
		MeetingLink: ex.MeetingLink,
	}
}

// NewExchangeResponseNotification tells the requester how the recipient answered.
func NewExchangeResponseNotification(ex *Exchange, accepted bool) *Notification {
	n := &Notification{
		UserID:      ex.RequesterID,
		RelatedID:   ex.ID,
		MeetingLink: ex.MeetingLink,
	}
	if accepted {
		n.Title = "Exchange Request Accepted"
		n.Message = fmt.Sprintf("%s accepted your exchange request", ex.RecipientName)
		n.Type = NotificationExchangeConfirmation
	} else {
		n.Title = "Exchange Request Declined"
		n.Message = fmt.Sprintf("%s declined your exchange request", ex.RecipientName)
		n.Type = NotificationExchangeRejected
	}
	return n
}

// NewSessionScheduledNotification tells the counterpart about a (re)scheduled session.
func NewSessionScheduledNotification(ex *Exchange, schedulerID string) *Notification {
	recipient, _, _ := ex.Counterpart(schedulerID)
	return &Notification{
		UserID: recipient,
		Title:  "Session Scheduled",
		Message: fmt.Sprintf("%s scheduled a session for %s at %s (%d minutes)",
			ex.NameOf(schedulerID), ex.Date, ex.Time, ex.DurationMinutes),
		Type:        NotificationSessionScheduled,
		RelatedID:   ex.ID,
		MeetingLink: ex.MeetingLink,
	}
}
