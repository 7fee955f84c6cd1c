package models

import (
	"time"

	"github.com/yigit/skillswap/internal/domain"
)

// Exchange defines a skill exchange between two users based on the 'exchanges' table
type Exchange struct {
	ID              string                `json:"id" db:"id"`
	RequesterID     string                `json:"requesterId" db:"requester_id"`
	RequesterName   string                `json:"requesterName" db:"requester_name"`
	RequesterPhoto  string                `json:"requesterPhoto" db:"requester_photo"`
	RecipientID     string                `json:"recipientId" db:"recipient_id"`
	RecipientName   string                `json:"recipientName" db:"recipient_name"`
	RecipientPhoto  string                `json:"recipientPhoto" db:"recipient_photo"`
	SkillToTeach    string                `json:"skillToTeach" db:"skill_to_teach"`
	SkillToLearn    string                `json:"skillToLearn" db:"skill_to_learn"`
	Status          domain.ExchangeStatus `json:"status" db:"status"`
	Message         string                `json:"message" db:"message"`
	MeetingLink     string                `json:"meetingLink" db:"meeting_link"`
	Date            string                `json:"date" db:"session_date"`
	Time            string                `json:"time" db:"session_time"`
	DurationMinutes int                   `json:"duration" db:"duration_minutes"`
	Timezone        string                `json:"timezone" db:"timezone"`
	CreatedAt       time.Time             `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time             `json:"updatedAt" db:"updated_at"`
}

// Parties returns the two participants.
func (e *Exchange) Parties() domain.Parties {
	return domain.Parties{RequesterID: e.RequesterID, RecipientID: e.RecipientID}
}

// MeetingSchedule returns the slot in which the meeting may be joined. A
// rejected exchange has none.
func (e *Exchange) MeetingSchedule() domain.Schedule {
	if e.Status == domain.StatusRejected {
		return domain.Schedule{}
	}
	return e.Schedule()
}

// Schedule returns the stored slot. Unknown timezones fall back to UTC.
func (e *Exchange) Schedule() domain.Schedule {
	loc := time.UTC
	if e.Timezone != "" {
		if l, err := time.LoadLocation(e.Timezone); err == nil {
			loc = l
		}
	}
	return domain.Schedule{
		Date:            e.Date,
		Time:            e.Time,
		DurationMinutes: e.DurationMinutes,
		Location:        loc,
	}
}

// SetSchedule copies a parsed slot onto the exchange.
func (e *Exchange) SetSchedule(s domain.Schedule) {
	e.Date = s.Date
	e.Time = s.Time
	e.DurationMinutes = s.DurationMinutes
	e.Timezone = s.TimezoneName()
}

// Counterpart returns the id, name and photo of the other participant.
func (e *Exchange) Counterpart(userID string) (id, name, photo string) {
	if userID == e.RequesterID {
		return e.RecipientID, e.RecipientName, e.RecipientPhoto
	}
	return e.RequesterID, e.RequesterName, e.RequesterPhoto
}

// NameOf returns the stored display name of a participant.
func (e *Exchange) NameOf(userID string) string {
	if userID == e.RecipientID {
		return e.RecipientName
	}
	return e.RequesterName
}
