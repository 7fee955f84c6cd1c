package dto

import (
	"time"

	"github.com/yigit/skillswap/internal/app/models"
	"github.com/yigit/skillswap/internal/domain"
)

// CreateExchangeRequest asks another user for an exchange
type CreateExchangeRequest struct {
	RecipientID  string `json:"recipientId" binding:"required" example:"5b0c6a1e-0f52-4b59-9a57-1c0a2c4c9b0e"`
	Message      string `json:"message" example:"Happy to swap Go lessons for piano"`
	Date         string `json:"date" example:"2030-05-01"`
	Time         string `json:"time" example:"18:30"`
	Duration     int    `json:"duration" example:"60"`
	Timezone     string `json:"timezone" example:"Europe/Berlin"`
	SkillToTeach string `json:"skillToTeach" example:"Go"`
	SkillToLearn string `json:"skillToLearn" example:"Piano"`
}

// ScheduleExchangeRequest sets or moves the session slot
type ScheduleExchangeRequest struct {
	Date     string `json:"date" example:"2030-05-01"`
	Time     string `json:"time" example:"18:30"`
	Duration int    `json:"duration" example:"60"`
	Timezone string `json:"timezone" example:"Europe/Berlin"`
}

// ExchangeFilterRequest filters the exchange list
type ExchangeFilterRequest struct {
	Bucket string `form:"bucket" binding:"omitempty,oneof=pending upcoming past completed closed rejected"`
	Search string `form:"search"`
}

// ParticipantResponse is one side of an exchange
type ParticipantResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

// ExchangeResponse is an exchange as seen by one participant
type ExchangeResponse struct {
	ID            string                `json:"id"`
	Requester     ParticipantResponse   `json:"requester"`
	Recipient     ParticipantResponse   `json:"recipient"`
	Partner       ParticipantResponse   `json:"partner"`
	SkillToTeach  string                `json:"skillToTeach"`
	SkillToLearn  string                `json:"skillToLearn"`
	Status        domain.ExchangeStatus `json:"status" example:"scheduled"`
	DisplayStatus domain.ExchangeStatus `json:"displayStatus" example:"completed"`
	Bucket        domain.Bucket         `json:"bucket" example:"upcoming"`
	Message       string                `json:"message"`
	MeetingLink   string                `json:"meetingLink"`
	Date          string                `json:"date"`
	Time          string                `json:"time"`
	Duration      int                   `json:"duration"`
	Timezone      string                `json:"timezone"`
	IsRequester   bool                  `json:"isRequester"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// ExchangeListResponse lists exchanges
type ExchangeListResponse struct {
	Exchanges []ExchangeResponse `json:"exchanges"`
}

// SessionResponse is one entry of the chat list
type SessionResponse struct {
	ExchangeID   string                `json:"exchangeId"`
	Partner      ParticipantResponse   `json:"partner"`
	SkillToTeach string                `json:"skillToTeach"`
	SkillToLearn string                `json:"skillToLearn"`
	Status       domain.ExchangeStatus `json:"status"`
	LastMessage  *MessageResponse      `json:"lastMessage,omitempty"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// SessionListResponse is the chat list
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

// MeetingResponse tells whether the meeting link can be joined now
type MeetingResponse struct {
	ExchangeID  string    `json:"exchangeId"`
	MeetingLink string    `json:"meetingLink"`
	Joinable    bool      `json:"joinable"`
	Completed   bool      `json:"completed"`
	StartsAt    time.Time `json:"startsAt,omitempty"`
	EndsAt      time.Time `json:"endsAt,omitempty"`
}

// FromExchange converts an exchange for viewerID at time now
func FromExchange(ex *models.Exchange, viewerID string, now time.Time) ExchangeResponse {
	schedule := ex.Schedule()
	partnerID, partnerName, partnerPhoto := ex.Counterpart(viewerID)
	return ExchangeResponse{
		ID:            ex.ID,
		Requester:     ParticipantResponse{ID: ex.RequesterID, Name: ex.RequesterName, Photo: ex.RequesterPhoto},
		Recipient:     ParticipantResponse{ID: ex.RecipientID, Name: ex.RecipientName, Photo: ex.RecipientPhoto},
		Partner:       ParticipantResponse{ID: partnerID, Name: partnerName, Photo: partnerPhoto},
		SkillToTeach:  ex.SkillToTeach,
		SkillToLearn:  ex.SkillToLearn,
		Status:        ex.Status,
		DisplayStatus: domain.DisplayStatus(ex.Status, schedule, now),
		Bucket:        domain.Classify(ex.Status, schedule, now),
		Message:       ex.Message,
		MeetingLink:   ex.MeetingLink,
		Date:          ex.Date,
		Time:          ex.Time,
		Duration:      ex.DurationMinutes,
		Timezone:      ex.Timezone,
		IsRequester:   ex.RequesterID == viewerID,
		CreatedAt:     ex.CreatedAt,
		UpdatedAt:     ex.UpdatedAt,
	}
}
