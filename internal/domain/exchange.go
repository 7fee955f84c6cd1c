package domain

import (
	"fmt"
	"strconv"
	"time"

	"github.com/yigit/skillswap/internal/pkg/apperrors"
)

// ExchangeStatus is the lifecycle state of an exchange.
type ExchangeStatus string

const (
	StatusPending   ExchangeStatus = "pending"
	StatusAccepted  ExchangeStatus = "accepted"
	StatusRejected  ExchangeStatus = "rejected"
	StatusScheduled ExchangeStatus = "scheduled"
	// StatusCompleted is never stored. It is derived from the schedule at read time.
	StatusCompleted ExchangeStatus = "completed"
)

// Valid reports whether s can be stored.
func (s ExchangeStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusScheduled:
		return true
	}
	return false
}

// ExchangeAction is something a participant does to an exchange.
type ExchangeAction string

const (
	ActionAccept   ExchangeAction = "accept"
	ActionReject   ExchangeAction = "reject"
	ActionSchedule ExchangeAction = "schedule"
)

var transitions = map[ExchangeStatus][]ExchangeStatus{
	StatusPending:   {StatusAccepted, StatusRejected},
	StatusAccepted:  {StatusScheduled},
	StatusScheduled: {StatusScheduled},
}

// CanTransition reports whether a stored exchange may move from one status to another.
func CanTransition(from, to ExchangeStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (a ExchangeAction) target() ExchangeStatus {
	switch a {
	case ActionAccept:
		return StatusAccepted
	case ActionReject:
		return StatusRejected
	case ActionSchedule:
		return StatusScheduled
	}
	return ""
}

// Parties identifies the two participants of an exchange.
type Parties struct {
	RequesterID string
	RecipientID string
}

// Includes reports whether userID is one of the participants.
func (p Parties) Includes(userID string) bool {
	return userID != "" && (userID == p.RequesterID || userID == p.RecipientID)
}

// Counterpart returns the other participant, or "" if userID is not a participant.
func (p Parties) Counterpart(userID string) string {
	switch userID {
	case p.RequesterID:
		return p.RecipientID
	case p.RecipientID:
		return p.RequesterID
	}
	return ""
}

// IDs returns both participant ids, requester first.
func (p Parties) IDs() []string {
	return []string{p.RequesterID, p.RecipientID}
}

// ApplyAction checks that actorID may perform action on an exchange in status
// current, and returns the resulting status.
func ApplyAction(p Parties, current ExchangeStatus, actorID string, action ExchangeAction) (ExchangeStatus, error) {
	if !p.Includes(actorID) {
		return "", apperrors.NewForbiddenError("You are not a participant of this exchange")
	}

	switch action {
	case ActionAccept, ActionReject:
		if actorID != p.RecipientID {
			return "", apperrors.NewForbiddenError("Only the recipient can respond to this exchange request")
		}
	case ActionSchedule:
	default:
		return "", apperrors.NewBadRequestError(fmt.Sprintf("unknown exchange action %q", action))
	}

	next := action.target()
	if !CanTransition(current, next) {
		return "", apperrors.NewCustomError(apperrors.ErrInvalidTransition,
			fmt.Sprintf("Cannot %s an exchange that is %s", action, current))
	}
	return next, nil
}

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"

	// DefaultDurationMinutes is used when a request does not carry a duration.
	DefaultDurationMinutes = 30
	MinDurationMinutes     = 15
	MaxDurationMinutes     = 480
)

// Schedule is the proposed or agreed meeting slot of an exchange.
type Schedule struct {
	Date            string
	Time            string
	DurationMinutes int
	Location        *time.Location
}

// ParseSchedule validates the raw schedule fields. An empty timezone means UTC.
func ParseSchedule(date, clock string, durationMinutes int, timezone string) (Schedule, error) {
	if date == "" {
		return Schedule{}, apperrors.NewValidationError("date", "Date is required")
	}
	if clock == "" {
		return Schedule{}, apperrors.NewValidationError("time", "Time is required")
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return Schedule{}, apperrors.NewValidationError("date", "Date must be formatted as YYYY-MM-DD")
	}
	if _, err := time.Parse(clockLayout, clock); err != nil {
		return Schedule{}, apperrors.NewValidationError("time", "Time must be formatted as HH:MM")
	}
	if durationMinutes == 0 {
		durationMinutes = DefaultDurationMinutes
	}
	if durationMinutes < MinDurationMinutes || durationMinutes > MaxDurationMinutes {
		return Schedule{}, apperrors.NewValidationError("duration",
			"Duration must be between "+strconv.Itoa(MinDurationMinutes)+" and "+strconv.Itoa(MaxDurationMinutes)+" minutes")
	}

	loc := time.UTC
	if timezone != "" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return Schedule{}, apperrors.NewValidationError("timezone", "Unknown timezone")
		}
		loc = l
	}

	return Schedule{Date: date, Time: clock, DurationMinutes: durationMinutes, Location: loc}, nil
}

// IsZero reports whether any part of the schedule is missing.
func (s Schedule) IsZero() bool {
	return s.Date == "" || s.Time == "" || s.DurationMinutes <= 0
}

// Start returns the scheduled start. ok is false if the schedule is incomplete
// or malformed.
func (s Schedule) Start() (start time.Time, ok bool) {
	if s.IsZero() {
		return time.Time{}, false
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(dateLayout+" "+clockLayout, s.Date+" "+s.Time, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// End returns start plus duration.
func (s Schedule) End() (end time.Time, ok bool) {
	start, ok := s.Start()
	if !ok {
		return time.Time{}, false
	}
	return start.Add(time.Duration(s.DurationMinutes) * time.Minute), true
}

// TimezoneName returns the IANA name of the schedule location.
func (s Schedule) TimezoneName() string {
	if s.Location == nil {
		return "UTC"
	}
	return s.Location.String()
}

// Bucket groups exchanges for the sessions view.
type Bucket string

const (
	BucketPending  Bucket = "pending"
	BucketUpcoming Bucket = "upcoming"
	BucketPast     Bucket = "past"
	BucketClosed   Bucket = "closed"
)

// ParseBucket converts a query value into a Bucket. "completed" is accepted for past.
func ParseBucket(s string) (Bucket, bool) {
	switch s {
	case "pending":
		return BucketPending, true
	case "upcoming":
		return BucketUpcoming, true
	case "past", "completed":
		return BucketPast, true
	case "closed", "rejected":
		return BucketClosed, true
	}
	return "", false
}

// Classify places an exchange into a bucket. A pending request stays pending
// even if its proposed slot has passed.
func Classify(status ExchangeStatus, s Schedule, now time.Time) Bucket {
	switch status {
	case StatusRejected:
		return BucketClosed
	case StatusPending:
		return BucketPending
	}
	if IsSessionCompleted(s, now) {
		return BucketPast
	}
	return BucketUpcoming
}

// DisplayStatus is the status shown to users: the stored status, or completed
// once the session is over.
func DisplayStatus(status ExchangeStatus, s Schedule, now time.Time) ExchangeStatus {
	if Classify(status, s, now) == BucketPast {
		return StatusCompleted
	}
	return status
}
