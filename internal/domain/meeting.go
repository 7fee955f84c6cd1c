package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultMeetingLinkTemplate receives an opaque room token through %s.
const DefaultMeetingLinkTemplate = "https://meet.google.com/new?hs=181&authuser=0&tf=0&nv=1&s=%s"

const meetingTokenLength = 8

// MeetingLinkGenerator builds meeting links from a fixed template.
type MeetingLinkGenerator struct {
	Template string
	Token    func() string
}

// NewMeetingLinkGenerator returns a generator for template, falling back to the
// default template when it is empty.
func NewMeetingLinkGenerator(template string) *MeetingLinkGenerator {
	if template == "" || !strings.Contains(template, "%s") {
		template = DefaultMeetingLinkTemplate
	}
	return &MeetingLinkGenerator{Template: template, Token: RandomMeetingToken}
}

// Generate returns a fresh link.
func (g *MeetingLinkGenerator) Generate() string {
	token := g.Token
	if token == nil {
		token = RandomMeetingToken
	}
	return fmt.Sprintf(g.Template, token())
}

// RandomMeetingToken returns 8 lowercase alphanumerics taken from a random UUID.
func RandomMeetingToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:meetingTokenLength]
}

// JoinWindow is the span around a session during which its link is joinable.
type JoinWindow struct {
	LeadTime time.Duration
	Grace    time.Duration
}

// DefaultJoinWindow opens ten minutes early and closes thirty minutes after the end.
var DefaultJoinWindow = JoinWindow{LeadTime: 10 * time.Minute, Grace: 30 * time.Minute}

// IsMeetingActive reports whether now falls inside the join window. Incomplete
// schedules are never active.
func IsMeetingActive(s Schedule, now time.Time, w JoinWindow) bool {
	start, ok := s.Start()
	if !ok {
		return false
	}
	end, _ := s.End()
	opens := start.Add(-w.LeadTime)
	closes := end.Add(w.Grace)
	return !now.Before(opens) && !now.After(closes)
}

// IsSessionCompleted reports whether the scheduled end is in the past.
func IsSessionCompleted(s Schedule, now time.Time) bool {
	end, ok := s.End()
	if !ok {
		return false
	}
	return now.After(end)
}
