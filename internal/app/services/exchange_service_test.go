package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/yigit/skillswap/internal/app/models"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/domain"
	"github.com/yigit/skillswap/internal/pkg/apperrors"
)

func requestBetween(t *testing.T, f *fixture, from, to *models.User) *dto.ExchangeResponse {
	t.Helper()
	resp, err := f.exchangeSvc.Request(context.Background(), from.ID, &dto.CreateExchangeRequest{
		RecipientID: to.ID,
		Message:     "Let's swap!",
		Date:        "2030-05-02",
		Time:        "10:00",
	})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	return resp
}

func goPianoPair(f *fixture) (alice, bob *models.User) {
	alice = f.addUser("Alice", "Paris", []string{"Go"}, []string{"Piano"})
	bob = f.addUser("Bob", "paris", []string{"Piano"}, []string{"Go"})
	return alice, bob
}

func TestRequestCreatesPendingExchangeWithThread(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)

	resp := requestBetween(t, f, alice, bob)

	if resp.Status != domain.StatusPending || resp.Bucket != domain.BucketPending {
		t.Fatalf("status = %s bucket = %s, want pending", resp.Status, resp.Bucket)
	}
	if resp.SkillToTeach != "Go" || resp.SkillToLearn != "Piano" {
		t.Errorf("suggested skills = %q/%q, want Go/Piano", resp.SkillToTeach, resp.SkillToLearn)
	}
	if resp.Duration != domain.DefaultDurationMinutes || resp.Timezone != "UTC" {
		t.Errorf("duration = %d timezone = %q, want defaults", resp.Duration, resp.Timezone)
	}
	if !strings.HasPrefix(resp.MeetingLink, "https://meet.example.com/") {
		t.Errorf("meeting link = %q", resp.MeetingLink)
	}
	if !resp.IsRequester || resp.Partner.ID != bob.ID {
		t.Errorf("viewer fields wrong: %+v", resp)
	}

	thread, _ := f.messages.ListByExchange(context.Background(), resp.ID)
	if len(thread) != 2 {
		t.Fatalf("thread has %d messages, want 2", len(thread))
	}
	if thread[0].Type != domain.MessageSystem || thread[0].Text != "Alice requested to exchange Go for Piano" {
		t.Errorf("first message = %+v", thread[0])
	}
	if thread[0].MeetingLink != resp.MeetingLink {
		t.Errorf("system message link = %q, want %q", thread[0].MeetingLink, resp.MeetingLink)
	}
	if thread[1].Type != domain.MessageText || thread[1].Text != "Let's swap!" || thread[1].SenderID != alice.ID {
		t.Errorf("second message = %+v", thread[1])
	}

	notes, _ := f.notifications.ListByUser(context.Background(), bob.ID, false, 0)
	if len(notes) != 1 || notes[0].Type != models.NotificationExchangeRequest || notes[0].RelatedID != resp.ID {
		t.Fatalf("recipient notifications = %+v", notes)
	}

	for _, topic := range []string{UserExchangesTopic(alice.ID), UserExchangesTopic(bob.ID), ExchangeMessagesTopic(resp.ID), UserNotificationsTopic(bob.ID)} {
		if !f.publisher.published(topic) {
			t.Errorf("topic %s not published", topic)
		}
	}
}

func TestRequestValidationHappensBeforeAnyWrite(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)

	cases := []struct {
		name  string
		req   dto.CreateExchangeRequest
		field string
		want  error
	}{
		{"missing message", dto.CreateExchangeRequest{RecipientID: bob.ID, Date: "2030-05-02", Time: "10:00"}, "message", apperrors.ErrValidationFailed},
		{"missing date", dto.CreateExchangeRequest{RecipientID: bob.ID, Message: "hi", Time: "10:00"}, "date", apperrors.ErrValidationFailed},
		{"missing time", dto.CreateExchangeRequest{RecipientID: bob.ID, Message: "hi", Date: "2030-05-02"}, "time", apperrors.ErrValidationFailed},
		{"short duration", dto.CreateExchangeRequest{RecipientID: bob.ID, Message: "hi", Date: "2030-05-02", Time: "10:00", Duration: 5}, "duration", apperrors.ErrValidationFailed},
		{"bad timezone", dto.CreateExchangeRequest{RecipientID: bob.ID, Message: "hi", Date: "2030-05-02", Time: "10:00", Timezone: "Mars/Base"}, "timezone", apperrors.ErrValidationFailed},
		{"self", dto.CreateExchangeRequest{RecipientID: alice.ID, Message: "hi", Date: "2030-05-02", Time: "10:00"}, "recipientId", apperrors.ErrValidationFailed},
		{"unknown recipient", dto.CreateExchangeRequest{RecipientID: "nobody", Message: "hi", Date: "2030-05-02", Time: "10:00"}, "", apperrors.ErrUserNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			_, err := f.exchangeSvc.Request(context.Background(), alice.ID, &req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if tc.field != "" && apperrors.FieldOf(err) != tc.field {
				t.Errorf("field = %q, want %q", apperrors.FieldOf(err), tc.field)
			}
		})
	}

	if len(f.exchanges.order) != 0 {
		t.Fatalf("invalid requests stored %d exchanges", len(f.exchanges.order))
	}
}

func TestOnlyRecipientCanAccept(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)
	ex := requestBetween(t, f, alice, bob)

	if _, err := f.exchangeSvc.Accept(context.Background(), alice.ID, ex.ID); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("requester accept err = %v, want permission denied", err)
	}

	resp, err := f.exchangeSvc.Accept(context.Background(), bob.ID, ex.ID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if resp.Status != domain.StatusAccepted {
		t.Fatalf("status = %s, want accepted", resp.Status)
	}

	notes, _ := f.notifications.ListByUser(context.Background(), alice.ID, false, 0)
	if len(notes) != 1 || notes[0].Type != models.NotificationExchangeConfirmation {
		t.Fatalf("requester notifications = %+v", notes)
	}

	thread, _ := f.messages.ListByExchange(context.Background(), ex.ID)
	if last := thread[len(thread)-1]; last.Text != "Bob accepted the exchange request" {
		t.Errorf("last message = %q", last.Text)
	}
}

func TestPendingExchangeCannotBeScheduled(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)
	ex := requestBetween(t, f, alice, bob)

	_, err := f.exchangeSvc.Schedule(context.Background(), bob.ID, ex.ID, &dto.ScheduleExchangeRequest{Date: "2030-05-03", Time: "18:30"})
	if !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Fatalf("err = %v, want invalid transition", err)
	}

	stored, _ := f.exchanges.GetByID(context.Background(), ex.ID)
	if stored.Status != domain.StatusPending {
		t.Fatalf("status = %s, want pending", stored.Status)
	}
}

func TestScheduleAndReschedule(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)
	ex := requestBetween(t, f, alice, bob)
	if _, err := f.exchangeSvc.Accept(context.Background(), bob.ID, ex.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	scheduled, err := f.exchangeSvc.Schedule(context.Background(), alice.ID, ex.ID, &dto.ScheduleExchangeRequest{
		Date: "2030-05-03", Time: "18:30", Duration: 60, Timezone: "Europe/Berlin",
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if scheduled.Status != domain.StatusScheduled || scheduled.Duration != 60 || scheduled.Timezone != "Europe/Berlin" {
		t.Fatalf("scheduled = %+v", scheduled)
	}
	if scheduled.MeetingLink == ex.MeetingLink {
		t.Errorf("meeting link was not regenerated")
	}

	thread, _ := f.messages.ListByExchange(context.Background(), ex.ID)
	last := thread[len(thread)-1]
	if last.Type != domain.MessageVideo || last.Text != "Session scheduled for 2030-05-03 at 18:30 (60 minutes)" {
		t.Errorf("schedule message = %+v", last)
	}
	if last.MeetingLink != scheduled.MeetingLink {
		t.Errorf("schedule message link = %q, want %q", last.MeetingLink, scheduled.MeetingLink)
	}

	notes, _ := f.notifications.ListByUser(context.Background(), bob.ID, false, 0)
	if len(notes) == 0 || notes[0].Type != models.NotificationSessionScheduled {
		t.Fatalf("counterpart notifications = %+v", notes)
	}

	moved, err := f.exchangeSvc.Schedule(context.Background(), bob.ID, ex.ID, &dto.ScheduleExchangeRequest{Date: "2030-05-04", Time: "09:00"})
	if err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	if moved.Date != "2030-05-04" || moved.Duration != domain.DefaultDurationMinutes {
		t.Fatalf("rescheduled = %+v", moved)
	}
}

func TestRejectedIsTerminal(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)
	ex := requestBetween(t, f, alice, bob)

	resp, err := f.exchangeSvc.Reject(context.Background(), bob.ID, ex.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if resp.Bucket != domain.BucketClosed {
		t.Errorf("bucket = %s, want closed", resp.Bucket)
	}

	notes, _ := f.notifications.ListByUser(context.Background(), alice.ID, false, 0)
	if len(notes) != 1 || notes[0].Type != models.NotificationExchangeRejected {
		t.Fatalf("requester notifications = %+v", notes)
	}

	if _, err := f.exchangeSvc.Accept(context.Background(), bob.ID, ex.ID); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Errorf("accept after reject err = %v", err)
	}
	if _, err := f.exchangeSvc.Schedule(context.Background(), alice.ID, ex.ID, &dto.ScheduleExchangeRequest{Date: "2030-05-03", Time: "18:30"}); !errors.Is(err, apperrors.ErrInvalidTransition) {
		t.Errorf("schedule after reject err = %v", err)
	}
}

func TestExchangeVisibleOnlyToParticipants(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)
	carol := f.addUser("Carol", "", nil, nil)
	ex := requestBetween(t, f, alice, bob)

	if _, err := f.exchangeSvc.Get(context.Background(), carol.ID, ex.ID); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("Get by outsider err = %v", err)
	}
	if _, err := f.exchangeSvc.Meeting(context.Background(), carol.ID, ex.ID); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("Meeting by outsider err = %v", err)
	}
	list, err := f.exchangeSvc.List(context.Background(), carol.ID, nil)
	if err != nil || len(list.Exchanges) != 0 {
		t.Fatalf("outsider list = %+v, %v", list, err)
	}
	if _, err := f.exchangeSvc.Get(context.Background(), bob.ID, "missing"); !errors.Is(err, apperrors.ErrExchangeNotFound) {
		t.Fatalf("missing exchange err = %v", err)
	}
}

func TestListBucketsDeriveCompletion(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)
	ex := requestBetween(t, f, alice, bob)
	if _, err := f.exchangeSvc.Accept(context.Background(), bob.ID, ex.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if _, err := f.exchangeSvc.Schedule(context.Background(), bob.ID, ex.ID, &dto.ScheduleExchangeRequest{Date: "2030-05-01", Time: "13:00"}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	upcoming, err := f.exchangeSvc.List(context.Background(), alice.ID, &dto.ExchangeFilterRequest{Bucket: "upcoming"})
	if err != nil || len(upcoming.Exchanges) != 1 {
		t.Fatalf("upcoming = %+v, %v", upcoming, err)
	}

	f.now = time.Date(2030, 5, 1, 13, 31, 0, 0, time.UTC)
	past, err := f.exchangeSvc.List(context.Background(), alice.ID, &dto.ExchangeFilterRequest{Bucket: "completed"})
	if err != nil || len(past.Exchanges) != 1 {
		t.Fatalf("past = %+v, %v", past, err)
	}
	if got := past.Exchanges[0]; got.DisplayStatus != domain.StatusCompleted || got.Status != domain.StatusScheduled {
		t.Errorf("status = %s display = %s", got.Status, got.DisplayStatus)
	}

	if _, err := f.exchangeSvc.List(context.Background(), alice.ID, &dto.ExchangeFilterRequest{Bucket: "later"}); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("unknown bucket err = %v", err)
	}
}

func TestSessionsKeepLatestExchangePerPartner(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)
	dave := f.addUser("Dave", "", []string{"Chess"}, []string{"Go"})

	first := requestBetween(t, f, alice, bob)
	f.now = f.now.Add(time.Minute)
	second := requestBetween(t, f, bob, alice)
	f.now = f.now.Add(time.Minute)
	withDave := requestBetween(t, f, dave, alice)

	sessions, err := f.exchangeSvc.Sessions(context.Background(), alice.ID, "")
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(sessions.Sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions.Sessions))
	}
	if sessions.Sessions[0].ExchangeID != withDave.ID || sessions.Sessions[1].ExchangeID != second.ID {
		t.Errorf("sessions = %+v, want dave then the newer bob exchange (not %s)", sessions.Sessions, first.ID)
	}
	if lm := sessions.Sessions[1].LastMessage; lm == nil || lm.Text != "Let's swap!" || lm.Mine {
		t.Errorf("last message = %+v", lm)
	}

	filtered, _ := f.exchangeSvc.Sessions(context.Background(), alice.ID, "piano")
	if len(filtered.Sessions) != 1 || filtered.Sessions[0].Partner.ID != bob.ID {
		t.Errorf("search by skill = %+v", filtered.Sessions)
	}
	filtered, _ = f.exchangeSvc.Sessions(context.Background(), alice.ID, "DAVE")
	if len(filtered.Sessions) != 1 || filtered.Sessions[0].ExchangeID != withDave.ID {
		t.Errorf("search by name = %+v", filtered.Sessions)
	}
}

func TestMeetingJoinWindow(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)
	ex := requestBetween(t, f, alice, bob)
	if _, err := f.exchangeSvc.Accept(context.Background(), bob.ID, ex.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if _, err := f.exchangeSvc.Schedule(context.Background(), bob.ID, ex.ID, &dto.ScheduleExchangeRequest{Date: "2030-05-01", Time: "14:00", Duration: 60}); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	cases := []struct {
		at       time.Time
		joinable bool
	}{
		{time.Date(2030, 5, 1, 13, 49, 0, 0, time.UTC), false},
		{time.Date(2030, 5, 1, 13, 50, 0, 0, time.UTC), true},
		{time.Date(2030, 5, 1, 15, 30, 0, 0, time.UTC), true},
		{time.Date(2030, 5, 1, 15, 31, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		f.now = tc.at
		m, err := f.exchangeSvc.Meeting(context.Background(), alice.ID, ex.ID)
		if err != nil {
			t.Fatalf("Meeting: %v", err)
		}
		if m.Joinable != tc.joinable {
			t.Errorf("at %s joinable = %v, want %v", tc.at.Format("15:04"), m.Joinable, tc.joinable)
		}
		if m.MeetingLink == "" {
			t.Errorf("link hidden outside the window")
		}
	}
}

func TestNotificationFailureDoesNotFailExchange(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)
	f.notifications.fail = true

	ex := requestBetween(t, f, alice, bob)
	if _, err := f.exchangeSvc.Accept(context.Background(), bob.ID, ex.ID); err != nil {
		t.Fatalf("Accept with failing notifications: %v", err)
	}
	if n, _ := f.notifications.CountUnread(context.Background(), alice.ID); n != 0 {
		t.Fatalf("unexpected notifications: %d", n)
	}
}

func TestMessageFailureAfterStatusWriteIsReported(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)
	ex := requestBetween(t, f, alice, bob)

	f.messages.failOn = f.messages.appends + 1
	if _, err := f.exchangeSvc.Accept(context.Background(), bob.ID, ex.ID); err == nil {
		t.Fatal("expected the failed thread write to be returned")
	}

	stored, _ := f.exchanges.GetByID(context.Background(), ex.ID)
	if stored.Status != domain.StatusAccepted {
		t.Fatalf("status = %s, want accepted to be kept", stored.Status)
	}
}
