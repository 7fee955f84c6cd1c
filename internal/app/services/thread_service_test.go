package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/domain"
	"github.com/yigit/skillswap/internal/pkg/apperrors"
)

func TestClearRemovesMessagesAndKeepsExchange(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)
	ex := requestBetween(t, f, alice, bob)
	if _, err := f.threadSvc.SendText(context.Background(), bob.ID, ex.ID, "See you then"); err != nil {
		t.Fatalf("SendText: %v", err)
	}

	before, _ := f.exchanges.GetByID(context.Background(), ex.ID)

	// Either participant may clear, whoever sent the messages.
	cleared, err := f.threadSvc.Clear(context.Background(), bob.ID, ex.ID)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if cleared.Deleted != 3 {
		t.Errorf("deleted = %d, want 3", cleared.Deleted)
	}

	thread, err := f.threadSvc.List(context.Background(), alice.ID, ex.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !thread.Empty || len(thread.Messages) != 0 || thread.Placeholder != domain.EmptyThreadPlaceholder {
		t.Fatalf("thread after clear = %+v", thread)
	}

	after, _ := f.exchanges.GetByID(context.Background(), ex.ID)
	if *after != *before {
		t.Fatalf("exchange changed by clear:\nbefore %+v\nafter  %+v", before, after)
	}
	if !f.publisher.published(ExchangeMessagesTopic(ex.ID)) {
		t.Error("thread topic not published")
	}
}

func TestThreadListMarksOwnMessages(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)
	ex := requestBetween(t, f, alice, bob)
	if _, err := f.threadSvc.SendText(context.Background(), bob.ID, ex.ID, "  hello  "); err != nil {
		t.Fatalf("SendText: %v", err)
	}

	thread, err := f.threadSvc.List(context.Background(), bob.ID, ex.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(thread.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(thread.Messages))
	}
	last := thread.Messages[2]
	if !last.Mine || last.Text != "hello" || last.SenderName != "Bob" {
		t.Errorf("last message = %+v", last)
	}
	if thread.Messages[0].Mine {
		t.Errorf("requester's system message marked as the recipient's own")
	}
}

func TestSendTextValidation(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)
	carol := f.addUser("Carol", "", nil, nil)
	ex := requestBetween(t, f, alice, bob)

	if _, err := f.threadSvc.SendText(context.Background(), alice.ID, ex.ID, "   "); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("blank text err = %v", err)
	}
	if _, err := f.threadSvc.SendText(context.Background(), carol.ID, ex.ID, "hi"); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("outsider err = %v", err)
	}
	if _, err := f.threadSvc.Clear(context.Background(), carol.ID, ex.ID); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Errorf("outsider clear err = %v", err)
	}
}

func TestShareResource(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)
	ex := requestBetween(t, f, alice, bob)

	_, err := f.threadSvc.ShareResource(context.Background(), alice.ID, ex.ID, &dto.ShareResourceRequest{Title: "Tour", URL: "go.dev/tour"})
	if apperrors.FieldOf(err) != "url" {
		t.Fatalf("relative url err = %v", err)
	}

	msg, err := f.threadSvc.ShareResource(context.Background(), alice.ID, ex.ID, &dto.ShareResourceRequest{
		Title: "Tour", URL: "https://go.dev/tour", MimeType: "text/html",
	})
	if err != nil {
		t.Fatalf("ShareResource: %v", err)
	}
	if msg.Type != domain.MessageResource || msg.ResourceURL != "https://go.dev/tour" || msg.ResourceType != "text/html" {
		t.Errorf("message = %+v", msg)
	}
}

func TestRejectedThreadHasNoJoinableMeeting(t *testing.T) {
	f := newFixture()
	alice, bob := goPianoPair(f)
	ex := requestBetween(t, f, alice, bob)

	f.now = time.Date(2030, 5, 2, 10, 5, 0, 0, time.UTC)
	before, err := f.threadSvc.List(context.Background(), alice.ID, ex.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !before.MeetingActive {
		t.Fatal("meeting should be active inside the join window")
	}

	if _, err := f.exchangeSvc.Reject(context.Background(), bob.ID, ex.ID); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	meeting, err := f.exchangeSvc.Meeting(context.Background(), alice.ID, ex.ID)
	if err != nil {
		t.Fatalf("Meeting: %v", err)
	}
	thread, err := f.threadSvc.List(context.Background(), alice.ID, ex.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if meeting.Joinable || thread.MeetingActive {
		t.Fatalf("rejected exchange: meeting.joinable=%v thread.meetingActive=%v", meeting.Joinable, thread.MeetingActive)
	}
	for _, m := range thread.Messages {
		if m.Joinable {
			t.Errorf("entry %q still joinable after rejection", m.Text)
		}
	}
}
