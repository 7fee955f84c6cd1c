package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/app/auth"
	"github.com/yigit/skillswap/internal/app/models"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/app/repositories"
	"github.com/yigit/skillswap/internal/domain"
	"github.com/yigit/skillswap/internal/pkg/apperrors"
	"github.com/yigit/skillswap/internal/pkg/helpers"
	"github.com/yigit/skillswap/internal/pkg/telemetry"
	"github.com/yigit/skillswap/internal/pkg/validation"
	"go.opentelemetry.io/otel/attribute"
)

// ExchangeService defines the interface for exchange operations
type ExchangeService interface {
	Request(ctx context.Context, requesterID string, req *dto.CreateExchangeRequest) (*dto.ExchangeResponse, error)
	Accept(ctx context.Context, userID, exchangeID string) (*dto.ExchangeResponse, error)
	Reject(ctx context.Context, userID, exchangeID string) (*dto.ExchangeResponse, error)
	Schedule(ctx context.Context, userID, exchangeID string, req *dto.ScheduleExchangeRequest) (*dto.ExchangeResponse, error)
	Get(ctx context.Context, userID, exchangeID string) (*dto.ExchangeResponse, error)
	List(ctx context.Context, userID string, filter *dto.ExchangeFilterRequest) (*dto.ExchangeListResponse, error)
	Sessions(ctx context.Context, userID, search string) (*dto.SessionListResponse, error)
	Meeting(ctx context.Context, userID, exchangeID string) (*dto.MeetingResponse, error)
}

// ExchangeOptions configures meeting links, the join window and the clock.
type ExchangeOptions struct {
	Links      *domain.MeetingLinkGenerator
	JoinWindow domain.JoinWindow
	Clock      Clock
}

type exchangeServiceImpl struct {
	exchangeRepo repositories.ExchangeStore
	messageRepo  repositories.MessageStore
	userRepo     repositories.UserStore
	authzService *auth.AuthorizationService
	notifier     Notifier
	publisher    Publisher
	links        *domain.MeetingLinkGenerator
	window       domain.JoinWindow
	now          Clock
	logger       zerolog.Logger
}

// NewExchangeService creates a new ExchangeService
func NewExchangeService(
	exchangeRepo repositories.ExchangeStore,
	messageRepo repositories.MessageStore,
	userRepo repositories.UserStore,
	authzService *auth.AuthorizationService,
	notifier Notifier,
	publisher Publisher,
	opts ExchangeOptions,
	logger zerolog.Logger,
) ExchangeService {
	if opts.Links == nil {
		opts.Links = domain.NewMeetingLinkGenerator("")
	}
	if opts.JoinWindow == (domain.JoinWindow{}) {
		opts.JoinWindow = domain.DefaultJoinWindow
	}
	return &exchangeServiceImpl{
		exchangeRepo: exchangeRepo,
		messageRepo:  messageRepo,
		userRepo:     userRepo,
		authzService: authzService,
		notifier:     notifier,
		publisher:    publisherOrNop(publisher),
		links:        opts.Links,
		window:       opts.JoinWindow,
		now:          clockOrNow(opts.Clock),
		logger:       logger,
	}
}

func participantPhoto(ex *models.Exchange, userID string) string {
	if userID == ex.RecipientID {
		return ex.RecipientPhoto
	}
	return ex.RequesterPhoto
}

// systemMessage builds a thread entry authored by actorID.
func systemMessage(ex *models.Exchange, actorID string, kind domain.MessageType, text string) *models.Message {
	return &models.Message{
		ExchangeID:  ex.ID,
		Type:        kind,
		Text:        text,
		SenderID:    actorID,
		SenderName:  ex.NameOf(actorID),
		SenderPhoto: participantPhoto(ex, actorID),
		MeetingLink: ex.MeetingLink,
	}
}

// notify delivers n without failing the caller.
func (s *exchangeServiceImpl) notify(ctx context.Context, n *models.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn().Err(err).
			Str("userID", n.UserID).
			Str("type", string(n.Type)).
			Str("exchangeID", n.RelatedID).
			Msg("Failed to create notification")
	}
}

func (s *exchangeServiceImpl) publishExchange(ex *models.Exchange, threadChanged bool) {
	topics := []string{UserExchangesTopic(ex.RequesterID), UserExchangesTopic(ex.RecipientID)}
	if threadChanged {
		topics = append(topics, ExchangeMessagesTopic(ex.ID))
	}
	s.publisher.Publish(topics...)
}

func (s *exchangeServiceImpl) response(ex *models.Exchange, viewerID string) *dto.ExchangeResponse {
	resp := dto.FromExchange(ex, viewerID, s.now())
	return &resp
}

// Request creates a pending exchange from requesterID to req.RecipientID
func (s *exchangeServiceImpl) Request(ctx context.Context, requesterID string, req *dto.CreateExchangeRequest) (_ *dto.ExchangeResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ExchangeService.Request",
		attribute.String("user.id", requesterID),
		attribute.String("recipient.id", req.RecipientID))
	defer func() { telemetry.EndSpan(span, err) }()

	note := strings.TrimSpace(req.Message)
	if note == "" {
		return nil, apperrors.NewValidationError("message", "Message is required")
	}
	if !validation.NewStringValidation(note).WithMaxLength(validation.MessageMaxLength).Validate() {
		return nil, apperrors.NewValidationError("message",
			fmt.Sprintf("Message must be at most %d characters", validation.MessageMaxLength))
	}
	schedule, err := domain.ParseSchedule(strings.TrimSpace(req.Date), strings.TrimSpace(req.Time), req.Duration, strings.TrimSpace(req.Timezone))
	if err != nil {
		return nil, err
	}
	if req.RecipientID == "" || req.RecipientID == requesterID {
		return nil, apperrors.NewValidationError("recipientId", "Choose another user to exchange with")
	}

	requester, err := s.userRepo.FindByID(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("error loading requester: %w", err)
	}
	recipient, err := s.userRepo.FindByID(ctx, req.RecipientID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrUserNotFound, "Recipient not found")
		}
		return nil, fmt.Errorf("error loading recipient: %w", err)
	}

	toTeach, toLearn := strings.TrimSpace(req.SkillToTeach), strings.TrimSpace(req.SkillToLearn)
	if toTeach == "" || toLearn == "" {
		suggestTeach, suggestLearn := domain.SuggestExchangeSkills(requester.Skills(), recipient.Skills())
		if toTeach == "" {
			toTeach = suggestTeach
		}
		if toLearn == "" {
			toLearn = suggestLearn
		}
	}

	ex := &models.Exchange{
		RequesterID:    requester.ID,
		RequesterName:  requester.DisplayName,
		RequesterPhoto: requester.PhotoURL,
		RecipientID:    recipient.ID,
		RecipientName:  recipient.DisplayName,
		RecipientPhoto: recipient.PhotoURL,
		SkillToTeach:   toTeach,
		SkillToLearn:   toLearn,
		Status:         domain.StatusPending,
		Message:        note,
		MeetingLink:    s.links.Generate(),
	}
	ex.SetSchedule(schedule)

	if err := s.exchangeRepo.Create(ctx, ex); err != nil {
		return nil, fmt.Errorf("error creating exchange: %w", err)
	}
	span.SetAttributes(attribute.String("exchange.id", ex.ID))
	s.logger.Info().Str("exchangeID", ex.ID).Str("requesterID", ex.RequesterID).Str("recipientID", ex.RecipientID).
		Msg("Exchange requested")

	// The exchange stays created even if the thread writes fail.
	defer s.publishExchange(ex, true)

	intro := systemMessage(ex, requesterID, domain.MessageSystem,
		fmt.Sprintf("%s requested to exchange %s for %s", ex.RequesterName, ex.SkillToTeach, ex.SkillToLearn))
	if err := s.messageRepo.Append(ctx, intro); err != nil {
		return nil, fmt.Errorf("exchange %s created but its thread could not be started: %w", ex.ID, err)
	}
	text := systemMessage(ex, requesterID, domain.MessageText, note)
	text.MeetingLink = ""
	if err := s.messageRepo.Append(ctx, text); err != nil {
		return nil, fmt.Errorf("exchange %s created but its message could not be stored: %w", ex.ID, err)
	}

	s.notify(ctx, models.NewExchangeRequestNotification(ex))
	return s.response(ex, requesterID), nil
}

// Accept moves a pending exchange to accepted
func (s *exchangeServiceImpl) Accept(ctx context.Context, userID, exchangeID string) (*dto.ExchangeResponse, error) {
	return s.respond(ctx, userID, exchangeID, domain.ActionAccept)
}

// Reject moves a pending exchange to rejected
func (s *exchangeServiceImpl) Reject(ctx context.Context, userID, exchangeID string) (*dto.ExchangeResponse, error) {
	return s.respond(ctx, userID, exchangeID, domain.ActionReject)
}

func (s *exchangeServiceImpl) respond(ctx context.Context, userID, exchangeID string, action domain.ExchangeAction) (_ *dto.ExchangeResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ExchangeService.Respond",
		attribute.String("user.id", userID),
		attribute.String("exchange.id", exchangeID),
		attribute.String("exchange.action", string(action)))
	defer func() { telemetry.EndSpan(span, err) }()

	ex, err := s.authzService.ExchangeForParticipant(ctx, exchangeID, userID)
	if err != nil {
		return nil, err
	}
	next, err := domain.ApplyAction(ex.Parties(), ex.Status, userID, action)
	if err != nil {
		return nil, err
	}

	ex.Status = next
	if err := s.exchangeRepo.UpdateStatus(ctx, ex); err != nil {
		return nil, fmt.Errorf("error updating exchange status: %w", err)
	}
	s.logger.Info().Str("exchangeID", ex.ID).Str("status", string(next)).Msg("Exchange answered")
	defer s.publishExchange(ex, true)

	accepted := next == domain.StatusAccepted
	text := fmt.Sprintf("%s declined the exchange request", ex.NameOf(userID))
	if accepted {
		text = fmt.Sprintf("%s accepted the exchange request", ex.NameOf(userID))
	}
	if err := s.messageRepo.Append(ctx, systemMessage(ex, userID, domain.MessageSystem, text)); err != nil {
		return nil, fmt.Errorf("exchange %s is %s but the thread could not be updated: %w", ex.ID, next, err)
	}

	s.notify(ctx, models.NewExchangeResponseNotification(ex, accepted))
	return s.response(ex, userID), nil
}

// Schedule sets or moves the session slot and issues a new meeting link
func (s *exchangeServiceImpl) Schedule(ctx context.Context, userID, exchangeID string, req *dto.ScheduleExchangeRequest) (_ *dto.ExchangeResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "ExchangeService.Schedule",
		attribute.String("user.id", userID),
		attribute.String("exchange.id", exchangeID))
	defer func() { telemetry.EndSpan(span, err) }()

	schedule, err := domain.ParseSchedule(strings.TrimSpace(req.Date), strings.TrimSpace(req.Time), req.Duration, strings.TrimSpace(req.Timezone))
	if err != nil {
		return nil, err
	}

	ex, err := s.authzService.ExchangeForParticipant(ctx, exchangeID, userID)
	if err != nil {
		return nil, err
	}
	next, err := domain.ApplyAction(ex.Parties(), ex.Status, userID, domain.ActionSchedule)
	if err != nil {
		return nil, err
	}

	ex.Status = next
	ex.SetSchedule(schedule)
	ex.MeetingLink = s.links.Generate()
	if err := s.exchangeRepo.UpdateSchedule(ctx, ex); err != nil {
		return nil, fmt.Errorf("error scheduling exchange: %w", err)
	}
	s.logger.Info().Str("exchangeID", ex.ID).Str("date", ex.Date).Str("time", ex.Time).Msg("Session scheduled")
	defer s.publishExchange(ex, true)

	text := fmt.Sprintf("Session scheduled for %s at %s (%d minutes)", ex.Date, ex.Time, ex.DurationMinutes)
	if err := s.messageRepo.Append(ctx, systemMessage(ex, userID, domain.MessageVideo, text)); err != nil {
		return nil, fmt.Errorf("exchange %s is scheduled but the thread could not be updated: %w", ex.ID, err)
	}

	s.notify(ctx, models.NewSessionScheduledNotification(ex, userID))
	return s.response(ex, userID), nil
}

// Get returns one exchange to a participant
func (s *exchangeServiceImpl) Get(ctx context.Context, userID, exchangeID string) (*dto.ExchangeResponse, error) {
	ex, err := s.authzService.ExchangeForParticipant(ctx, exchangeID, userID)
	if err != nil {
		return nil, err
	}
	return s.response(ex, userID), nil
}

// List returns the user's exchanges, optionally limited to one bucket and a search term
func (s *exchangeServiceImpl) List(ctx context.Context, userID string, filter *dto.ExchangeFilterRequest) (*dto.ExchangeListResponse, error) {
	if filter == nil {
		filter = &dto.ExchangeFilterRequest{}
	}
	var bucket domain.Bucket
	if filter.Bucket != "" {
		b, ok := domain.ParseBucket(filter.Bucket)
		if !ok {
			return nil, apperrors.NewValidationError("bucket", "Unknown session bucket")
		}
		bucket = b
	}

	exchanges, err := s.exchangeRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]dto.ExchangeResponse, 0, len(exchanges))
	for _, ex := range exchanges {
		resp := dto.FromExchange(ex, userID, now)
		if bucket != "" && resp.Bucket != bucket {
			continue
		}
		if !helpers.AnyContainsFold(filter.Search, resp.Partner.Name, ex.SkillToTeach, ex.SkillToLearn) {
			continue
		}
		out = append(out, resp)
	}
	return &dto.ExchangeListResponse{Exchanges: out}, nil
}

// Sessions returns the chat list: the most recently updated exchange with
// each counterpart, with its last message.
func (s *exchangeServiceImpl) Sessions(ctx context.Context, userID, search string) (*dto.SessionListResponse, error) {
	exchanges, err := s.exchangeRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(exchanges, func(i, j int) bool {
		return exchanges[i].UpdatedAt.After(exchanges[j].UpdatedAt)
	})

	now := s.now()
	seen := make(map[string]struct{}, len(exchanges))
	sessions := make([]dto.SessionResponse, 0, len(exchanges))
	for _, ex := range exchanges {
		partnerID, partnerName, partnerPhoto := ex.Counterpart(userID)
		if _, ok := seen[partnerID]; ok {
			continue
		}
		seen[partnerID] = struct{}{}

		if !helpers.AnyContainsFold(search, partnerName, ex.SkillToTeach, ex.SkillToLearn) {
			continue
		}

		entry := dto.SessionResponse{
			ExchangeID:   ex.ID,
			Partner:      dto.ParticipantResponse{ID: partnerID, Name: partnerName, Photo: partnerPhoto},
			SkillToTeach: ex.SkillToTeach,
			SkillToLearn: ex.SkillToLearn,
			Status:       domain.DisplayStatus(ex.Status, ex.Schedule(), now),
			UpdatedAt:    ex.UpdatedAt,
		}
		last, err := s.messageRepo.Last(ctx, ex.ID)
		if err != nil {
			s.logger.Warn().Err(err).Str("exchangeID", ex.ID).Msg("Could not load last message")
		} else if last != nil {
			msg := dto.FromMessage(last, userID)
			entry.LastMessage = &msg
		}
		sessions = append(sessions, entry)
	}
	return &dto.SessionListResponse{Sessions: sessions}, nil
}

// Meeting reports the meeting link and whether it can be joined now
func (s *exchangeServiceImpl) Meeting(ctx context.Context, userID, exchangeID string) (*dto.MeetingResponse, error) {
	ex, err := s.authzService.ExchangeForParticipant(ctx, exchangeID, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	schedule := ex.Schedule()
	resp := &dto.MeetingResponse{
		ExchangeID:  ex.ID,
		MeetingLink: ex.MeetingLink,
		Joinable:    domain.IsMeetingActive(ex.MeetingSchedule(), now, s.window),
		Completed:   domain.IsSessionCompleted(schedule, now),
	}
	if start, ok := schedule.Start(); ok {
		resp.StartsAt = start
	}
	if end, ok := schedule.End(); ok {
		resp.EndsAt = end
	}
	return resp, nil
}
