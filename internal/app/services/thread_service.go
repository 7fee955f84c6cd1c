package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/app/auth"
	"github.com/yigit/skillswap/internal/app/models"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/app/repositories"
	"github.com/yigit/skillswap/internal/domain"
	"github.com/yigit/skillswap/internal/pkg/apperrors"
	"github.com/yigit/skillswap/internal/pkg/validation"
)

// ThreadService defines the interface for exchange thread operations
type ThreadService interface {
	List(ctx context.Context, userID, exchangeID string) (*dto.ThreadResponse, error)
	SendText(ctx context.Context, userID, exchangeID, text string) (*dto.MessageResponse, error)
	ShareResource(ctx context.Context, userID, exchangeID string, req *dto.ShareResourceRequest) (*dto.MessageResponse, error)
	Clear(ctx context.Context, userID, exchangeID string) (*dto.ClearThreadResponse, error)
}

type threadServiceImpl struct {
	messageRepo  repositories.MessageStore
	authzService *auth.AuthorizationService
	publisher    Publisher
	window       domain.JoinWindow
	now          Clock
	logger       zerolog.Logger
}

// NewThreadService creates a new ThreadService
func NewThreadService(
	messageRepo repositories.MessageStore,
	authzService *auth.AuthorizationService,
	publisher Publisher,
	window domain.JoinWindow,
	clock Clock,
	logger zerolog.Logger,
) ThreadService {
	if window == (domain.JoinWindow{}) {
		window = domain.DefaultJoinWindow
	}
	return &threadServiceImpl{
		messageRepo:  messageRepo,
		authzService: authzService,
		publisher:    publisherOrNop(publisher),
		window:       window,
		now:          clockOrNow(clock),
		logger:       logger,
	}
}

// List renders the thread of an exchange for a participant
func (s *threadServiceImpl) List(ctx context.Context, userID, exchangeID string) (*dto.ThreadResponse, error) {
	ex, err := s.authzService.ExchangeForParticipant(ctx, exchangeID, userID)
	if err != nil {
		return nil, err
	}

	stored, err := s.messageRepo.ListByExchange(ctx, ex.ID)
	if err != nil {
		return nil, err
	}
	messages := make([]domain.ThreadMessage, 0, len(stored))
	for _, m := range stored {
		messages = append(messages, m.ThreadMessage())
	}

	thread := domain.BuildThread(messages, userID, ex.MeetingSchedule(), s.now(), s.window)
	resp := dto.FromThread(ex.ID, thread)
	return &resp, nil
}

func (s *threadServiceImpl) append(ctx context.Context, ex *models.Exchange, userID string, msg *models.Message) (*dto.MessageResponse, error) {
	msg.ExchangeID = ex.ID
	msg.SenderID = userID
	msg.SenderName = ex.NameOf(userID)
	msg.SenderPhoto = participantPhoto(ex, userID)

	if err := s.messageRepo.Append(ctx, msg); err != nil {
		return nil, fmt.Errorf("error storing message: %w", err)
	}
	s.publisher.Publish(ExchangeMessagesTopic(ex.ID), UserExchangesTopic(ex.RequesterID), UserExchangesTopic(ex.RecipientID))

	resp := dto.FromMessage(msg, userID)
	return &resp, nil
}

// SendText appends a text message from userID
func (s *threadServiceImpl) SendText(ctx context.Context, userID, exchangeID, text string) (*dto.MessageResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("text", "Message cannot be empty")
	}
	if !validation.NewStringValidation(text).WithMaxLength(validation.MessageMaxLength).Validate() {
		return nil, apperrors.NewValidationError("text",
			fmt.Sprintf("Message must be at most %d characters", validation.MessageMaxLength))
	}

	ex, err := s.authzService.ExchangeForParticipant(ctx, exchangeID, userID)
	if err != nil {
		return nil, err
	}
	return s.append(ctx, ex, userID, &models.Message{Type: domain.MessageText, Text: text})
}

// ShareResource appends a link to a learning resource
func (s *threadServiceImpl) ShareResource(ctx context.Context, userID, exchangeID string, req *dto.ShareResourceRequest) (*dto.MessageResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "Title is required")
	}
	if !validation.NewStringValidation(title).WithMaxLength(validation.TitleMaxLength).Validate() {
		return nil, apperrors.NewValidationError("title",
			fmt.Sprintf("Title must be at most %d characters", validation.TitleMaxLength))
	}
	if !validation.IsHTTPURL(req.URL) {
		return nil, apperrors.NewValidationError("url", "URL must be an absolute http or https URL")
	}

	ex, err := s.authzService.ExchangeForParticipant(ctx, exchangeID, userID)
	if err != nil {
		return nil, err
	}
	return s.append(ctx, ex, userID, &models.Message{
		Type:          domain.MessageResource,
		Text:          title,
		ResourceTitle: title,
		ResourceURL:   strings.TrimSpace(req.URL),
		ResourceType:  strings.TrimSpace(req.MimeType),
	})
}

// Clear deletes every message of the thread. The exchange itself is not modified.
func (s *threadServiceImpl) Clear(ctx context.Context, userID, exchangeID string) (*dto.ClearThreadResponse, error) {
	ex, err := s.authzService.ExchangeForParticipant(ctx, exchangeID, userID)
	if err != nil {
		return nil, err
	}

	deleted, err := s.messageRepo.DeleteByExchange(ctx, ex.ID)
	if err != nil {
		return nil, fmt.Errorf("error clearing thread: %w", err)
	}
	s.logger.Info().Str("exchangeID", ex.ID).Str("userID", userID).Int64("deleted", deleted).Msg("Thread cleared")

	s.publisher.Publish(ExchangeMessagesTopic(ex.ID), UserExchangesTopic(ex.RequesterID), UserExchangesTopic(ex.RecipientID))
	return &dto.ClearThreadResponse{Deleted: deleted}, nil
}
