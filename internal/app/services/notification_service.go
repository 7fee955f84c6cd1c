package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/app/auth"
	"github.com/yigit/skillswap/internal/app/models"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/app/repositories"
)

// NotificationService manages in-app notifications
type NotificationService interface {
	Notifier
	List(ctx context.Context, userID string, filter *dto.NotificationFilterRequest) (*dto.NotificationListResponse, error)
	UnreadCount(ctx context.Context, userID string) (*dto.UnreadCountResponse, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (*dto.MarkAllReadResponse, error)
}

type notificationServiceImpl struct {
	notificationRepo repositories.NotificationStore
	authzService     *auth.AuthorizationService
	publisher        Publisher
	logger           zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo repositories.NotificationStore,
	authzService *auth.AuthorizationService,
	publisher Publisher,
	logger zerolog.Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		authzService:     authzService,
		publisher:        publisherOrNop(publisher),
		logger:           logger,
	}
}

// Notify stores an unread notification for n.UserID
func (s *notificationServiceImpl) Notify(ctx context.Context, n *models.Notification) error {
	if n.UserID == "" {
		return fmt.Errorf("notification without recipient")
	}
	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("error creating notification: %w", err)
	}
	s.logger.Debug().Str("userID", n.UserID).Str("type", string(n.Type)).Msg("Notification created")
	s.publisher.Publish(UserNotificationsTopic(n.UserID))
	return nil
}

// List returns the user's notifications newest first
func (s *notificationServiceImpl) List(ctx context.Context, userID string, filter *dto.NotificationFilterRequest) (*dto.NotificationListResponse, error) {
	if filter == nil {
		filter = &dto.NotificationFilterRequest{}
	}
	items, err := s.notificationRepo.ListByUser(ctx, userID, filter.UnreadOnly, filter.Limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.NotificationListResponse{Notifications: items, UnreadCount: unread}, nil
}

// UnreadCount counts the user's unread notifications
func (s *notificationServiceImpl) UnreadCount(ctx context.Context, userID string) (*dto.UnreadCountResponse, error) {
	n, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.UnreadCountResponse{Count: n}, nil
}

// MarkRead flips the read flag of one of the user's notifications
func (s *notificationServiceImpl) MarkRead(ctx context.Context, userID, notificationID string) error {
	n, err := s.authzService.NotificationForOwner(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if n.Read {
		return nil
	}
	if err := s.notificationRepo.MarkRead(ctx, notificationID); err != nil {
		return err
	}
	s.publisher.Publish(UserNotificationsTopic(userID))
	return nil
}

// MarkAllRead marks every unread notification of the user as read
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, userID string) (*dto.MarkAllReadResponse, error) {
	updated, err := s.notificationRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	if updated > 0 {
		s.publisher.Publish(UserNotificationsTopic(userID))
	}
	return &dto.MarkAllReadResponse{Updated: updated}, nil
}
