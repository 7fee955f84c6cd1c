package auth

import (
	"context"

	"github.com/yigit/skillswap/internal/app/models"
	"github.com/yigit/skillswap/internal/app/repositories"
	"github.com/yigit/skillswap/internal/pkg/apperrors"
	"github.com/yigit/skillswap/internal/pkg/logger"
)

// AuthorizationService loads documents and checks that a user may act on them.
type AuthorizationService struct {
	exchangeRepo     repositories.ExchangeStore
	postRepo         repositories.PostStore
	resourceRepo     repositories.ResourceStore
	notificationRepo repositories.NotificationStore
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(
	exchangeRepo repositories.ExchangeStore,
	postRepo repositories.PostStore,
	resourceRepo repositories.ResourceStore,
	notificationRepo repositories.NotificationStore,
) *AuthorizationService {
	return &AuthorizationService{
		exchangeRepo:     exchangeRepo,
		postRepo:         postRepo,
		resourceRepo:     resourceRepo,
		notificationRepo: notificationRepo,
	}
}

// ExchangeForParticipant returns the exchange if userID is one of its two participants.
func (s *AuthorizationService) ExchangeForParticipant(ctx context.Context, exchangeID, userID string) (*models.Exchange, error) {
	ex, err := s.exchangeRepo.GetByID(ctx, exchangeID)
	if err != nil {
		return nil, err
	}
	if !ex.Parties().Includes(userID) {
		logger.Warn().Str("exchangeID", exchangeID).Str("userID", userID).Msg("Non-participant tried to access exchange")
		return nil, apperrors.NewForbiddenError("You are not a participant of this exchange")
	}
	return ex, nil
}

// PostForAuthor returns the post if userID wrote it.
func (s *AuthorizationService) PostForAuthor(ctx context.Context, postID, userID string) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != userID {
		return nil, apperrors.NewForbiddenError("Only the author can delete this post")
	}
	return post, nil
}

// CanDeleteComment allows the comment author and the post author.
func (s *AuthorizationService) CanDeleteComment(ctx context.Context, postID, commentID, userID string) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	comment, ok := post.FindComment(commentID)
	if !ok {
		return apperrors.ErrCommentNotFound
	}
	if comment.UserID != userID && post.AuthorID != userID {
		return apperrors.NewForbiddenError("Only the comment author or the post author can delete this comment")
	}
	return nil
}

// ResourceForAuthor returns the resource if userID shared it.
func (s *AuthorizationService) ResourceForAuthor(ctx context.Context, resourceID, userID string) (*models.Resource, error) {
	res, err := s.resourceRepo.GetByID(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if res.AuthorID != userID {
		return nil, apperrors.NewForbiddenError("Only the author can delete this resource")
	}
	return res, nil
}

// NotificationForOwner returns the notification if it was addressed to userID.
func (s *AuthorizationService) NotificationForOwner(ctx context.Context, notificationID, userID string) (*models.Notification, error) {
	n, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, apperrors.NewForbiddenError("This notification belongs to another user")
	}
	return n, nil
}
