package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/app/auth"
	"github.com/yigit/skillswap/internal/app/models"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/app/repositories"
	"github.com/yigit/skillswap/internal/pkg/apperrors"
	"github.com/yigit/skillswap/internal/pkg/helpers"
	"github.com/yigit/skillswap/internal/pkg/validation"
)

// CommunityService defines the interface for community forum operations
type CommunityService interface {
	Create(ctx context.Context, userID string, req *dto.CreatePostRequest) (*dto.PostResponse, error)
	Get(ctx context.Context, userID, postID string) (*dto.PostResponse, error)
	List(ctx context.Context, userID string, filter *dto.PostFilterRequest, page, size int) (*dto.PostListResponse, error)
	ToggleLike(ctx context.Context, userID, postID string) (*dto.LikeResponse, error)
	AddComment(ctx context.Context, userID, postID string, req *dto.AddCommentRequest) (*dto.PostResponse, error)
	DeleteComment(ctx context.Context, userID, postID, commentID string) error
	Delete(ctx context.Context, userID, postID string) error
	Categories(ctx context.Context) (*dto.CategoryListResponse, error)
}

// communityServiceImpl implements CommunityService
type communityServiceImpl struct {
	postRepo     repositories.PostStore
	userRepo     repositories.UserStore
	authzService *auth.AuthorizationService
	publisher    Publisher
	now          Clock
	logger       zerolog.Logger
}

// NewCommunityService creates a new CommunityService
func NewCommunityService(
	postRepo repositories.PostStore,
	userRepo repositories.UserStore,
	authzService *auth.AuthorizationService,
	publisher Publisher,
	clock Clock,
	logger zerolog.Logger,
) CommunityService {
	return &communityServiceImpl{
		postRepo:     postRepo,
		userRepo:     userRepo,
		authzService: authzService,
		publisher:    publisherOrNop(publisher),
		now:          clockOrNow(clock),
		logger:       logger,
	}
}

// Create publishes a new post
func (s *communityServiceImpl) Create(ctx context.Context, userID string, req *dto.CreatePostRequest) (*dto.PostResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("content", "Post content is required")
	}
	if !validation.NewStringValidation(content).WithMaxLength(validation.PostMaxLength).Validate() {
		return nil, apperrors.NewValidationError("content",
			fmt.Sprintf("Post content must be at most %d characters", validation.PostMaxLength))
	}
	category := strings.TrimSpace(req.Category)
	if !validation.NewStringValidation(category).WithRequired(false).WithMaxLength(validation.CategoryMaxLength).Validate() {
		return nil, apperrors.NewValidationError("category",
			fmt.Sprintf("Category must be at most %d characters", validation.CategoryMaxLength))
	}

	name, photo, err := authorOf(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:    userID,
		AuthorName:  name,
		AuthorPhoto: photo,
		Content:     content,
		Category:    category,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	s.logger.Debug().Str("postID", post.ID).Str("userID", userID).Msg("Post created")
	s.publisher.Publish(PostsTopic)

	resp := dto.FromPost(post, userID)
	return &resp, nil
}

// Get returns one post
func (s *communityServiceImpl) Get(ctx context.Context, userID, postID string) (*dto.PostResponse, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	resp := dto.FromPost(post, userID)
	return &resp, nil
}

// List returns a page of posts
func (s *communityServiceImpl) List(ctx context.Context, userID string, filter *dto.PostFilterRequest, page, size int) (*dto.PostListResponse, error) {
	if filter == nil {
		filter = &dto.PostFilterRequest{}
	}
	sort := repositories.PostSort(filter.Sort)
	switch sort {
	case "":
		sort = repositories.PostSortNewest
	case repositories.PostSortNewest, repositories.PostSortOldest,
		repositories.PostSortMostLiked, repositories.PostSortMostCommented:
	default:
		return nil, apperrors.NewValidationError("sort", "Unknown sort order")
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	posts, total, err := s.postRepo.List(ctx, repositories.PostFilter{
		Search:   strings.TrimSpace(filter.Search),
		Category: strings.TrimSpace(filter.Category),
		Sort:     sort,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}

	out := make([]dto.PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, dto.FromPost(p, userID))
	}
	return &dto.PostListResponse{
		Posts:      out,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

// ToggleLike likes the post, or removes the like if the user already liked it
func (s *communityServiceImpl) ToggleLike(ctx context.Context, userID, postID string) (*dto.LikeResponse, error) {
	liked, err := s.postRepo.ToggleLike(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(PostsTopic)
	return &dto.LikeResponse{Liked: liked}, nil
}

// AddComment appends a comment and returns the updated post
func (s *communityServiceImpl) AddComment(ctx context.Context, userID, postID string, req *dto.AddCommentRequest) (*dto.PostResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperrors.NewValidationError("text", "Comment cannot be empty")
	}
	if !validation.NewStringValidation(text).WithMaxLength(validation.CommentMaxLength).Validate() {
		return nil, apperrors.NewValidationError("text",
			fmt.Sprintf("Comment must be at most %d characters", validation.CommentMaxLength))
	}

	name, photo, err := authorOf(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}

	comment := models.Comment{
		ID:        uuid.NewString(),
		UserID:    userID,
		UserName:  name,
		UserPhoto: photo,
		Text:      text,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.postRepo.AddComment(ctx, postID, comment); err != nil {
		return nil, err
	}
	s.publisher.Publish(PostsTopic)

	return s.Get(ctx, userID, postID)
}

// DeleteComment removes a comment. The comment author and the post author may do this.
func (s *communityServiceImpl) DeleteComment(ctx context.Context, userID, postID, commentID string) error {
	if err := s.authzService.CanDeleteComment(ctx, postID, commentID, userID); err != nil {
		return err
	}
	if err := s.postRepo.RemoveComment(ctx, postID, commentID); err != nil {
		return err
	}
	s.publisher.Publish(PostsTopic)
	return nil
}

// Delete removes a post. Only its author may do this.
func (s *communityServiceImpl) Delete(ctx context.Context, userID, postID string) error {
	if _, err := s.authzService.PostForAuthor(ctx, postID, userID); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	s.logger.Info().Str("postID", postID).Str("userID", userID).Msg("Post deleted")
	s.publisher.Publish(PostsTopic)
	return nil
}

// Categories lists the distinct post categories
func (s *communityServiceImpl) Categories(ctx context.Context) (*dto.CategoryListResponse, error) {
	categories, err := s.postRepo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.CategoryListResponse{Categories: categories}, nil
}
