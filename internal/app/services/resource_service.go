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
	"github.com/yigit/skillswap/internal/pkg/apperrors"
	"github.com/yigit/skillswap/internal/pkg/validation"
)

// ResourceService defines the interface for shared learning resources
type ResourceService interface {
	Create(ctx context.Context, userID string, req *dto.CreateResourceRequest) (*dto.ResourceResponse, error)
	List(ctx context.Context, userID string, filter *dto.ResourceFilterRequest) (*dto.ResourceListResponse, error)
	ToggleLike(ctx context.Context, userID, resourceID string) (*dto.LikeResponse, error)
	Delete(ctx context.Context, userID, resourceID string) error
	Skills(ctx context.Context) (*dto.SkillListResponse, error)
}

type resourceServiceImpl struct {
	resourceRepo repositories.ResourceStore
	userRepo     repositories.UserStore
	authzService *auth.AuthorizationService
	publisher    Publisher
	logger       zerolog.Logger
}

// NewResourceService creates a new ResourceService
func NewResourceService(
	resourceRepo repositories.ResourceStore,
	userRepo repositories.UserStore,
	authzService *auth.AuthorizationService,
	publisher Publisher,
	logger zerolog.Logger,
) ResourceService {
	return &resourceServiceImpl{
		resourceRepo: resourceRepo,
		userRepo:     userRepo,
		authzService: authzService,
		publisher:    publisherOrNop(publisher),
		logger:       logger,
	}
}

// Create shares a new resource
func (s *resourceServiceImpl) Create(ctx context.Context, userID string, req *dto.CreateResourceRequest) (*dto.ResourceResponse, error) {
	title := strings.TrimSpace(req.Title)
	skill := strings.TrimSpace(req.Skill)
	switch {
	case title == "":
		return nil, apperrors.NewValidationError("title", "Title is required")
	case !validation.NewStringValidation(title).WithMaxLength(validation.TitleMaxLength).Validate():
		return nil, apperrors.NewValidationError("title",
			fmt.Sprintf("Title must be at most %d characters", validation.TitleMaxLength))
	case !validation.IsHTTPURL(req.URL):
		return nil, apperrors.NewValidationError("url", "URL must be an absolute http or https URL")
	case skill == "":
		return nil, apperrors.NewValidationError("skill", "Skill is required")
	case strings.EqualFold(skill, repositories.AllSkills):
		return nil, apperrors.NewValidationError("skill", "Choose a specific skill")
	case !validation.NewStringValidation(skill).WithMaxLength(validation.SkillMaxLength).Validate():
		return nil, apperrors.NewValidationError("skill",
			fmt.Sprintf("Skill must be at most %d characters", validation.SkillMaxLength))
	}

	name, photo, err := authorOf(ctx, s.userRepo, userID)
	if err != nil {
		return nil, err
	}

	res := &models.Resource{
		AuthorID:    userID,
		AuthorName:  name,
		AuthorPhoto: photo,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		URL:         strings.TrimSpace(req.URL),
		Skill:       skill,
	}
	if err := s.resourceRepo.Create(ctx, res); err != nil {
		return nil, fmt.Errorf("error creating resource: %w", err)
	}
	s.publisher.Publish(ResourcesTopic)

	resp := dto.FromResource(res, userID)
	return &resp, nil
}

// List returns resources newest first, optionally for one skill
func (s *resourceServiceImpl) List(ctx context.Context, userID string, filter *dto.ResourceFilterRequest) (*dto.ResourceListResponse, error) {
	skill := ""
	if filter != nil {
		skill = filter.Skill
	}
	items, err := s.resourceRepo.List(ctx, skill)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ResourceResponse, 0, len(items))
	for _, r := range items {
		out = append(out, dto.FromResource(r, userID))
	}
	return &dto.ResourceListResponse{Resources: out}, nil
}

// ToggleLike likes or unlikes a resource
func (s *resourceServiceImpl) ToggleLike(ctx context.Context, userID, resourceID string) (*dto.LikeResponse, error) {
	liked, err := s.resourceRepo.ToggleLike(ctx, resourceID, userID)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(ResourcesTopic)
	return &dto.LikeResponse{Liked: liked}, nil
}

// Delete removes a resource. Only its author may do this.
func (s *resourceServiceImpl) Delete(ctx context.Context, userID, resourceID string) error {
	if _, err := s.authzService.ResourceForAuthor(ctx, resourceID, userID); err != nil {
		return err
	}
	if err := s.resourceRepo.Delete(ctx, resourceID); err != nil {
		return err
	}
	s.logger.Info().Str("resourceID", resourceID).Str("userID", userID).Msg("Resource deleted")
	s.publisher.Publish(ResourcesTopic)
	return nil
}

// Skills lists the distinct skill tags of shared resources
func (s *resourceServiceImpl) Skills(ctx context.Context) (*dto.SkillListResponse, error) {
	skills, err := s.resourceRepo.Skills(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.SkillListResponse{Skills: skills}, nil
}
