package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/app/models"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/app/repositories"
	"github.com/yigit/skillswap/internal/domain"
	"github.com/yigit/skillswap/internal/pkg/apperrors"
	"github.com/yigit/skillswap/internal/pkg/validation"
)

// ProfileService defines the interface for profile operations
type ProfileService interface {
	GetMe(ctx context.Context, userID, email string) (*dto.ProfileResponse, error)
	Get(ctx context.Context, id string) (*dto.ProfileResponse, error)
	Update(ctx context.Context, userID, email string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
}

// profileServiceImpl implements ProfileService
type profileServiceImpl struct {
	userRepo repositories.UserStore
	logger   zerolog.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo repositories.UserStore, logger zerolog.Logger) ProfileService {
	return &profileServiceImpl{
		userRepo: userRepo,
		logger:   logger,
	}
}

// loadOrCreate returns the stored profile of userID. A missing profile is
// replaced by the defaults, which are stored when possible.
func (s *profileServiceImpl) loadOrCreate(ctx context.Context, userID, email string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, fmt.Errorf("error finding profile: %w", err)
	}

	name := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		name = email[:at]
	}
	user = models.DefaultProfile(userID, email, name)
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Warn().Err(err).Str("userID", userID).Msg("Could not store default profile, returning defaults")
	}
	return user, nil
}

// GetMe returns the caller's own profile
func (s *profileServiceImpl) GetMe(ctx context.Context, userID, email string) (*dto.ProfileResponse, error) {
	user, err := s.loadOrCreate(ctx, userID, email)
	if err != nil {
		return nil, err
	}
	resp := dto.FromOwnUser(user)
	return &resp, nil
}

// Get returns the public profile of any user
func (s *profileServiceImpl) Get(ctx context.Context, id string) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewCustomError(apperrors.ErrUserNotFound, "User not found")
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}
	resp := dto.FromUser(user)
	return &resp, nil
}

func validateProfile(req *dto.UpdateProfileRequest) error {
	if !validation.IsValidDisplayName(req.DisplayName) {
		return apperrors.NewValidationError("displayName",
			fmt.Sprintf("Display name must be between %d and %d characters", validation.NameMinLength, validation.NameMaxLength))
	}
	if !validation.NewStringValidation(req.Bio).WithRequired(false).WithMaxLength(validation.BioMaxLength).Validate() {
		return apperrors.NewValidationError("bio", fmt.Sprintf("Bio must be at most %d characters", validation.BioMaxLength))
	}
	if !validation.IsOptionalHTTPURL(req.PhotoURL) {
		return apperrors.NewValidationError("photoURL", "Photo URL must be an absolute http or https URL")
	}
	for _, list := range [][]string{req.SkillsToTeach, req.SkillsToLearn} {
		for _, skill := range list {
			if !validation.NewStringValidation(skill).WithRequired(false).WithMaxLength(validation.SkillMaxLength).Validate() {
				return apperrors.NewValidationError("skills",
					fmt.Sprintf("Skills must be at most %d characters", validation.SkillMaxLength))
			}
		}
	}
	return nil
}

// Update replaces the editable fields of the caller's profile
func (s *profileServiceImpl) Update(ctx context.Context, userID, email string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := validateProfile(req); err != nil {
		return nil, err
	}

	user, err := s.loadOrCreate(ctx, userID, email)
	if err != nil {
		return nil, err
	}

	user.DisplayName = req.DisplayName
	user.Bio = strings.TrimSpace(req.Bio)
	user.PhotoURL = strings.TrimSpace(req.PhotoURL)
	user.Location = strings.TrimSpace(req.Location)
	user.SkillsToTeach = domain.NormalizeSkills(req.SkillsToTeach)
	user.SkillsToLearn = domain.NormalizeSkills(req.SkillsToLearn)

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("error updating profile: %w", err)
	}

	s.logger.Debug().Str("userID", userID).
		Int("teach", len(user.SkillsToTeach)).
		Int("learn", len(user.SkillsToLearn)).
		Msg("Profile updated")

	resp := dto.FromOwnUser(user)
	return &resp, nil
}
