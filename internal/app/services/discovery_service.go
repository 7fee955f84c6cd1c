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
)

// ErrorMessageSingleSkillFilter is returned when both skill filters are set.
const ErrorMessageSingleSkillFilter = "Please filter by either 'I can teach' or 'I want to learn' at a time"

// DiscoveryService finds other users to exchange skills with
type DiscoveryService interface {
	Browse(ctx context.Context, viewerID string, filter *dto.UserFilterRequest) (*dto.UserListResponse, error)
	Recommend(ctx context.Context, viewerID string) (*dto.MatchListResponse, error)
}

type discoveryServiceImpl struct {
	userRepo repositories.UserStore
	logger   zerolog.Logger
}

// NewDiscoveryService creates a new DiscoveryService
func NewDiscoveryService(userRepo repositories.UserStore, logger zerolog.Logger) DiscoveryService {
	return &discoveryServiceImpl{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Browse lists every other user, optionally filtered by one skill list and location
func (s *discoveryServiceImpl) Browse(ctx context.Context, viewerID string, filter *dto.UserFilterRequest) (*dto.UserListResponse, error) {
	f := repositories.UserFilter{
		ExcludeID: viewerID,
		Teach:     strings.TrimSpace(filter.Teach),
		Learn:     strings.TrimSpace(filter.Learn),
		Location:  strings.TrimSpace(filter.Location),
	}
	if f.Teach != "" && f.Learn != "" {
		return nil, apperrors.NewValidationError("teach", ErrorMessageSingleSkillFilter)
	}

	users, err := s.userRepo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	out := make([]dto.ProfileResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.FromUser(u))
	}
	return &dto.UserListResponse{Users: out, Count: len(out)}, nil
}

// Recommend ranks the users that are mutual matches for the viewer
func (s *discoveryServiceImpl) Recommend(ctx context.Context, viewerID string) (*dto.MatchListResponse, error) {
	viewer, err := s.userRepo.FindByID(ctx, viewerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return &dto.MatchListResponse{Matches: []dto.MatchResponse{}}, nil
		}
		return nil, fmt.Errorf("error loading profile: %w", err)
	}

	current := viewer.Skills()
	if len(current.Teach) == 0 || len(current.Learn) == 0 {
		return &dto.MatchListResponse{Matches: []dto.MatchResponse{}}, nil
	}

	users, err := s.userRepo.List(ctx, repositories.UserFilter{ExcludeID: viewerID})
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	byID := make(map[string]*models.User, len(users))
	candidates := make([]domain.Candidate, 0, len(users))
	for _, u := range users {
		byID[u.ID] = u
		candidates = append(candidates, domain.Candidate{UserID: u.ID, Skills: u.Skills()})
	}

	matches := domain.RankMatches(current, candidates)
	s.logger.Debug().Str("userID", viewerID).
		Int("candidates", len(candidates)).
		Int("matches", len(matches)).
		Msg("Ranked skill matches")

	resp := dto.FromMatches(matches, byID)
	return &resp, nil
}
