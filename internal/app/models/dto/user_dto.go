package dto

import (
	"time"

	"github.com/yigit/skillswap/internal/app/models"
	"github.com/yigit/skillswap/internal/domain"
)

// UpdateProfileRequest replaces the editable profile fields
type UpdateProfileRequest struct {
	DisplayName   string   `json:"displayName" binding:"required,min=2,max=100" example:"Ada"`
	Bio           string   `json:"bio" binding:"max=500" example:"Backend developer learning piano"`
	PhotoURL      string   `json:"photoURL" example:"https://example.com/ada.png"`
	Location      string   `json:"location" binding:"max=255" example:"Berlin"`
	SkillsToTeach []string `json:"skillsToTeach" binding:"max=50,dive,max=100"`
	SkillsToLearn []string `json:"skillsToLearn" binding:"max=50,dive,max=100"`
}

// UserFilterRequest represents the browse filters
type UserFilterRequest struct {
	Teach    string `form:"teach"`
	Learn    string `form:"learn"`
	Location string `form:"location"`
}

// ProfileResponse is a user profile. Email is only set for the owner.
type ProfileResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email,omitempty"`
	DisplayName   string    `json:"displayName"`
	Bio           string    `json:"bio"`
	PhotoURL      string    `json:"photoURL"`
	Location      string    `json:"location"`
	SkillsToTeach []string  `json:"skillsToTeach"`
	SkillsToLearn []string  `json:"skillsToLearn"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UserListResponse is a browse result
type UserListResponse struct {
	Users []ProfileResponse `json:"users"`
	Count int               `json:"count"`
}

// MatchResponse is one ranked mutual match
type MatchResponse struct {
	User  ProfileResponse `json:"user"`
	Score int             `json:"score" example:"25"`
}

// MatchListResponse lists ranked matches
type MatchListResponse struct {
	Matches []MatchResponse `json:"matches"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// FromUser converts a user to its public profile
func FromUser(u *models.User) ProfileResponse {
	return ProfileResponse{
		ID:            u.ID,
		DisplayName:   u.DisplayName,
		Bio:           u.Bio,
		PhotoURL:      u.PhotoURL,
		Location:      u.Location,
		SkillsToTeach: nonNil(u.SkillsToTeach),
		SkillsToLearn: nonNil(u.SkillsToLearn),
		CreatedAt:     u.CreatedAt,
	}
}

// FromOwnUser converts a user to the profile its owner sees
func FromOwnUser(u *models.User) ProfileResponse {
	p := FromUser(u)
	p.Email = u.Email
	return p
}

// FromMatches pairs ranked matches with their profiles
func FromMatches(matches []domain.Match, users map[string]*models.User) MatchListResponse {
	out := make([]MatchResponse, 0, len(matches))
	for _, m := range matches {
		u, ok := users[m.UserID]
		if !ok {
			continue
		}
		out = append(out, MatchResponse{User: FromUser(u), Score: m.Score})
	}
	return MatchListResponse{Matches: out}
}
