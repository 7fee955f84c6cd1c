package models

import (
	"time"

	"github.com/yigit/skillswap/internal/domain"
)

// User defines the user model based on the 'users' table. It doubles as the
// public profile.
type User struct {
	ID            string    `json:"id" db:"id" example:"5b0c6a1e-0f52-4b59-9a57-1c0a2c4c9b0e"`
	Email         string    `json:"email" db:"email" example:"ada@example.com"`
	Password      string    `json:"-" db:"password"`
	DisplayName   string    `json:"displayName" db:"display_name" example:"Ada"`
	Bio           string    `json:"bio" db:"bio"`
	PhotoURL      string    `json:"photoURL" db:"photo_url"`
	Location      string    `json:"location" db:"location" example:"Berlin"`
	SkillsToTeach []string  `json:"skillsToTeach" db:"skills_to_teach"`
	SkillsToLearn []string  `json:"skillsToLearn" db:"skills_to_learn"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// Skills returns the matcher view of the profile.
func (u *User) Skills() domain.SkillSet {
	return domain.SkillSet{
		Teach:    u.SkillsToTeach,
		Learn:    u.SkillsToLearn,
		Location: u.Location,
	}
}

// DefaultProfile returns the profile used when none has been stored yet.
func DefaultProfile(id, email, displayName string) *User {
	now := time.Now()
	return &User{
		ID:            id,
		Email:         email,
		DisplayName:   displayName,
		SkillsToTeach: []string{},
		SkillsToLearn: []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
