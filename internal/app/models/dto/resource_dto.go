package dto

import (
	"time"

	"github.com/yigit/skillswap/internal/app/models"
)

// CreateResourceRequest represents a new learning resource
type CreateResourceRequest struct {
	Title       string `json:"title" binding:"required,max=200" example:"Effective Go"`
	Description string `json:"description" binding:"max=2000"`
	URL         string `json:"url" binding:"required,url" example:"https://go.dev/doc/effective_go"`
	Skill       string `json:"skill" binding:"required,max=100" example:"Go"`
}

// ResourceFilterRequest filters resources by skill
type ResourceFilterRequest struct {
	Skill string `form:"skill"`
}

// ResourceResponse is a resource as seen by one user
type ResourceResponse struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"authorId"`
	AuthorName  string    `json:"authorName"`
	AuthorPhoto string    `json:"authorPhoto"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Skill       string    `json:"skill"`
	LikeCount   int       `json:"likeCount"`
	LikedByMe   bool      `json:"likedByMe"`
	IsAuthor    bool      `json:"isAuthor"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ResourceListResponse lists resources
type ResourceListResponse struct {
	Resources []ResourceResponse `json:"resources"`
}

// SkillListResponse lists resource skill tags
type SkillListResponse struct {
	Skills []string `json:"skills"`
}

// FromResource converts a resource for viewerID
func FromResource(r *models.Resource, viewerID string) ResourceResponse {
	return ResourceResponse{
		ID:          r.ID,
		AuthorID:    r.AuthorID,
		AuthorName:  r.AuthorName,
		AuthorPhoto: r.AuthorPhoto,
		Title:       r.Title,
		Description: r.Description,
		URL:         r.URL,
		Skill:       r.Skill,
		LikeCount:   len(r.Likes),
		LikedByMe:   r.LikedBy(viewerID),
		IsAuthor:    r.AuthorID == viewerID,
		CreatedAt:   r.CreatedAt,
	}
}
