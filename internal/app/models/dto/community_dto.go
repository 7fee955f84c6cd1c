package dto

import (
	"sort"
	"time"

	"github.com/yigit/skillswap/internal/app/models"
)

// CreatePostRequest represents a new community post
type CreatePostRequest struct {
	Content  string `json:"content" binding:"required,max=5000" example:"Anyone up for a Go study group?"`
	Category string `json:"category" binding:"max=100" example:"Programming"`
}

// PostFilterRequest filters the post list
type PostFilterRequest struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Sort     string `form:"sort" binding:"omitempty,oneof=newest oldest mostLiked mostCommented"`
}

// AddCommentRequest represents a new comment
type AddCommentRequest struct {
	Text string `json:"text" binding:"required,max=1000" example:"Count me in"`
}

// CommentResponse is one comment of a post
type CommentResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	UserPhoto string    `json:"userPhoto"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostResponse is a post as seen by one user
type PostResponse struct {
	ID           string            `json:"id"`
	AuthorID     string            `json:"authorId"`
	AuthorName   string            `json:"authorName"`
	AuthorPhoto  string            `json:"authorPhoto"`
	Content      string            `json:"content"`
	Category     string            `json:"category,omitempty"`
	LikeCount    int               `json:"likeCount"`
	LikedByMe    bool              `json:"likedByMe"`
	CommentCount int               `json:"commentCount"`
	Comments     []CommentResponse `json:"comments"`
	IsAuthor     bool              `json:"isAuthor"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// PostListResponse is a page of posts
type PostListResponse struct {
	Posts      []PostResponse `json:"posts"`
	Pagination PaginationInfo `json:"pagination"`
}

// LikeResponse reports the like state after a toggle
type LikeResponse struct {
	Liked bool `json:"liked"`
}

// CategoryListResponse lists post categories
type CategoryListResponse struct {
	Categories []string `json:"categories"`
}

// FromPost converts a post for viewerID. Comments are listed newest first.
func FromPost(p *models.Post, viewerID string) PostResponse {
	comments := make([]CommentResponse, 0, len(p.Comments))
	for _, c := range p.Comments {
		comments = append(comments, CommentResponse{
			ID:        c.ID,
			UserID:    c.UserID,
			UserName:  c.UserName,
			UserPhoto: c.UserPhoto,
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}
	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})

	return PostResponse{
		ID:           p.ID,
		AuthorID:     p.AuthorID,
		AuthorName:   p.AuthorName,
		AuthorPhoto:  p.AuthorPhoto,
		Content:      p.Content,
		Category:     p.Category,
		LikeCount:    len(p.Likes),
		LikedByMe:    p.LikedBy(viewerID),
		CommentCount: len(p.Comments),
		Comments:     comments,
		IsAuthor:     p.AuthorID == viewerID,
		CreatedAt:    p.CreatedAt,
	}
}
