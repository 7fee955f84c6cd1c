package models

import "time"

// Post represents a community post based on the 'community_posts' table
type Post struct {
	ID          string    `json:"id" db:"id"`
	AuthorID    string    `json:"authorId" db:"author_id"`
	AuthorName  string    `json:"authorName" db:"author_name"`
	AuthorPhoto string    `json:"authorPhoto" db:"author_photo"`
	Content     string    `json:"content" db:"content"`
	Category    string    `json:"category,omitempty" db:"category"`
	Likes       []string  `json:"likes" db:"likes"`
	Comments    []Comment `json:"comments" db:"comments"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// Comment is embedded in a post and stored as JSON.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	UserPhoto string    `json:"userPhoto"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// LikedBy reports whether userID has liked the post.
func (p *Post) LikedBy(userID string) bool {
	return containsID(p.Likes, userID)
}

// FindComment returns the comment with the given id.
func (p *Post) FindComment(id string) (*Comment, bool) {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return &p.Comments[i], true
		}
	}
	return nil, false
}

// Resource is a shared learning resource based on the 'resources' table
type Resource struct {
	ID          string    `json:"id" db:"id"`
	AuthorID    string    `json:"authorId" db:"author_id"`
	AuthorName  string    `json:"authorName" db:"author_name"`
	AuthorPhoto string    `json:"authorPhoto" db:"author_photo"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	URL         string    `json:"url" db:"url"`
	Skill       string    `json:"skill" db:"skill"`
	Likes       []string  `json:"likes" db:"likes"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// LikedBy reports whether userID has liked the resource.
func (r *Resource) LikedBy(userID string) bool {
	return containsID(r.Likes, userID)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
