package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/skillswap/internal/app/models"
)

// UserFilter narrows a user listing.
type UserFilter struct {
	ExcludeID string
	Teach     string
	Learn     string
	Location  string
}

// PostSort orders community posts.
type PostSort string

const (
	PostSortNewest        PostSort = "newest"
	PostSortOldest        PostSort = "oldest"
	PostSortMostLiked     PostSort = "mostLiked"
	PostSortMostCommented PostSort = "mostCommented"
)

// PostFilter narrows a post listing. Limit 0 means no limit.
type PostFilter struct {
	Search   string
	Category string
	Sort     PostSort
	Offset   uint64
	Limit    int
}

// RefreshToken is a stored refresh token row.
type RefreshToken struct {
	Token      string
	UserID     string
	ExpiryDate time.Time
	IsRevoked  bool
}

// UserStore persists user profiles and credentials.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	List(ctx context.Context, filter UserFilter) ([]*models.User, error)
}

// TokenStore persists refresh tokens.
type TokenStore interface {
	CreateToken(ctx context.Context, token, userID string, expiryDate time.Time) error
	GetToken(ctx context.Context, token string) (*RefreshToken, error)
	RevokeToken(ctx context.Context, token string) error
	RevokeAllUserTokens(ctx context.Context, userID string) error
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// ExchangeStore persists exchange documents. Writes are last-write-wins.
type ExchangeStore interface {
	Create(ctx context.Context, ex *models.Exchange) error
	GetByID(ctx context.Context, id string) (*models.Exchange, error)
	ListByParticipant(ctx context.Context, userID string) ([]*models.Exchange, error)
	UpdateStatus(ctx context.Context, ex *models.Exchange) error
	UpdateSchedule(ctx context.Context, ex *models.Exchange) error
}

// MessageStore persists exchange threads.
type MessageStore interface {
	Append(ctx context.Context, msg *models.Message) error
	ListByExchange(ctx context.Context, exchangeID string) ([]*models.Message, error)
	Last(ctx context.Context, exchangeID string) (*models.Message, error)
	DeleteByExchange(ctx context.Context, exchangeID string) (int64, error)
}

// PostStore persists community posts with their likes and comments.
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]*models.Post, int64, error)
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
	AddComment(ctx context.Context, postID string, comment models.Comment) error
	RemoveComment(ctx context.Context, postID, commentID string) error
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)
}

// ResourceStore persists shared learning resources.
type ResourceStore interface {
	Create(ctx context.Context, res *models.Resource) error
	GetByID(ctx context.Context, id string) (*models.Resource, error)
	List(ctx context.Context, skill string) ([]*models.Resource, error)
	ToggleLike(ctx context.Context, resourceID, userID string) (bool, error)
	Delete(ctx context.Context, id string) error
	Skills(ctx context.Context) ([]string, error)
}

// NotificationStore persists in-app notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id string) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository         UserStore
	TokenRepository        TokenStore
	ExchangeRepository     ExchangeStore
	MessageRepository      MessageStore
	PostRepository         PostStore
	ResourceRepository     ResourceStore
	NotificationRepository NotificationStore
}

// NewRepositories initializes all repositories. A nil messages store selects
// the PostgreSQL thread storage.
func NewRepositories(db *pgxpool.Pool, messages MessageStore) *Repositories {
	if messages == nil {
		messages = NewMessageRepository(db)
	}
	return &Repositories{
		UserRepository:         NewUserRepository(db),
		TokenRepository:        NewTokenRepository(db),
		ExchangeRepository:     NewExchangeRepository(db),
		MessageRepository:      messages,
		PostRepository:         NewPostRepository(db),
		ResourceRepository:     NewResourceRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

func statementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}
