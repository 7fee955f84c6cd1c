package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yigit/skillswap/internal/app/models"
	"github.com/yigit/skillswap/internal/app/repositories"
	"github.com/yigit/skillswap/internal/domain"
	"github.com/yigit/skillswap/internal/pkg/apperrors"
)

// Services defined in this package:
// - AuthService: registration, login and refresh token rotation
// - ProfileService: the caller's own profile and public profiles
// - DiscoveryService: browsing users and ranking mutual skill matches
// - ExchangeService: exchange requests, responses and scheduling
// - ThreadService: the message thread of an exchange
// - CommunityService: posts, likes and comments
// - ResourceService: shared learning resources
// - NotificationService: in-app notifications

// Publisher announces that the state behind some live-query topics changed.
type Publisher interface {
	Publish(topics ...string)
}

// Notifier creates notifications for other services.
type Notifier interface {
	Notify(ctx context.Context, n *models.Notification) error
}

// Clock returns the current time.
type Clock func() time.Time

// Live-query topics
const (
	PostsTopic     = "community/posts"
	ResourcesTopic = "resources"
)

// ExchangeMessagesTopic carries the thread of one exchange.
func ExchangeMessagesTopic(exchangeID string) string {
	return "exchange/" + exchangeID + "/messages"
}

// UserExchangesTopic carries the exchanges and chat list of one user.
func UserExchangesTopic(userID string) string {
	return "user/" + userID + "/exchanges"
}

// UserNotificationsTopic carries the notifications of one user.
func UserNotificationsTopic(userID string) string {
	return "user/" + userID + "/notifications"
}

type nopPublisher struct{}

func (nopPublisher) Publish(...string) {}

func publisherOrNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}

func clockOrNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// authorOf returns the display name and photo stamped on content written by
// userID. A missing profile is shown as an unknown author.
func authorOf(ctx context.Context, users repositories.UserStore, userID string) (name, photo string, err error) {
	u, err := users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return domain.UnknownSender, "", nil
		}
		return "", "", fmt.Errorf("error loading author: %w", err)
	}
	return u.DisplayName, u.PhotoURL, nil
}
