package dto

import "github.com/yigit/skillswap/internal/app/models"

// NotificationFilterRequest filters the notification list
type NotificationFilterRequest struct {
	UnreadOnly bool `form:"unread"`
	Limit      int  `form:"limit" binding:"omitempty,min=1,max=100"`
}

// NotificationListResponse lists notifications with the unread count
type NotificationListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	UnreadCount   int64                  `json:"unreadCount"`
}

// UnreadCountResponse reports unread notifications
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

// MarkAllReadResponse reports how many notifications changed
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
