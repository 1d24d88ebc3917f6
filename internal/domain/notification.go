package domain

import (
	"context"
	"time"
)

// NotificationType is the severity class of a notification.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// ValidNotificationType reports whether t is a known notification type.
func ValidNotificationType(t NotificationType) bool {
	switch t {
	case NotificationInfo, NotificationSuccess, NotificationWarning, NotificationError:
		return true
	}
	return false
}

// Notification is a message delivered to a user, optionally about a task.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	TaskID    *int64           `json:"task_id,omitempty"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// NotificationRepository is the port for notification persistence.
type NotificationRepository interface {
	CreateNotification(ctx context.Context, n *Notification) error
	ListNotifications(ctx context.Context, userID int64, read *bool, offset, limit int) ([]Notification, int, error)
	MarkRead(ctx context.Context, userID, id int64) (*Notification, error)
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	DeleteNotification(ctx context.Context, userID, id int64) (bool, error)
}
