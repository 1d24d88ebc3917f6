package app

import (
	"context"
	"errors"
	"fmt"

	"taskplanner/internal/domain"
)

// NotificationService encapsulates notification use cases.
type NotificationService struct {
	repo domain.NotificationRepository
}

// NewNotificationService creates a NotificationService backed by the given
// repository.
func NewNotificationService(repo domain.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns a page of the user's notifications plus the unpaged total,
// optionally filtered by read state.
func (s *NotificationService) List(ctx context.Context, userID int64, read *bool, offset, limit int) ([]domain.Notification, int, error) {
	return s.repo.ListNotifications(ctx, userID, read, offset, limit)
}

// Create validates and stores a new notification.
func (s *NotificationService) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	if n.Title == "" || n.Message == "" {
		return nil, errors.New("title and message are required")
	}
	if n.Type == "" {
		n.Type = domain.NotificationInfo
	}
	if !domain.ValidNotificationType(n.Type) {
		return nil, fmt.Errorf("unknown notification type %q", n.Type)
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// MarkRead flags one notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id int64) (*domain.Notification, error) {
	n, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotFound
	}
	return n, nil
}

// MarkAllRead flags every unread notification of the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// Delete removes one notification owned by the user.
func (s *NotificationService) Delete(ctx context.Context, userID, id int64) error {
	deleted, err := s.repo.DeleteNotification(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
