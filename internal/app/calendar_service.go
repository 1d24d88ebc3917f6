package app

import (
	"context"
	"errors"
	"time"

	"taskplanner/internal/domain"
)

// CalendarService encapsulates calendar use cases.
type CalendarService struct {
	repo domain.CalendarRepository
}

// NewCalendarService creates a CalendarService backed by the given repository.
func NewCalendarService(repo domain.CalendarRepository) *CalendarService {
	return &CalendarService{repo: repo}
}

// EventsInRange returns the user's events fully contained in [start, end].
func (s *CalendarService) EventsInRange(ctx context.Context, userID int64, start, end time.Time) ([]domain.CalendarEvent, error) {
	if !end.After(start) {
		return nil, errors.New("end must be after start")
	}
	return s.repo.ListEventsInRange(ctx, userID, start, end)
}

// CreateEvent validates and stores a new event.
func (s *CalendarService) CreateEvent(ctx context.Context, e *domain.CalendarEvent) (*domain.CalendarEvent, error) {
	if e.Title == "" {
		return nil, errors.New("title is required")
	}
	if !e.EndAt.After(e.StartAt) {
		return nil, errors.New("end must be after start")
	}
	if err := s.repo.CreateEvent(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateEvent applies a partial update to one event owned by the user.
func (s *CalendarService) UpdateEvent(ctx context.Context, userID, id int64, u domain.CalendarEventUpdate) (*domain.CalendarEvent, error) {
	if u.Title != nil && *u.Title == "" {
		return nil, errors.New("title must not be empty")
	}
	event, err := s.repo.UpdateEvent(ctx, userID, id, u)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrNotFound
	}
	return event, nil
}

// DeleteEvent removes one event owned by the user.
func (s *CalendarService) DeleteEvent(ctx context.Context, userID, id int64) error {
	deleted, err := s.repo.DeleteEvent(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
