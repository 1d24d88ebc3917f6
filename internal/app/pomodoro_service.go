package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskplanner/internal/domain"
)

// ErrSessionEnded indicates an attempt to end a pomodoro session twice.
var ErrSessionEnded = errors.New("session already ended")

// PomodoroService encapsulates pomodoro-timer use cases.
type PomodoroService struct {
	repo domain.PomodoroRepository
}

// NewPomodoroService creates a PomodoroService backed by the given repository.
func NewPomodoroService(repo domain.PomodoroRepository) *PomodoroService {
	return &PomodoroService{repo: repo}
}

// Start records the beginning of a work or break interval.
func (s *PomodoroService) Start(ctx context.Context, userID int64, taskID *int64, duration int, typ domain.PomodoroType) (*domain.PomodoroSession, error) {
	if duration <= 0 {
		return nil, errors.New("duration must be positive")
	}
	if typ == "" {
		typ = domain.PomodoroWork
	}
	if !domain.ValidPomodoroType(typ) {
		return nil, fmt.Errorf("unknown session type %q", typ)
	}

	p := &domain.PomodoroSession{
		UserID:    userID,
		TaskID:    taskID,
		StartTime: time.Now().UTC(),
		Duration:  duration,
		Type:      typ,
	}
	if err := s.repo.CreatePomodoro(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// End completes a running session. Ending twice is an error.
func (s *PomodoroService) End(ctx context.Context, userID, id int64) (*domain.PomodoroSession, error) {
	p, err := s.repo.GetPomodoro(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}
	if p.EndTime != nil {
		return nil, ErrSessionEnded
	}
	return s.repo.EndPomodoro(ctx, userID, id, time.Now().UTC())
}

// ListSessions returns a page of the user's sessions, optionally limited to
// one calendar day.
func (s *PomodoroService) ListSessions(ctx context.Context, userID int64, day *time.Time, offset, limit int) ([]domain.PomodoroSession, error) {
	return s.repo.ListPomodoros(ctx, userID, day, offset, limit)
}

// Stats aggregates the user's sessions over the trailing period, one of
// "week", "month", or "year" (anything else falls back to a week).
func (s *PomodoroService) Stats(ctx context.Context, userID int64, period string) (*domain.PomodoroStats, error) {
	now := time.Now().UTC()
	var since time.Time
	switch period {
	case "month":
		since = now.AddDate(0, 0, -30)
	case "year":
		since = now.AddDate(0, 0, -365)
	default:
		since = now.AddDate(0, 0, -7)
	}

	sessions, err := s.repo.ListPomodorosSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	stats := &domain.PomodoroStats{TotalSessions: len(sessions)}
	for _, p := range sessions {
		if p.Completed {
			stats.CompletedSessions++
		}
		switch p.Type {
		case domain.PomodoroWork:
			stats.TotalWorkTime += p.Duration
		case domain.PomodoroBreak:
			stats.TotalBreakTime += p.Duration
		}
	}
	stats.IncompleteSessions = stats.TotalSessions - stats.CompletedSessions
	if stats.TotalSessions > 0 {
		stats.AverageSessionLength = float64(stats.TotalWorkTime+stats.TotalBreakTime) / float64(stats.TotalSessions)
	}
	return stats, nil
}
