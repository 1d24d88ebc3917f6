package domain

import (
	"context"
	"time"
)

// PomodoroType distinguishes work intervals from breaks.
type PomodoroType string

const (
	PomodoroWork  PomodoroType = "work"
	PomodoroBreak PomodoroType = "break"
)

// ValidPomodoroType reports whether t is a known session type.
func ValidPomodoroType(t PomodoroType) bool {
	return t == PomodoroWork || t == PomodoroBreak
}

// PomodoroSession is one timed focus or break interval.
type PomodoroSession struct {
	ID        int64        `json:"id"`
	UserID    int64        `json:"user_id"`
	TaskID    *int64       `json:"task_id,omitempty"`
	StartTime time.Time    `json:"start_time"`
	EndTime   *time.Time   `json:"end_time,omitempty"`
	Duration  int          `json:"duration"` // minutes
	Type      PomodoroType `json:"type"`
	Completed bool         `json:"completed"`
	CreatedAt time.Time    `json:"created_at"`
}

// PomodoroStats aggregates sessions over a period.
type PomodoroStats struct {
	TotalSessions        int     `json:"total_sessions"`
	TotalWorkTime        int     `json:"total_work_time"`  // minutes
	TotalBreakTime       int     `json:"total_break_time"` // minutes
	AverageSessionLength float64 `json:"average_session_length"`
	CompletedSessions    int     `json:"completed_sessions"`
	IncompleteSessions   int     `json:"incomplete_sessions"`
}

// PomodoroRepository is the port for pomodoro persistence.
type PomodoroRepository interface {
	CreatePomodoro(ctx context.Context, p *PomodoroSession) error
	GetPomodoro(ctx context.Context, userID, id int64) (*PomodoroSession, error)
	EndPomodoro(ctx context.Context, userID, id int64, endedAt time.Time) (*PomodoroSession, error)
	ListPomodoros(ctx context.Context, userID int64, day *time.Time, offset, limit int) ([]PomodoroSession, error)
	ListPomodorosSince(ctx context.Context, userID int64, since time.Time) ([]PomodoroSession, error)
}
