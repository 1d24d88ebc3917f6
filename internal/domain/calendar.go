package domain

import (
	"context"
	"time"
)

// CalendarEvent is a scheduled block on a user's calendar, optionally
// linked to a task.
type CalendarEvent struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	TaskID           *int64     `json:"task_id,omitempty"`
	Title            string     `json:"title"`
	Description      *string    `json:"description,omitempty"`
	StartAt          time.Time  `json:"start"`
	EndAt            time.Time  `json:"end"`
	AllDay           bool       `json:"all_day"`
	GoogleCalendarID *string    `json:"google_calendar_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// CalendarEventUpdate is a partial update; nil fields are left unchanged.
type CalendarEventUpdate struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	StartAt     *time.Time `json:"start,omitempty"`
	EndAt       *time.Time `json:"end,omitempty"`
	AllDay      *bool      `json:"all_day,omitempty"`
	TaskID      *int64     `json:"task_id,omitempty"`
}

// CalendarRepository is the port for calendar persistence.
type CalendarRepository interface {
	CreateEvent(ctx context.Context, e *CalendarEvent) error
	ListEventsInRange(ctx context.Context, userID int64, start, end time.Time) ([]CalendarEvent, error)
	UpdateEvent(ctx context.Context, userID, id int64, u CalendarEventUpdate) (*CalendarEvent, error)
	DeleteEvent(ctx context.Context, userID, id int64) (bool, error)
}
