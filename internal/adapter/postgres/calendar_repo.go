package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskplanner/internal/domain"
)

var _ domain.CalendarRepository = (*DB)(nil)

const eventColumns = "id, user_id, task_id, title, description, start_at, end_at, all_day, google_calendar_id, created_at, updated_at"

func scanEvent(row interface{ Scan(...any) error }) (*domain.CalendarEvent, error) {
	var e domain.CalendarEvent
	err := row.Scan(&e.ID, &e.UserID, &e.TaskID, &e.Title, &e.Description,
		&e.StartAt, &e.EndAt, &e.AllDay, &e.GoogleCalendarID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEvent inserts a new calendar event and fills in its generated
// fields.
func (d *DB) CreateEvent(ctx context.Context, e *domain.CalendarEvent) error {
	e.CreatedAt = time.Now().UTC()
	return d.sql.QueryRowContext(ctx,
		`INSERT INTO calendar_events (user_id, task_id, title, description, start_at, end_at, all_day, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		e.UserID, e.TaskID, e.Title, e.Description, e.StartAt, e.EndAt, e.AllDay, e.CreatedAt,
	).Scan(&e.ID)
}

// ListEventsInRange returns the user's events fully contained in
// [start, end], ordered by start time.
func (d *DB) ListEventsInRange(ctx context.Context, userID int64, start, end time.Time) ([]domain.CalendarEvent, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+eventColumns+" FROM calendar_events WHERE user_id = $1 AND start_at >= $2 AND end_at <= $3 ORDER BY start_at",
		userID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CalendarEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// UpdateEvent applies a partial update and returns the updated row, or nil
// when the event does not exist or belongs to someone else.
func (d *DB) UpdateEvent(ctx context.Context, userID, id int64, u domain.CalendarEventUpdate) (*domain.CalendarEvent, error) {
	set := []string{"updated_at = $3"}
	args := []any{id, userID, time.Now().UTC()}

	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.StartAt != nil {
		add("start_at", *u.StartAt)
	}
	if u.EndAt != nil {
		add("end_at", *u.EndAt)
	}
	if u.AllDay != nil {
		add("all_day", *u.AllDay)
	}
	if u.TaskID != nil {
		add("task_id", *u.TaskID)
	}

	row := d.sql.QueryRowContext(ctx,
		fmt.Sprintf("UPDATE calendar_events SET %s WHERE id = $1 AND user_id = $2 RETURNING %s",
			strings.Join(set, ", "), eventColumns),
		args...)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteEvent removes one event owned by the user and reports whether a row
// was deleted.
func (d *DB) DeleteEvent(ctx context.Context, userID, id int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx,
		"DELETE FROM calendar_events WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
