package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskplanner/internal/domain"
)

var _ domain.PomodoroRepository = (*DB)(nil)

const pomodoroColumns = "id, user_id, task_id, start_time, end_time, duration, type, completed, created_at"

func scanPomodoro(row interface{ Scan(...any) error }) (*domain.PomodoroSession, error) {
	var p domain.PomodoroSession
	err := row.Scan(&p.ID, &p.UserID, &p.TaskID, &p.StartTime, &p.EndTime,
		&p.Duration, &p.Type, &p.Completed, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePomodoro inserts a new pomodoro session and fills in its generated
// fields.
func (d *DB) CreatePomodoro(ctx context.Context, p *domain.PomodoroSession) error {
	p.CreatedAt = time.Now().UTC()
	return d.sql.QueryRowContext(ctx,
		`INSERT INTO pomodoro_sessions (user_id, task_id, start_time, duration, type, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		p.UserID, p.TaskID, p.StartTime, p.Duration, p.Type, p.CreatedAt,
	).Scan(&p.ID)
}

// GetPomodoro retrieves one session owned by the user, or nil when absent.
func (d *DB) GetPomodoro(ctx context.Context, userID, id int64) (*domain.PomodoroSession, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT "+pomodoroColumns+" FROM pomodoro_sessions WHERE id = $1 AND user_id = $2", id, userID)
	p, err := scanPomodoro(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// EndPomodoro stamps end_time and marks the session completed.
func (d *DB) EndPomodoro(ctx context.Context, userID, id int64, endedAt time.Time) (*domain.PomodoroSession, error) {
	row := d.sql.QueryRowContext(ctx,
		`UPDATE pomodoro_sessions SET end_time = $3, completed = TRUE
		 WHERE id = $1 AND user_id = $2 RETURNING `+pomodoroColumns,
		id, userID, endedAt)
	p, err := scanPomodoro(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPomodoros returns a page of the user's sessions, optionally limited to
// the calendar day containing *day.
func (d *DB) ListPomodoros(ctx context.Context, userID int64, day *time.Time, offset, limit int) ([]domain.PomodoroSession, error) {
	query := "SELECT " + pomodoroColumns + " FROM pomodoro_sessions WHERE user_id = $1"
	args := []any{userID}
	if day != nil {
		start := day.UTC().Truncate(24 * time.Hour)
		args = append(args, start, start.Add(24*time.Hour))
		query += " AND start_time >= $2 AND start_time < $3"
	}
	args = append(args, limit, offset)
	rows, err := d.sql.QueryContext(ctx,
		fmt.Sprintf("%s ORDER BY start_time DESC LIMIT $%d OFFSET $%d", query, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPomodoros(rows, limit)
}

// ListPomodorosSince returns every session of the user starting at or after
// since.
func (d *DB) ListPomodorosSince(ctx context.Context, userID int64, since time.Time) ([]domain.PomodoroSession, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+pomodoroColumns+" FROM pomodoro_sessions WHERE user_id = $1 AND start_time >= $2 ORDER BY start_time DESC",
		userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPomodoros(rows, 0)
}

func collectPomodoros(rows *sql.Rows, capHint int) ([]domain.PomodoroSession, error) {
	out := make([]domain.PomodoroSession, 0, capHint)
	for rows.Next() {
		p, err := scanPomodoro(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
