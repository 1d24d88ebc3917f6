package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskplanner/internal/domain"
)

var _ domain.TaskRepository = (*DB)(nil)

const taskColumns = "id, user_id, title, description, priority, status, due_date, estimated_duration, actual_duration, ai_generated, tags, created_at, updated_at"

func scanTask(row interface{ Scan(...any) error }) (*domain.Task, error) {
	var t domain.Task
	var tags sql.NullString
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority, &t.Status,
		&t.DueDate, &t.EstimatedDuration, &t.ActualDuration, &t.AIGenerated, &tags,
		&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &t.Tags); err != nil {
			return nil, fmt.Errorf("decode tags: %w", err)
		}
	}
	return &t, nil
}

func encodeTags(tags []string) (*string, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}

// CreateTask inserts a new task and fills in its generated fields.
func (d *DB) CreateTask(ctx context.Context, t *domain.Task) error {
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return err
	}
	t.CreatedAt = time.Now().UTC()
	return d.sql.QueryRowContext(ctx,
		`INSERT INTO tasks (user_id, title, description, priority, status, due_date, estimated_duration, ai_generated, tags, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`,
		t.UserID, t.Title, t.Description, t.Priority, t.Status, t.DueDate,
		t.EstimatedDuration, t.AIGenerated, tags, t.CreatedAt,
	).Scan(&t.ID)
}

// GetTask retrieves one task owned by the user, or nil when it does not
// exist or belongs to someone else.
func (d *DB) GetTask(ctx context.Context, userID, id int64) (*domain.Task, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1 AND user_id = $2", id, userID)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTasks returns a page of the user's tasks plus the unpaged total.
func (d *DB) ListTasks(ctx context.Context, userID int64, f domain.TaskFilter, offset, limit int) ([]domain.Task, int, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}
	if f.Status != nil {
		args = append(args, *f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Priority != nil {
		args = append(args, *f.Priority)
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := d.sql.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tasks WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := d.sql.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM tasks WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
			taskColumns, cond, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.Task, 0, limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *t)
	}
	return out, total, rows.Err()
}

// UpdateTask applies a partial update and returns the updated row, or nil
// when the task does not exist or belongs to someone else.
func (d *DB) UpdateTask(ctx context.Context, userID, id int64, u domain.TaskUpdate) (*domain.Task, error) {
	t, err := updateTaskIn(ctx, d.sql, userID, id, u)
	if err != nil {
		return nil, err
	}
	return t, nil
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func updateTaskIn(ctx context.Context, q execQuerier, userID, id int64, u domain.TaskUpdate) (*domain.Task, error) {
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
	if u.Priority != nil {
		add("priority", *u.Priority)
	}
	if u.Status != nil {
		add("status", *u.Status)
	}
	if u.DueDate != nil {
		add("due_date", *u.DueDate)
	}
	if u.EstimatedDuration != nil {
		add("estimated_duration", *u.EstimatedDuration)
	}
	if u.ActualDuration != nil {
		add("actual_duration", *u.ActualDuration)
	}
	if u.Tags != nil {
		tags, err := encodeTags(*u.Tags)
		if err != nil {
			return nil, err
		}
		add("tags", tags)
	}

	row := q.QueryRowContext(ctx,
		fmt.Sprintf("UPDATE tasks SET %s WHERE id = $1 AND user_id = $2 RETURNING %s",
			strings.Join(set, ", "), taskColumns),
		args...)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTask removes one task owned by the user and reports whether a row
// was deleted.
func (d *DB) DeleteTask(ctx context.Context, userID, id int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx,
		"DELETE FROM tasks WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// BulkUpdateTasks applies every entry in one transaction. Ownership of every
// target is verified before the first mutation; any miss rolls the whole
// batch back.
func (d *DB) BulkUpdateTasks(ctx context.Context, userID int64, entries []domain.TaskBulkEntry) ([]domain.Task, error) {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, e := range entries {
		var locked int64
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM tasks WHERE id = $1 AND user_id = $2 FOR UPDATE",
			e.ID, userID).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task %d: %w", e.ID, domain.ErrTaskNotFound)
		}
		if err != nil {
			return nil, err
		}
	}

	out := make([]domain.Task, 0, len(entries))
	for _, e := range entries {
		t, err := updateTaskIn(ctx, tx, userID, e.ID, e.Updates)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, fmt.Errorf("task %d: %w", e.ID, domain.ErrTaskNotFound)
		}
		out = append(out, *t)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}
