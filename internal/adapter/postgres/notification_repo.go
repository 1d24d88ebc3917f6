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

var _ domain.NotificationRepository = (*DB)(nil)

const notificationColumns = "id, user_id, task_id, title, message, type, read, created_at"

func scanNotification(row interface{ Scan(...any) error }) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.TaskID, &n.Title, &n.Message, &n.Type, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// CreateNotification inserts a new notification and fills in its generated
// fields.
func (d *DB) CreateNotification(ctx context.Context, n *domain.Notification) error {
	n.CreatedAt = time.Now().UTC()
	return d.sql.QueryRowContext(ctx,
		`INSERT INTO notifications (user_id, task_id, title, message, type, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		n.UserID, n.TaskID, n.Title, n.Message, n.Type, n.CreatedAt,
	).Scan(&n.ID)
}

// ListNotifications returns a page of the user's notifications plus the
// unpaged total, optionally filtered by read state.
func (d *DB) ListNotifications(ctx context.Context, userID int64, read *bool, offset, limit int) ([]domain.Notification, int, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}
	if read != nil {
		args = append(args, *read)
		where = append(where, fmt.Sprintf("read = $%d", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := d.sql.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := d.sql.QueryContext(ctx,
		fmt.Sprintf("SELECT %s FROM notifications WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
			notificationColumns, cond, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]domain.Notification, 0, limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *n)
	}
	return out, total, rows.Err()
}

// MarkRead flags one notification as read and returns the updated row, or
// nil when it does not exist or belongs to someone else.
func (d *DB) MarkRead(ctx context.Context, userID, id int64) (*domain.Notification, error) {
	row := d.sql.QueryRowContext(ctx,
		"UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2 RETURNING "+notificationColumns,
		id, userID)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// MarkAllRead flags every unread notification of the user and returns the
// count affected.
func (d *DB) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res, err := d.sql.ExecContext(ctx,
		"UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE", userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteNotification removes one notification owned by the user and reports
// whether a row was deleted.
func (d *DB) DeleteNotification(ctx context.Context, userID, id int64) (bool, error) {
	res, err := d.sql.ExecContext(ctx,
		"DELETE FROM notifications WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
