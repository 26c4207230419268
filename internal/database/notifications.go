package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nomadx/internal/models"
)

const notificationColumns = `id, target_kind, target_id, title, description, link, is_read, created_at`

type notificationRow struct {
	ID          string    `db:"id"`
	TargetKind  string    `db:"target_kind"`
	TargetID    string    `db:"target_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Link        string    `db:"link"`
	Read        bool      `db:"is_read"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *notificationRow) toModel() (*models.Notification, error) {
	target, err := models.TargetFor(models.TargetKind(r.TargetKind), r.TargetID)
	if err != nil {
		return nil, fmt.Errorf("notification %s: %w", r.ID, err)
	}
	return &models.Notification{
		ID:          r.ID,
		Target:      target,
		Title:       r.Title,
		Description: r.Description,
		Link:        r.Link,
		Read:        r.Read,
		CreatedAt:   r.CreatedAt.UTC(),
	}, nil
}

func (db *DB) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.Target == nil {
		return fmt.Errorf("failed to create notification: missing target")
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	ts := now()
	query := db.Rebind(`INSERT INTO notifications (` + notificationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := db.ExecContext(ctx, query,
		n.ID, string(n.Target.Kind()), n.Target.TargetID(), n.Title, n.Description, n.Link, n.Read, ts,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	n.CreatedAt = ts
	return nil
}

func (db *DB) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	var row notificationRow
	err := db.GetContext(ctx, &row, db.Rebind(`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return row.toModel()
}

// ListNotifications returns the target's notifications, newest first.
func (db *DB) ListNotifications(ctx context.Context, target models.NotificationTarget) ([]*models.Notification, error) {
	query := db.Rebind(`SELECT ` + notificationColumns + ` FROM notifications
		WHERE target_kind = ? AND target_id = ?
		ORDER BY created_at DESC, id ASC`)

	var rows []notificationRow
	if err := db.SelectContext(ctx, &rows, query, string(target.Kind()), target.TargetID()); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := make([]*models.Notification, 0, len(rows))
	for i := range rows {
		n, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (db *DB) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := db.ExecContext(ctx, db.Rebind(`UPDATE notifications SET is_read = ? WHERE id = ?`), true, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return checkAffected(res, "notifications")
}

// MarkAllNotificationsRead flags every unread notification of the target and returns how many changed.
func (db *DB) MarkAllNotificationsRead(ctx context.Context, target models.NotificationTarget) (int64, error) {
	query := db.Rebind(`UPDATE notifications SET is_read = ? WHERE target_kind = ? AND target_id = ? AND is_read = ?`)
	res, err := db.ExecContext(ctx, query, true, string(target.Kind()), target.TargetID(), false)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows for notifications: %w", err)
	}
	return n, nil
}
