package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/obraguard/obraguard/internal/models"
)

type sqliteNotificationRepo struct {
	db *sql.DB
}

const notificationColumns = `id, alert_id, user_id, tenant_id, channel, status,
	title, body, payload_json, attempts, max_attempts, sent_at, read_at, created_at`

func (r *sqliteNotificationRepo) CreateBatch(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin notification batch: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, n := range notifications {
		if err := n.Validate(); err != nil {
			return fmt.Errorf("invalid notification for alert %s: %w", n.AlertID, err)
		}
		if n.ID == "" {
			n.ID = uuid.New().String()
		}
		if n.CreatedAt.IsZero() {
			n.CreatedAt = time.Now()
		}
		payloadJSON, err := json.Marshal(n.Payload)
		if err != nil {
			return fmt.Errorf("marshal notification payload: %w", err)
		}
		_, err = tx.ExecContext(ctx, query,
			n.ID, n.AlertID, n.UserID, nullString(n.TenantID), n.Channel, n.Status,
			n.Title, n.Body, string(payloadJSON), n.Attempts, n.MaxAttempts,
			n.SentAt, n.ReadAt, n.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert notification: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit notification batch: %w", err)
	}
	return nil
}

func (r *sqliteNotificationRepo) GetByID(ctx context.Context, id string) (*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = ?`
	n, err := scanNotificationFrom(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (r *sqliteNotificationRepo) ListByAlert(ctx context.Context, alertID string) ([]*models.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE alert_id = ? ORDER BY created_at, id`
	return r.queryNotifications(ctx, query, alertID)
}

func (r *sqliteNotificationRepo) ListPending(ctx context.Context, alertID string) ([]*models.Notification, error) {
	// ERROR notifications stay deliverable until their attempts run out;
	// at the bound they are permanently excluded.
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE status IN (?, ?) AND attempts < max_attempts`
	args := []any{models.NotificationPending, models.NotificationError}
	if alertID != "" {
		query += " AND alert_id = ?"
		args = append(args, alertID)
	}
	query += " ORDER BY created_at, id"
	return r.queryNotifications(ctx, query, args...)
}

func (r *sqliteNotificationRepo) MarkSent(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET status = ?, sent_at = ?
			WHERE id = ? AND status IN (?, ?)`,
		models.NotificationSent, time.Now(), id,
		models.NotificationPending, models.NotificationError,
	)
	if err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConflict
	}
	return nil
}

func (r *sqliteNotificationRepo) MarkFailed(ctx context.Context, id, errText string) error {
	// Attempts are incremented in the statement itself so concurrent
	// dispatch passes cannot lose updates. The error text lands in the
	// payload's last_error field.
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET
			status = ?,
			attempts = attempts + 1,
			payload_json = json_set(payload_json, '$.last_error', ?)
		WHERE id = ? AND attempts < max_attempts AND status IN (?, ?)`,
		models.NotificationError, errText, id,
		models.NotificationPending, models.NotificationError,
	)
	if err != nil {
		return fmt.Errorf("mark notification failed: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrConflict
	}
	return nil
}

func (r *sqliteNotificationRepo) MarkRead(ctx context.Context, alertID, userID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET status = ?, read_at = ?
			WHERE alert_id = ? AND user_id = ? AND channel = ? AND status = ?`,
		models.NotificationRead, time.Now(),
		alertID, userID, models.ChannelDashboard, models.NotificationSent,
	)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return result.RowsAffected()
}

func (r *sqliteNotificationRepo) queryNotifications(ctx context.Context, query string, args ...any) ([]*models.Notification, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n, err := scanNotificationFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func scanNotificationFrom(s scanner) (*models.Notification, error) {
	var n models.Notification
	var tenant sql.NullString
	var payloadJSON string
	var sentAt, readAt sql.NullTime

	err := s.Scan(
		&n.ID, &n.AlertID, &n.UserID, &tenant, &n.Channel, &n.Status,
		&n.Title, &n.Body, &payloadJSON, &n.Attempts, &n.MaxAttempts,
		&sentAt, &readAt, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.TenantID = tenant.String
	if sentAt.Valid {
		t := sentAt.Time
		n.SentAt = &t
	}
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	if err := json.Unmarshal([]byte(payloadJSON), &n.Payload); err != nil {
		return nil, fmt.Errorf("unmarshal notification payload: %w", err)
	}
	return &n, nil
}
