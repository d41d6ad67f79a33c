package repository

import (
	"context"
	"database/sql"

	"github.com/cypher-music/cypher-backend/internal/model"
)

// NotificationRepo encapsulates all database queries for notifications.
// Rows are written by the queue consumer, or directly by handlers when
// the broker is unreachable.
type NotificationRepo struct {
	db *sql.DB
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create inserts a notification row.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	const q = `INSERT INTO notifications (recipient_id, sender_id, notification_type, message, track_id)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, n.RecipientID, n.SenderID, n.Type, n.Message, n.TrackID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListByRecipient returns all notifications addressed to a user, newest
// first, read or not.
func (r *NotificationRepo) ListByRecipient(ctx context.Context, recipientID uint64) ([]*model.Notification, error) {
	const q = `SELECT notification_id, recipient_id, sender_id, notification_type, message, track_id, is_read, created_at
	           FROM notifications
	           WHERE recipient_id = ?
	           ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Notification{}
	for rows.Next() {
		n := new(model.Notification)
		if err := rows.Scan(&n.ID, &n.RecipientID, &n.SenderID, &n.Type, &n.Message,
			&n.TrackID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkRead flags a notification as read. The recipient id is part of the
// predicate so users cannot touch notifications addressed to others;
// sql.ErrNoRows covers both an unknown id and a foreign recipient.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, recipientID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE notification_id = ? AND recipient_id = ? AND is_read = FALSE",
		id, recipientID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish an already-read notification from a missing one.
		var exists int
		err := r.db.QueryRowContext(ctx,
			"SELECT 1 FROM notifications WHERE notification_id = ? AND recipient_id = ?",
			id, recipientID).Scan(&exists)
		if err != nil {
			return err
		}
	}
	return nil
}
