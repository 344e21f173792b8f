package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/intern-portal-api/internal/models"
)

const notificationColumns = `id, recipient_id, recipient_role, sender_id, message, section, entity_id, link, is_read, created_at`

// NotificationRepository persists inbox entries.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new instance of NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create persists a single notification. Each call is independent so a
// failure for one recipient leaves the others untouched.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	prepareNotification(n)
	const query = `INSERT INTO notifications (` + notificationColumns + `) VALUES (:id, :recipient_id, :recipient_role, :sender_id, :message, :section, :entity_id, :link, :is_read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListForRecipient returns a page of a recipient's notifications, newest first.
func (r *NotificationRepository) ListForRecipient(ctx context.Context, recipientID string, role models.NotificationRole, page models.PageRequest) ([]models.Notification, int, error) {
	const listQuery = `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = $1 AND recipient_role = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4`
	var rows []models.Notification
	if err := r.db.SelectContext(ctx, &rows, listQuery, recipientID, role, page.Limit, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND recipient_role = $2`, recipientID, role); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}
	return rows, total, nil
}

// CountUnread returns the number of unread notifications.
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string, role models.NotificationRole) (int, error) {
	var total int
	const query = `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND recipient_role = $2 AND is_read = FALSE`
	if err := r.db.GetContext(ctx, &total, query, recipientID, role); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return total, nil
}

// MarkRead flags one notification as read. Notifications owned by someone
// else are reported as sql.ErrNoRows.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, recipientID string, role models.NotificationRole) error {
	const query = `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2 AND recipient_role = $3`
	res, err := r.db.ExecContext(ctx, query, id, recipientID, role)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark notification read rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkAllRead flags every unread notification of the recipient as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string, role models.NotificationRole) (int64, error) {
	const query = `UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND recipient_role = $2 AND is_read = FALSE`
	res, err := r.db.ExecContext(ctx, query, recipientID, role)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read rows: %w", err)
	}
	return affected, nil
}

// insertNotificationBatch writes one notification per recipient in a single
// statement on tx, copying everything but the recipient from tmpl.
func insertNotificationBatch(ctx context.Context, tx *sqlx.Tx, tmpl models.Notification, recipientIDs []string) error {
	if len(recipientIDs) == 0 {
		return nil
	}
	ids := make([]string, len(recipientIDs))
	for i := range ids {
		ids[i] = uuid.NewString()
	}
	if tmpl.CreatedAt.IsZero() {
		tmpl.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (` + notificationColumns + `)
SELECT u.id, u.recipient_id, $3::text, $4::uuid, $5::text, $6::text, $7::uuid, $8::text, FALSE, $9::timestamptz FROM unnest($1::uuid[], $2::uuid[]) AS u(id, recipient_id)`
	res, err := tx.ExecContext(ctx, query, pq.Array(ids), pq.Array(recipientIDs), tmpl.RecipientRole, tmpl.SenderID, tmpl.Message, tmpl.Section, tmpl.EntityID, tmpl.Link, tmpl.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert notifications rows: %w", err)
	}
	if int(affected) != len(recipientIDs) {
		return fmt.Errorf("insert notifications: wrote %d of %d", affected, len(recipientIDs))
	}
	return nil
}

func prepareNotification(n *models.Notification) {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
}
