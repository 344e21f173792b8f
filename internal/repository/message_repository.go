package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intern-portal-api/internal/models"
	"github.com/noah-isme/intern-portal-api/pkg/database"
)

const messageSelect = `SELECT m.id, m.title, m.body, (m.file IS NOT NULL) AS has_file, m.file_name, m.created_by, a.first_name || ' ' || a.last_name AS author_name, m.created_at FROM messages m JOIN admins a ON a.id = m.created_by`

// MessageRepository persists broadcast messages.
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository creates a new instance of MessageRepository.
func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Broadcast stores msg and one notification per approved intern in a single
// transaction. Either the message and every notification are committed or
// nothing is. The recipients notified are returned for email delivery.
func (r *MessageRepository) Broadcast(ctx context.Context, msg *models.Message, tmpl models.Notification) ([]models.Recipient, error) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	args := map[string]interface{}{
		"id":         msg.ID,
		"title":      msg.Title,
		"body":       msg.Body,
		"file":       nil,
		"file_mime":  nil,
		"file_name":  nil,
		"created_by": msg.CreatedBy,
		"created_at": msg.CreatedAt,
	}
	if msg.File.Present() {
		args["file"] = msg.File.Data
		args["file_mime"] = msg.File.MimeType
		args["file_name"] = msg.File.Filename
		msg.HasFile = true
		msg.FileName = &msg.File.Filename
	}

	var recipients []models.Recipient
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const insert = `INSERT INTO messages (id, title, body, file, file_mime, file_name, created_by, created_at) VALUES (:id, :title, :body, :file, :file_mime, :file_name, :created_by, :created_at)`
		if _, err := tx.NamedExecContext(ctx, insert, args); err != nil {
			return fmt.Errorf("create message: %w", err)
		}

		var err error
		recipients, err = approvedRecipients(ctx, tx)
		if err != nil {
			return err
		}
		ids := make([]string, len(recipients))
		for i, rcpt := range recipients {
			ids[i] = rcpt.ID
		}

		tmpl.RecipientRole = models.NotifyUser
		tmpl.Section = models.SectionMessages
		tmpl.EntityID = &msg.ID
		tmpl.SenderID = &msg.CreatedBy
		tmpl.CreatedAt = msg.CreatedAt
		if tmpl.Link == "" {
			tmpl.Link = models.DashboardLink(models.NotifyUser, models.SectionMessages, msg.ID)
		}
		return insertNotificationBatch(ctx, tx, tmpl, ids)
	})
	if err != nil {
		return nil, err
	}
	return recipients, nil
}

// List returns a page of messages, newest first.
func (r *MessageRepository) List(ctx context.Context, page models.PageRequest) ([]models.Message, int, error) {
	var rows []models.Message
	if err := r.db.SelectContext(ctx, &rows, messageSelect+` ORDER BY m.created_at DESC LIMIT $1 OFFSET $2`, page.Limit, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM messages`); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}
	return rows, total, nil
}

// File returns the attached file of a message.
func (r *MessageRepository) File(ctx context.Context, id string) (*models.Attachment, error) {
	const query = `SELECT file AS data, file_mime AS mime_type, octet_length(file) AS size, file_name AS filename FROM messages WHERE id = $1 AND file IS NOT NULL`
	var blob models.Attachment
	if err := r.db.GetContext(ctx, &blob, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("load message file: %w", err)
	}
	return &blob, nil
}
