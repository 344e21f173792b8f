package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intern-portal-api/internal/models"
)

// attachmentArgs flattens an optional attachment into named insert args.
func attachmentArgs(args map[string]interface{}, a *models.Attachment) {
	args["attachment"] = nil
	args["attachment_mime"] = nil
	args["attachment_size"] = nil
	args["attachment_name"] = nil
	if a.Present() {
		args["attachment"] = a.Data
		args["attachment_mime"] = a.MimeType
		args["attachment_size"] = int64(len(a.Data))
		args["attachment_name"] = a.Filename
	}
}

// loadAttachment reads the blob columns of a submission table.
func loadAttachment(ctx context.Context, db *sqlx.DB, table, id string) (*models.Attachment, error) {
	query := fmt.Sprintf(`SELECT attachment AS data, attachment_mime AS mime_type, attachment_size AS size, attachment_name AS filename FROM %s WHERE id = $1 AND attachment IS NOT NULL`, table)
	var blob models.Attachment
	if err := db.GetContext(ctx, &blob, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("load %s attachment: %w", table, err)
	}
	return &blob, nil
}

// lockStatus locks the row and returns its current status.
func lockStatus(ctx context.Context, tx *sqlx.Tx, table, id string) (string, error) {
	var status string
	query := fmt.Sprintf(`SELECT status FROM %s WHERE id = $1 FOR UPDATE`, table)
	if err := tx.GetContext(ctx, &status, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
		return "", fmt.Errorf("lock %s: %w", table, err)
	}
	return status, nil
}
