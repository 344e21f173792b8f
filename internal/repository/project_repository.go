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

const projectSelect = `SELECT p.id, p.intern_id, i.first_name || ' ' || i.last_name AS intern_name, p.title, p.description, p.filename, p.mime_type, p.size, p.status, p.submitted_at FROM project_uploads p JOIN interns i ON i.id = p.intern_id`

// ProjectRepository persists project uploads.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new instance of ProjectRepository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a project upload with its file inside a transaction.
func (r *ProjectRepository) Create(ctx context.Context, p *models.ProjectUpload) error {
	if !p.File.Present() {
		return fmt.Errorf("create project upload: file required")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.SubmittedAt.IsZero() {
		p.SubmittedAt = time.Now().UTC()
	}
	p.Status = models.ProjectStatusSubmitted
	p.Filename = p.File.Filename
	p.MimeType = p.File.MimeType
	p.Size = int64(len(p.File.Data))

	args := map[string]interface{}{
		"id":           p.ID,
		"intern_id":    p.InternID,
		"title":        p.Title,
		"description":  p.Description,
		"filename":     p.Filename,
		"mime_type":    p.MimeType,
		"size":         p.Size,
		"data":         p.File.Data,
		"status":       p.Status,
		"submitted_at": p.SubmittedAt,
	}
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO project_uploads (id, intern_id, title, description, filename, mime_type, size, data, status, submitted_at)
VALUES (:id, :intern_id, :title, :description, :filename, :mime_type, :size, :data, :status, :submitted_at)`
		if _, err := tx.NamedExecContext(ctx, query, args); err != nil {
			return mapWriteError("create project upload", err)
		}
		return nil
	})
}

// FindByID returns project metadata.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*models.ProjectUpload, error) {
	var p models.ProjectUpload
	if err := r.db.GetContext(ctx, &p, projectSelect+` WHERE p.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find project upload: %w", err)
	}
	return &p, nil
}

// List returns a page of uploads, newest first.
func (r *ProjectRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.ProjectUpload, int, error) {
	var conds conditions
	if filter.InternID != nil {
		conds.add("p.intern_id = ?", *filter.InternID)
	}
	window, args := conds.window(filter.Page.Limit, filter.Page.Offset())

	var rows []models.ProjectUpload
	if err := r.db.SelectContext(ctx, &rows, projectSelect+conds.where()+` ORDER BY p.submitted_at DESC`+window, args...); err != nil {
		return nil, 0, fmt.Errorf("list project uploads: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM project_uploads p`+conds.where(), conds.args...); err != nil {
		return nil, 0, fmt.Errorf("count project uploads: %w", err)
	}
	return rows, total, nil
}

// File returns the uploaded payload.
func (r *ProjectRepository) File(ctx context.Context, id string) (*models.Attachment, error) {
	const query = `SELECT data, mime_type, size, filename FROM project_uploads WHERE id = $1`
	var blob models.Attachment
	if err := r.db.GetContext(ctx, &blob, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("load project file: %w", err)
	}
	return &blob, nil
}

// Delete hard deletes an upload. A missing row yields sql.ErrNoRows.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM project_uploads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project upload: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project upload rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
