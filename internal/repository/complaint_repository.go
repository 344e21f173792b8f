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

const (
	complaintSelect    = `SELECT c.id, c.intern_id, i.first_name || ' ' || i.last_name AS intern_name, c.category, c.subject, c.body, c.status, c.response, c.reviewed_by, c.reviewed_at, c.submitted_at FROM complaints c JOIN interns i ON i.id = c.intern_id`
	complaintReturning = `id, intern_id, category, subject, body, status, response, reviewed_by, reviewed_at, submitted_at`
)

// ComplaintRepository persists complaints and suggestions.
type ComplaintRepository struct {
	db *sqlx.DB
}

// NewComplaintRepository creates a new instance of ComplaintRepository.
func NewComplaintRepository(db *sqlx.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// Create inserts a pending complaint inside a transaction.
func (r *ComplaintRepository) Create(ctx context.Context, c *models.Complaint) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.SubmittedAt.IsZero() {
		c.SubmittedAt = time.Now().UTC()
	}
	c.Status = models.ComplaintPending

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO complaints (id, intern_id, category, subject, body, status, submitted_at) VALUES (:id, :intern_id, :category, :subject, :body, :status, :submitted_at)`
		if _, err := tx.NamedExecContext(ctx, query, c); err != nil {
			return mapWriteError("create complaint", err)
		}
		return nil
	})
}

// FindByID returns a complaint.
func (r *ComplaintRepository) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	var c models.Complaint
	if err := r.db.GetContext(ctx, &c, complaintSelect+` WHERE c.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find complaint: %w", err)
	}
	return &c, nil
}

// List returns a page of complaints, newest first.
func (r *ComplaintRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Complaint, int, error) {
	var conds conditions
	if filter.InternID != nil {
		conds.add("c.intern_id = ?", *filter.InternID)
	}
	if filter.Status != "" {
		conds.add("c.status = ?", filter.Status)
	}
	window, args := conds.window(filter.Page.Limit, filter.Page.Offset())

	var rows []models.Complaint
	if err := r.db.SelectContext(ctx, &rows, complaintSelect+conds.where()+` ORDER BY c.submitted_at DESC`+window, args...); err != nil {
		return nil, 0, fmt.Errorf("list complaints: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM complaints c`+conds.where(), conds.args...); err != nil {
		return nil, 0, fmt.Errorf("count complaints: %w", err)
	}
	return rows, total, nil
}

// Review resolves or dismisses a pending complaint.
func (r *ComplaintRepository) Review(ctx context.Context, id string, status models.ComplaintStatus, response *string, adminID string, at time.Time) (*models.Complaint, error) {
	var c models.Complaint
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		current, err := lockStatus(ctx, tx, "complaints", id)
		if err != nil {
			return err
		}
		if models.ComplaintStatus(current) != models.ComplaintPending {
			return ErrAlreadyProcessed
		}
		query := `UPDATE complaints SET status = $2, response = $3, reviewed_by = $4, reviewed_at = $5 WHERE id = $1 RETURNING ` + complaintReturning
		if err := tx.GetContext(ctx, &c, query, id, string(status), response, adminID, at); err != nil {
			return fmt.Errorf("review complaint: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}
