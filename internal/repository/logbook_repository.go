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
	logbookSelect = `SELECT l.id, l.intern_id, i.first_name || ' ' || i.last_name AS intern_name, l.week, l.iso_year, l.iso_week, l.activities, l.challenges, l.learnings, (l.attachment IS NOT NULL) AS has_attachment, l.attachment_name, l.status, l.grade, l.feedback, l.graded_by, l.graded_at, l.submitted_at FROM logbooks l JOIN interns i ON i.id = l.intern_id`
	logbookReturning = `id, intern_id, week, iso_year, iso_week, activities, challenges, learnings, (attachment IS NOT NULL) AS has_attachment, attachment_name, status, grade, feedback, graded_by, graded_at, submitted_at`
)

// LogbookRepository persists weekly logbook reports.
type LogbookRepository struct {
	db *sqlx.DB
}

// NewLogbookRepository creates a new instance of LogbookRepository.
func NewLogbookRepository(db *sqlx.DB) *LogbookRepository {
	return &LogbookRepository{db: db}
}

// Create inserts a logbook inside a transaction. A second report for the
// same intern and ISO week yields ErrDuplicate and inserts nothing.
func (r *LogbookRepository) Create(ctx context.Context, lb *models.Logbook) error {
	if lb.ID == "" {
		lb.ID = uuid.NewString()
	}
	if lb.SubmittedAt.IsZero() {
		lb.SubmittedAt = time.Now().UTC()
	}
	lb.Status = models.LogbookPending

	args := map[string]interface{}{
		"id":           lb.ID,
		"intern_id":    lb.InternID,
		"week":         lb.Week,
		"iso_year":     lb.ISOYear,
		"iso_week":     lb.ISOWeek,
		"activities":   lb.Activities,
		"challenges":   lb.Challenges,
		"learnings":    lb.Learnings,
		"submitted_at": lb.SubmittedAt,
	}
	attachmentArgs(args, lb.Attachment)

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var exists bool
		const dupQuery = `SELECT EXISTS (SELECT 1 FROM logbooks WHERE intern_id = $1 AND iso_year = $2 AND iso_week = $3)`
		if err := tx.GetContext(ctx, &exists, dupQuery, lb.InternID, lb.ISOYear, lb.ISOWeek); err != nil {
			return fmt.Errorf("check duplicate logbook: %w", err)
		}
		if exists {
			return &DuplicateError{Constraint: "logbooks_intern_week_key"}
		}

		const query = `INSERT INTO logbooks (id, intern_id, week, iso_year, iso_week, activities, challenges, learnings, attachment, attachment_mime, attachment_size, attachment_name, status, submitted_at)
VALUES (:id, :intern_id, :week, :iso_year, :iso_week, :activities, :challenges, :learnings, :attachment, :attachment_mime, :attachment_size, :attachment_name, 'pending', :submitted_at)`
		if _, err := tx.NamedExecContext(ctx, query, args); err != nil {
			return mapWriteError("create logbook", err)
		}
		lb.HasAttachment = lb.Attachment.Present()
		if lb.HasAttachment {
			lb.AttachmentName = &lb.Attachment.Filename
		}
		return nil
	})
}

// FindByID returns a logbook without its attachment payload.
func (r *LogbookRepository) FindByID(ctx context.Context, id string) (*models.Logbook, error) {
	var lb models.Logbook
	if err := r.db.GetContext(ctx, &lb, logbookSelect+` WHERE l.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find logbook: %w", err)
	}
	return &lb, nil
}

// List returns a page of logbooks, newest first.
func (r *LogbookRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Logbook, int, error) {
	var conds conditions
	if filter.InternID != nil {
		conds.add("l.intern_id = ?", *filter.InternID)
	}
	if filter.Status != "" {
		conds.add("l.status = ?", filter.Status)
	}
	window, args := conds.window(filter.Page.Limit, filter.Page.Offset())

	var rows []models.Logbook
	if err := r.db.SelectContext(ctx, &rows, logbookSelect+conds.where()+` ORDER BY l.submitted_at DESC`+window, args...); err != nil {
		return nil, 0, fmt.Errorf("list logbooks: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM logbooks l`+conds.where(), conds.args...); err != nil {
		return nil, 0, fmt.Errorf("count logbooks: %w", err)
	}
	return rows, total, nil
}

// ListByIntern returns every logbook of an intern in week order.
func (r *LogbookRepository) ListByIntern(ctx context.Context, internID string) ([]models.Logbook, error) {
	var rows []models.Logbook
	if err := r.db.SelectContext(ctx, &rows, logbookSelect+` WHERE l.intern_id = $1 ORDER BY l.iso_year, l.iso_week`, internID); err != nil {
		return nil, fmt.Errorf("list intern logbooks: %w", err)
	}
	return rows, nil
}

// Attachment returns the stored attachment.
func (r *LogbookRepository) Attachment(ctx context.Context, id string) (*models.Attachment, error) {
	return loadAttachment(ctx, r.db, "logbooks", id)
}

// Grade sets the grade of a pending logbook. Graded rows yield
// ErrAlreadyProcessed.
func (r *LogbookRepository) Grade(ctx context.Context, id, grade string, feedback *string, adminID string, at time.Time) (*models.Logbook, error) {
	var lb models.Logbook
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		status, err := lockStatus(ctx, tx, "logbooks", id)
		if err != nil {
			return err
		}
		if models.LogbookStatus(status) != models.LogbookPending {
			return ErrAlreadyProcessed
		}
		query := `UPDATE logbooks SET status = 'graded', grade = $2, feedback = $3, graded_by = $4, graded_at = $5 WHERE id = $1 RETURNING ` + logbookReturning
		if err := tx.GetContext(ctx, &lb, query, id, grade, feedback, adminID, at); err != nil {
			return fmt.Errorf("grade logbook: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &lb, nil
}
