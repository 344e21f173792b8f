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
	leaveSelect    = `SELECT r.id, r.intern_id, i.first_name || ' ' || i.last_name AS intern_name, r.leave_type, r.reason, r.start_date, r.end_date, (r.attachment IS NOT NULL) AS has_attachment, r.attachment_name, r.status, r.review_note, r.reviewed_by, r.reviewed_at, r.submitted_at FROM leave_requests r JOIN interns i ON i.id = r.intern_id`
	leaveReturning = `id, intern_id, leave_type, reason, start_date, end_date, (attachment IS NOT NULL) AS has_attachment, attachment_name, status, review_note, reviewed_by, reviewed_at, submitted_at`
)

// LeaveRepository persists leave requests.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository creates a new instance of LeaveRepository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// Create inserts a pending leave request inside a transaction.
func (r *LeaveRepository) Create(ctx context.Context, req *models.LeaveRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.SubmittedAt.IsZero() {
		req.SubmittedAt = time.Now().UTC()
	}
	req.Status = models.LeavePending

	args := map[string]interface{}{
		"id":           req.ID,
		"intern_id":    req.InternID,
		"leave_type":   req.LeaveType,
		"reason":       req.Reason,
		"start_date":   req.StartDate,
		"end_date":     req.EndDate,
		"status":       string(models.LeavePending),
		"submitted_at": req.SubmittedAt,
	}
	attachmentArgs(args, req.Attachment)

	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO leave_requests (id, intern_id, leave_type, reason, start_date, end_date, attachment, attachment_mime, attachment_size, attachment_name, status, submitted_at)
VALUES (:id, :intern_id, :leave_type, :reason, :start_date, :end_date, :attachment, :attachment_mime, :attachment_size, :attachment_name, :status, :submitted_at)`
		if _, err := tx.NamedExecContext(ctx, query, args); err != nil {
			return mapWriteError("create leave request", err)
		}
		req.HasAttachment = req.Attachment.Present()
		if req.HasAttachment {
			req.AttachmentName = &req.Attachment.Filename
		}
		return nil
	})
}

// FindByID returns a leave request without its attachment payload.
func (r *LeaveRepository) FindByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	var req models.LeaveRequest
	if err := r.db.GetContext(ctx, &req, leaveSelect+` WHERE r.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find leave request: %w", err)
	}
	return &req, nil
}

// List returns a page of leave requests, newest first.
func (r *LeaveRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.LeaveRequest, int, error) {
	var conds conditions
	if filter.InternID != nil {
		conds.add("r.intern_id = ?", *filter.InternID)
	}
	if filter.Status != "" {
		conds.add("r.status = ?", filter.Status)
	}
	window, args := conds.window(filter.Page.Limit, filter.Page.Offset())

	var rows []models.LeaveRequest
	if err := r.db.SelectContext(ctx, &rows, leaveSelect+conds.where()+` ORDER BY r.submitted_at DESC`+window, args...); err != nil {
		return nil, 0, fmt.Errorf("list leave requests: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM leave_requests r`+conds.where(), conds.args...); err != nil {
		return nil, 0, fmt.Errorf("count leave requests: %w", err)
	}
	return rows, total, nil
}

// Attachment returns the stored supporting document.
func (r *LeaveRepository) Attachment(ctx context.Context, id string) (*models.Attachment, error) {
	return loadAttachment(ctx, r.db, "leave_requests", id)
}

// Review approves or rejects a pending leave request.
func (r *LeaveRepository) Review(ctx context.Context, id string, status models.LeaveStatus, note *string, adminID string, at time.Time) (*models.LeaveRequest, error) {
	var req models.LeaveRequest
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		current, err := lockStatus(ctx, tx, "leave_requests", id)
		if err != nil {
			return err
		}
		if models.LeaveStatus(current) != models.LeavePending {
			return ErrAlreadyProcessed
		}
		query := `UPDATE leave_requests SET status = $2, review_note = $3, reviewed_by = $4, reviewed_at = $5 WHERE id = $1 RETURNING ` + leaveReturning
		if err := tx.GetContext(ctx, &req, query, id, string(status), note, adminID, at); err != nil {
			return fmt.Errorf("review leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}
