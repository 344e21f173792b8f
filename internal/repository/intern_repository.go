package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intern-portal-api/internal/models"
	"github.com/noah-isme/intern-portal-api/pkg/database"
)

const internColumns = `id, email, matric_number, password_hash, first_name, last_name, phone_number, institution, department, is_approved, approval_status, approved_by, approved_at, rejection_reason, (profile_picture IS NOT NULL) AS has_profile_picture, created_at`

// InternRepository provides database access for interns and their
// approval state.
type InternRepository struct {
	db *sqlx.DB
}

// NewInternRepository creates a new instance of InternRepository.
func NewInternRepository(db *sqlx.DB) *InternRepository {
	return &InternRepository{db: db}
}

// FindByEmail returns an intern by email address.
func (r *InternRepository) FindByEmail(ctx context.Context, email string) (*models.Intern, error) {
	return r.findOne(ctx, "find intern by email", `LOWER(email) = LOWER($1)`, email)
}

// FindByID returns an intern by identifier.
func (r *InternRepository) FindByID(ctx context.Context, id string) (*models.Intern, error) {
	return r.findOne(ctx, "find intern by id", `id = $1`, id)
}

func (r *InternRepository) findOne(ctx context.Context, op, clause string, arg interface{}) (*models.Intern, error) {
	query := `SELECT ` + internColumns + ` FROM interns WHERE ` + clause + ` LIMIT 1`
	var intern models.Intern
	if err := r.db.GetContext(ctx, &intern, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &intern, nil
}

// List returns a page of interns without picture payloads.
func (r *InternRepository) List(ctx context.Context, filter models.InternFilter) ([]models.Intern, int, error) {
	var conds conditions
	if filter.Status != nil {
		conds.add("approval_status = ?", *filter.Status)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		conds.add("(LOWER(email) LIKE ? OR LOWER(first_name || ' ' || last_name) LIKE ? OR LOWER(matric_number) LIKE ?)", "%"+strings.ToLower(s)+"%")
	}

	window, args := conds.window(filter.Page.Limit, filter.Page.Offset())
	listQuery := `SELECT ` + internColumns + ` FROM interns` + conds.where() + ` ORDER BY created_at DESC` + window

	var interns []models.Intern
	if err := r.db.SelectContext(ctx, &interns, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list interns: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM interns`+conds.where(), conds.args...); err != nil {
		return nil, 0, fmt.Errorf("count interns: %w", err)
	}
	return interns, total, nil
}

// Create inserts a pending intern together with the optional profile picture.
func (r *InternRepository) Create(ctx context.Context, intern *models.Intern) error {
	if intern.ID == "" {
		intern.ID = uuid.NewString()
	}
	if intern.CreatedAt.IsZero() {
		intern.CreatedAt = time.Now().UTC()
	}
	intern.ApprovalStatus = models.ApprovalPending
	intern.IsApproved = false

	args := map[string]interface{}{
		"id":            intern.ID,
		"email":         intern.Email,
		"matric_number": intern.MatricNumber,
		"password_hash": intern.PasswordHash,
		"first_name":    intern.FirstName,
		"last_name":     intern.LastName,
		"phone_number":  intern.PhoneNumber,
		"institution":   intern.Institution,
		"department":    intern.Department,
		"picture":       nil,
		"picture_mime":  nil,
		"created_at":    intern.CreatedAt,
	}
	if intern.ProfilePicture.Present() {
		args["picture"] = intern.ProfilePicture.Data
		args["picture_mime"] = intern.ProfilePicture.MimeType
		intern.HasProfilePicture = true
	}

	const query = `INSERT INTO interns (id, email, matric_number, password_hash, first_name, last_name, phone_number, institution, department, is_approved, approval_status, profile_picture, profile_picture_mime, created_at)
VALUES (:id, :email, :matric_number, :password_hash, :first_name, :last_name, :phone_number, :institution, :department, FALSE, 'pending', :picture, :picture_mime, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, args); err != nil {
		return mapWriteError("create intern", err)
	}
	return nil
}

// ProfilePicture returns the stored picture blob.
func (r *InternRepository) ProfilePicture(ctx context.Context, id string) (*models.Attachment, error) {
	const query = `SELECT profile_picture AS data, profile_picture_mime AS mime_type, octet_length(profile_picture) AS size, 'profile-picture' AS filename FROM interns WHERE id = $1 AND profile_picture IS NOT NULL`
	var blob models.Attachment
	if err := r.db.GetContext(ctx, &blob, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("load profile picture: %w", err)
	}
	return &blob, nil
}

// Approve moves a pending intern to approved. The row is locked for the
// duration of the transaction; a non-pending row yields ErrAlreadyProcessed.
func (r *InternRepository) Approve(ctx context.Context, id, adminID string, at time.Time) (*models.Intern, error) {
	var intern models.Intern
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockPendingIntern(ctx, tx, id); err != nil {
			return err
		}
		query := `UPDATE interns SET is_approved = TRUE, approval_status = 'approved', approved_by = $2, approved_at = $3, rejection_reason = NULL WHERE id = $1 RETURNING ` + internColumns
		if err := tx.GetContext(ctx, &intern, query, id, adminID, at); err != nil {
			return fmt.Errorf("approve intern: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &intern, nil
}

// Reject moves a pending intern to rejected, or deletes the row when purge
// is set. The returned intern reflects the row before deletion.
func (r *InternRepository) Reject(ctx context.Context, id, adminID string, reason *string, at time.Time, purge bool) (*models.Intern, error) {
	var intern models.Intern
	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := lockPendingIntern(ctx, tx, id); err != nil {
			return err
		}
		if purge {
			query := `DELETE FROM interns WHERE id = $1 RETURNING ` + internColumns
			if err := tx.GetContext(ctx, &intern, query, id); err != nil {
				return fmt.Errorf("purge intern: %w", err)
			}
			return nil
		}
		query := `UPDATE interns SET is_approved = FALSE, approval_status = 'rejected', approved_by = $2, approved_at = $3, rejection_reason = $4 WHERE id = $1 RETURNING ` + internColumns
		if err := tx.GetContext(ctx, &intern, query, id, adminID, at, reason); err != nil {
			return fmt.Errorf("reject intern: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &intern, nil
}

func lockPendingIntern(ctx context.Context, tx *sqlx.Tx, id string) error {
	var status models.ApprovalStatus
	if err := tx.GetContext(ctx, &status, `SELECT approval_status FROM interns WHERE id = $1 FOR UPDATE`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("lock intern: %w", err)
	}
	if status != models.ApprovalPending {
		return ErrAlreadyProcessed
	}
	return nil
}

func approvedRecipients(ctx context.Context, q sqlx.QueryerContext) ([]models.Recipient, error) {
	var rows []models.Intern
	const query = `SELECT id, email, first_name, last_name FROM interns WHERE approval_status = 'approved' ORDER BY created_at`
	if err := sqlx.SelectContext(ctx, q, &rows, query); err != nil {
		return nil, fmt.Errorf("list approved interns: %w", err)
	}
	recipients := make([]models.Recipient, 0, len(rows))
	for _, row := range rows {
		recipients = append(recipients, models.InternRecipient(row))
	}
	return recipients, nil
}
