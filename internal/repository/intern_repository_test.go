package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-portal-api/internal/models"
)

func TestInternRepositoryApprove(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewInternRepository(db)
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT approval_status FROM interns WHERE id = $1 FOR UPDATE")).
		WithArgs("intern-1").
		WillReturnRows(sqlmock.NewRows([]string{"approval_status"}).AddRow("pending"))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE interns SET is_approved = TRUE, approval_status = 'approved'")).
		WithArgs("intern-1", "admin-1", at).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name", "is_approved", "approval_status", "approved_by"}).
			AddRow("intern-1", "ada@example.com", "Ada", true, "approved", "admin-1"))
	mock.ExpectCommit()

	intern, err := repo.Approve(context.Background(), "intern-1", "admin-1", at)
	require.NoError(t, err)
	assert.True(t, intern.IsApproved)
	assert.Equal(t, models.ApprovalApproved, intern.ApprovalStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInternRepositoryApproveAlreadyProcessed(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewInternRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT approval_status FROM interns")).
		WillReturnRows(sqlmock.NewRows([]string{"approval_status"}).AddRow("approved"))
	mock.ExpectRollback()

	_, err := repo.Approve(context.Background(), "intern-1", "admin-1", time.Now())
	require.ErrorIs(t, err, ErrAlreadyProcessed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInternRepositoryApproveMissing(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewInternRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT approval_status FROM interns")).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.Approve(context.Background(), "ghost", "admin-1", time.Now())
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInternRepositoryRejectSoftKeepsRow(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewInternRepository(db)
	reason := "unknown institution"
	at := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT approval_status FROM interns")).
		WillReturnRows(sqlmock.NewRows([]string{"approval_status"}).AddRow("pending"))
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE interns SET is_approved = FALSE, approval_status = 'rejected'")).
		WithArgs("intern-1", "admin-1", at, &reason).
		WillReturnRows(sqlmock.NewRows([]string{"id", "approval_status", "is_approved", "rejection_reason"}).
			AddRow("intern-1", "rejected", false, reason))
	mock.ExpectCommit()

	intern, err := repo.Reject(context.Background(), "intern-1", "admin-1", &reason, at, false)
	require.NoError(t, err)
	assert.False(t, intern.IsApproved)
	assert.Equal(t, models.ApprovalRejected, intern.ApprovalStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInternRepositoryRejectPurgeDeletes(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewInternRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT approval_status FROM interns")).
		WillReturnRows(sqlmock.NewRows([]string{"approval_status"}).AddRow("pending"))
	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM interns WHERE id = $1 RETURNING")).
		WithArgs("intern-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "approval_status"}).AddRow("intern-1", "ada@example.com", "pending"))
	mock.ExpectCommit()

	intern, err := repo.Reject(context.Background(), "intern-1", "admin-1", nil, time.Now(), true)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", intern.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInternRepositoryCreateDuplicate(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewInternRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO interns")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "interns_matric_number_key"})

	err := repo.Create(context.Background(), &models.Intern{Email: "ada@example.com", MatricNumber: "CSC/1"})
	require.ErrorIs(t, err, ErrDuplicate)
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "interns_matric_number_key", dup.Constraint)
}

func TestInternRepositoryCreateSetsPending(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewInternRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO interns")).WillReturnResult(sqlmock.NewResult(0, 1))

	intern := &models.Intern{Email: "ada@example.com", ApprovalStatus: models.ApprovalApproved, IsApproved: true,
		ProfilePicture: &models.Attachment{Data: []byte{0x89, 'P', 'N', 'G'}, MimeType: "image/png"}}
	require.NoError(t, repo.Create(context.Background(), intern))
	assert.NotEmpty(t, intern.ID)
	assert.Equal(t, models.ApprovalPending, intern.ApprovalStatus)
	assert.False(t, intern.IsApproved)
	assert.True(t, intern.HasProfilePicture)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInternRepositoryListOutOfRangePage(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewInternRepository(db)
	status := models.ApprovalPending

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, matric_number")).
		WithArgs(status, 10, 40).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM interns WHERE approval_status = $1")).
		WithArgs(status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(23))

	rows, total, err := repo.List(context.Background(), models.InternFilter{Status: &status, Page: models.PageRequest{Page: 5, Limit: 10}})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, 23, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
