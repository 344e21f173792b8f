package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-portal-api/internal/dto"
	"github.com/noah-isme/intern-portal-api/internal/models"
	"github.com/noah-isme/intern-portal-api/internal/repository"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
	"github.com/noah-isme/intern-portal-api/pkg/mail"
)

func newApprovalFixture(t *testing.T) (*ApprovalService, *fakeInternStore, *recordingNotifier, *countingInvalidator) {
	t.Helper()
	store := newFakeInternStore()
	store.items["i1"] = &models.Intern{ID: "i1", Email: "i1@uni.test", FirstName: "Ivy", LastName: "Intern", ApprovalStatus: models.ApprovalPending}
	notifier := &recordingNotifier{}
	dashboard := &countingInvalidator{}
	svc := NewApprovalService(store, notifier, dashboard, nil, nil, nil)
	svc.now = fixedClock
	return svc, store, notifier, dashboard
}

func assertApprovalInvariant(t *testing.T, store *fakeInternStore) {
	t.Helper()
	for _, intern := range store.items {
		assert.Equal(t, intern.ApprovalStatus == models.ApprovalApproved, intern.IsApproved, intern.ID)
	}
}

func TestApproveSendsOneEmail(t *testing.T) {
	svc, store, notifier, dashboard := newApprovalFixture(t)

	intern, err := svc.Approve(context.Background(), adminSession(), "i1")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, intern.ApprovalStatus)
	require.NotNil(t, intern.ApprovedBy)
	assert.Equal(t, "admin-1", *intern.ApprovedBy)
	assert.Equal(t, fixedNow, *intern.ApprovedAt)

	require.Len(t, notifier.emails, 1)
	assert.Equal(t, mail.TemplateApproval, notifier.emails[0].Template)
	assert.Equal(t, "i1@uni.test", notifier.emails[0].Recipient.Email)
	assert.Empty(t, notifier.internCall)
	assert.Equal(t, 1, dashboard.calls)
	assertApprovalInvariant(t, store)
}

func TestApproveTwiceIsAlreadyProcessed(t *testing.T) {
	svc, store, notifier, _ := newApprovalFixture(t)
	ctx := context.Background()

	_, err := svc.Approve(ctx, adminSession(), "i1")
	require.NoError(t, err)
	_, err = svc.Approve(ctx, adminSession(), "i1")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrAlreadyProcessed)
	assert.Equal(t, 409, appErrors.FromError(err).Status)

	_, err = svc.Reject(ctx, adminSession(), "i1", dto.RejectInternRequest{Reason: "late"})
	assert.ErrorIs(t, err, appErrors.ErrAlreadyProcessed)

	assert.Len(t, notifier.emails, 1)
	assert.Equal(t, models.ApprovalApproved, store.items["i1"].ApprovalStatus)
	assertApprovalInvariant(t, store)
}

func TestApproveSucceedsWhenEmailFails(t *testing.T) {
	svc, store, notifier, _ := newApprovalFixture(t)
	notifier.emailErr = errors.New("smtp: 421 service not available")

	intern, err := svc.Approve(context.Background(), adminSession(), "i1")
	require.NoError(t, err)
	assert.True(t, intern.IsApproved)
	assert.Equal(t, models.ApprovalApproved, store.items["i1"].ApprovalStatus)
	assert.Len(t, notifier.emails, 1)
}

func TestRejectKeepsRecordWithReason(t *testing.T) {
	svc, store, notifier, _ := newApprovalFixture(t)

	intern, err := svc.Reject(context.Background(), adminSession(), "i1", dto.RejectInternRequest{Reason: " incomplete documents "})
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, intern.ApprovalStatus)
	require.NotNil(t, store.items["i1"].RejectionReason)
	assert.Equal(t, "incomplete documents", *store.items["i1"].RejectionReason)

	require.Len(t, notifier.emails, 1)
	assert.Equal(t, mail.TemplateRejection, notifier.emails[0].Template)
	assert.Equal(t, "incomplete documents", notifier.emails[0].Data.Reason)
	assertApprovalInvariant(t, store)
}

func TestRejectPurgeDeletesRecord(t *testing.T) {
	svc, store, notifier, _ := newApprovalFixture(t)

	intern, err := svc.Reject(context.Background(), adminSession(), "i1", dto.RejectInternRequest{Purge: true})
	require.NoError(t, err)
	assert.Equal(t, "i1@uni.test", intern.Email)
	assert.NotContains(t, store.items, "i1")
	assert.Len(t, notifier.emails, 1)

	_, err = svc.Approve(context.Background(), adminSession(), "i1")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestApprovalRequiresAdmin(t *testing.T) {
	svc, _, notifier, _ := newApprovalFixture(t)

	_, err := svc.Approve(context.Background(), internSession("i2"), "i1")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Empty(t, notifier.emails)
}

func TestApproveMalformedIDIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT approval_status FROM interns WHERE id = $1 FOR UPDATE")).
		WithArgs("not-a-uuid").
		WillReturnError(&pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "not-a-uuid"`})
	mock.ExpectRollback()

	notifier := &recordingNotifier{}
	repo := repository.NewInternRepository(sqlx.NewDb(db, "sqlmock"))
	svc := NewApprovalService(repo, notifier, nil, nil, nil, nil)

	_, err = svc.Approve(context.Background(), adminSession(), "not-a-uuid")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
	assert.Empty(t, notifier.emails)
	require.NoError(t, mock.ExpectationsWereMet())
}

type recordingRunner struct {
	tasks []func(context.Context)
}

func (r *recordingRunner) Go(fn func(ctx context.Context)) {
	r.tasks = append(r.tasks, fn)
}

func TestApproveWithRunnerDefersEmail(t *testing.T) {
	store := newFakeInternStore()
	store.items["i1"] = &models.Intern{ID: "i1", Email: "i1@uni.test", ApprovalStatus: models.ApprovalPending}
	notifier := &recordingNotifier{}
	runner := &recordingRunner{}
	svc := NewApprovalService(store, notifier, nil, nil, nil, runner)

	_, err := svc.Approve(context.Background(), adminSession(), "i1")
	require.NoError(t, err)
	assert.Empty(t, notifier.emails)
	require.Len(t, runner.tasks, 1)

	runner.tasks[0](context.Background())
	require.Len(t, notifier.emails, 1)
	assert.Equal(t, mail.TemplateApproval, notifier.emails[0].Template)
}
