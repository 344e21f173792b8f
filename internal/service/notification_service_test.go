package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-portal-api/internal/models"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
	"github.com/noah-isme/intern-portal-api/pkg/mail"
)

type stubNotificationStore struct {
	created  []models.Notification
	failFor  map[string]error
	total    int
	unread   int
	markErr  error
	lastPage models.PageRequest
}

func (s *stubNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	if err := s.failFor[n.RecipientID]; err != nil {
		return err
	}
	n.ID = "n-" + n.RecipientID
	s.created = append(s.created, *n)
	return nil
}

func (s *stubNotificationStore) ListForRecipient(ctx context.Context, recipientID string, role models.NotificationRole, page models.PageRequest) ([]models.Notification, int, error) {
	s.lastPage = page
	return nil, s.total, nil
}

func (s *stubNotificationStore) CountUnread(ctx context.Context, recipientID string, role models.NotificationRole) (int, error) {
	return s.unread, nil
}

func (s *stubNotificationStore) MarkRead(ctx context.Context, id, recipientID string, role models.NotificationRole) error {
	return s.markErr
}

func (s *stubNotificationStore) MarkAllRead(ctx context.Context, recipientID string, role models.NotificationRole) (int64, error) {
	return 3, nil
}

type stubDispatcher struct {
	sent    []mail.Message
	failFor map[string]error
}

func (d *stubDispatcher) Dispatch(ctx context.Context, msg mail.Message) error {
	if err := d.failFor[msg.To]; err != nil {
		return err
	}
	d.sent = append(d.sent, msg)
	return nil
}

func threeAdmins() *fakeAdminStore {
	return &fakeAdminStore{admins: []models.Admin{
		{ID: "a1", Email: "a1@portal.test", FirstName: "A", LastName: "One", Role: models.RoleAdmin},
		{ID: "a2", Email: "a2@portal.test", FirstName: "A", LastName: "Two", Role: models.RoleAdmin},
		{ID: "a3", Email: "a3@portal.test", FirstName: "A", LastName: "Three", Role: models.RoleSuperAdmin},
	}}
}

func TestNotifyAdminsIsolatesFailures(t *testing.T) {
	store := &stubNotificationStore{failFor: map[string]error{"a2": errors.New("deadlock detected")}}
	dispatcher := &stubDispatcher{failFor: map[string]error{"a3@portal.test": errors.New("mailbox unavailable")}}
	metrics := NewMetricsService()
	svc := NewNotificationService(store, threeAdmins(), dispatcher, metrics, nil, NotificationConfig{PublicBaseURL: "https://portal.test"})
	svc.now = fixedClock

	report := svc.NotifyAdmins(context.Background(), Notice{
		Message:  "Ivy submitted a logbook",
		Section:  models.SectionLogbooks,
		EntityID: "lb-1",
		Subject:  "New logbook submission",
	})

	require.Len(t, report.Persisted, 2)
	assert.Equal(t, "a1", report.Persisted[0].RecipientID)
	assert.Equal(t, "a3", report.Persisted[1].RecipientID)
	assert.Equal(t, models.NotifyAdmin, report.Persisted[0].RecipientRole)
	assert.Equal(t, "/admin_dashboard.html#logbooks?id=lb-1", report.Persisted[0].Link)

	require.Len(t, report.Failures, 2)
	assert.Equal(t, StagePersist, report.Failures[0].Stage)
	assert.Equal(t, "a2", report.Failures[0].Recipient.ID)
	assert.Equal(t, StageEmail, report.Failures[1].Stage)
	assert.Equal(t, "a3", report.Failures[1].Recipient.ID)

	require.Len(t, dispatcher.sent, 2)
	assert.True(t, strings.Contains(dispatcher.sent[0].HTML, "https://portal.test/admin_dashboard.html#logbooks?id=lb-1"))

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.notifications.WithLabelValues(models.SectionLogbooks, OutcomePersisted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.notifications.WithLabelValues(models.SectionLogbooks, OutcomeFailed)))
}

func TestNotifyInternWithoutSubjectSkipsEmail(t *testing.T) {
	store := &stubNotificationStore{}
	dispatcher := &stubDispatcher{}
	svc := NewNotificationService(store, threeAdmins(), dispatcher, nil, nil, NotificationConfig{})

	report := svc.NotifyIntern(context.Background(), models.Recipient{Kind: models.RecipientIntern, ID: "i1", Email: "i1@uni.test"}, Notice{
		Message: "Your leave request was approved",
		Section: models.SectionLeaveRequests,
	})
	require.Len(t, report.Persisted, 1)
	assert.Equal(t, models.NotifyUser, report.Persisted[0].RecipientRole)
	assert.Nil(t, report.Persisted[0].EntityID)
	assert.Equal(t, "/user_dashboard.html#leave_requests", report.Persisted[0].Link)
	assert.Empty(t, dispatcher.sent)
}

func TestNotifyAdminsDirectoryFailure(t *testing.T) {
	store := &stubNotificationStore{}
	admins := &fakeAdminStore{listErr: errors.New("timeout")}
	svc := NewNotificationService(store, admins, &stubDispatcher{}, nil, nil, NotificationConfig{})

	report := svc.NotifyAdmins(context.Background(), Notice{Message: "x", Section: models.SectionComplaints})
	assert.Empty(t, report.Persisted)
	assert.Empty(t, store.created)
}

func TestInboxOperations(t *testing.T) {
	store := &stubNotificationStore{total: 23, unread: 4}
	svc := NewNotificationService(store, threeAdmins(), nil, nil, nil, NotificationConfig{DefaultLimit: 10, MaxLimit: 100})
	ctx := context.Background()
	principal := internSession("i1")

	_, page, err := svc.List(ctx, principal, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 23, page.TotalCount)
	assert.Equal(t, 40, store.lastPage.Offset())

	count, err := svc.UnreadCount(ctx, principal)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	updated, err := svc.MarkAllRead(ctx, principal)
	require.NoError(t, err)
	assert.EqualValues(t, 3, updated)

	store.markErr = sql.ErrNoRows
	err = svc.MarkRead(ctx, principal, "someone-elses")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}
