package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-portal-api/internal/dto"
	"github.com/noah-isme/intern-portal-api/internal/models"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
	"github.com/noah-isme/intern-portal-api/pkg/mail"
)

type fakeMessageStore struct {
	recipients []models.Recipient
	err        error
	messages   []models.Message
	tmpl       models.Notification
}

func (f *fakeMessageStore) Broadcast(ctx context.Context, msg *models.Message, tmpl models.Notification) ([]models.Recipient, error) {
	if f.err != nil {
		return nil, f.err
	}
	msg.ID = "msg-1"
	f.tmpl = tmpl
	f.messages = append(f.messages, *msg)
	return f.recipients, nil
}

func (f *fakeMessageStore) List(ctx context.Context, page models.PageRequest) ([]models.Message, int, error) {
	return f.messages, len(f.messages), nil
}

func (f *fakeMessageStore) File(ctx context.Context, id string) (*models.Attachment, error) {
	return nil, errStoreDown
}

func TestBroadcastEmailsEveryRecipient(t *testing.T) {
	store := &fakeMessageStore{recipients: []models.Recipient{
		{Kind: models.RecipientIntern, ID: "i1", Email: "i1@uni.test"},
		{Kind: models.RecipientIntern, ID: "i2", Email: "i2@uni.test"},
	}}
	notifier := &recordingNotifier{emailErr: errors.New("quota exceeded")}
	metrics := NewMetricsService()
	svc := NewMessageService(store, AttachmentPolicy{}, notifier, metrics, "https://portal.test", nil, nil, PagingConfig{})

	result, err := svc.Broadcast(context.Background(), adminSession(), dto.BroadcastMessageRequest{Title: "Town hall", Body: "Friday 3pm"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Recipients)
	assert.Equal(t, "msg-1", result.Message.ID)
	assert.Contains(t, store.tmpl.Message, "Town hall")

	require.Len(t, notifier.emails, 2)
	assert.Equal(t, mail.TemplateNotification, notifier.emails[0].Template)
	assert.Equal(t, "https://portal.test/user_dashboard.html#messages?id=msg-1", notifier.emails[0].Data.Link)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.notifications.WithLabelValues(models.SectionMessages, OutcomePersisted)))
}

func TestBroadcastFailureSendsNothing(t *testing.T) {
	store := &fakeMessageStore{err: errors.New("insert notifications: wrote 1 of 2")}
	notifier := &recordingNotifier{}
	svc := NewMessageService(store, AttachmentPolicy{}, notifier, nil, "", nil, nil, PagingConfig{})

	_, err := svc.Broadcast(context.Background(), adminSession(), dto.BroadcastMessageRequest{Title: "t", Body: "b"})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
	assert.Empty(t, notifier.emails)

	_, err = svc.Broadcast(context.Background(), internSession("i1"), dto.BroadcastMessageRequest{Title: "t", Body: "b"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
