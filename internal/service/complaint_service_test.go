package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-portal-api/internal/dto"
	"github.com/noah-isme/intern-portal-api/internal/models"
	"github.com/noah-isme/intern-portal-api/internal/repository"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
)

type fakeComplaintStore struct {
	rows map[string]*models.Complaint
}

func (f *fakeComplaintStore) Create(ctx context.Context, c *models.Complaint) error {
	c.ID = "c1"
	c.Status = models.ComplaintPending
	cp := *c
	f.rows[c.ID] = &cp
	return nil
}

func (f *fakeComplaintStore) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	if row, ok := f.rows[id]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeComplaintStore) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Complaint, int, error) {
	return nil, len(f.rows), nil
}

func (f *fakeComplaintStore) Review(ctx context.Context, id string, status models.ComplaintStatus, response *string, adminID string, at time.Time) (*models.Complaint, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if row.Status != models.ComplaintPending {
		return nil, repository.ErrAlreadyProcessed
	}
	row.Status = status
	row.Response = response
	cp := *row
	return &cp, nil
}

func TestComplaintSubmitAndReview(t *testing.T) {
	store := &fakeComplaintStore{rows: map[string]*models.Complaint{}}
	interns := newFakeInternStore()
	interns.items["i1"] = &models.Intern{ID: "i1", Email: "i1@uni.test"}
	notifier := &recordingNotifier{}
	svc := NewComplaintService(store, interns, notifier, nil, nil, nil, PagingConfig{})
	ctx := context.Background()

	complaint, err := svc.Submit(ctx, internSession("i1"), dto.SubmitComplaintRequest{Category: "Suggestion", Subject: "Desks", Body: "More standing desks"})
	require.NoError(t, err)
	assert.Equal(t, "suggestion", complaint.Category)
	require.Len(t, notifier.adminCalls, 1)
	assert.Equal(t, models.SectionComplaints, notifier.adminCalls[0].Section)

	reviewed, err := svc.Review(ctx, adminSession(), complaint.ID, dto.ReviewComplaintRequest{Status: "resolved", Response: "Ordered"})
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintResolved, reviewed.Status)
	require.Len(t, notifier.internTo, 1)
	assert.Equal(t, "i1@uni.test", notifier.internTo[0].Email)

	_, err = svc.Review(ctx, adminSession(), complaint.ID, dto.ReviewComplaintRequest{Status: "dismissed"})
	assert.ErrorIs(t, err, appErrors.ErrAlreadyProcessed)

	_, err = svc.Submit(ctx, internSession("i1"), dto.SubmitComplaintRequest{Category: "rant", Subject: "x", Body: "y"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Len(t, store.rows, 1)
}
