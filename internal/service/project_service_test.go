package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-portal-api/internal/dto"
	"github.com/noah-isme/intern-portal-api/internal/models"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
	"github.com/noah-isme/intern-portal-api/pkg/storage"
)

type fakeProjectStore struct {
	rows  map[string]*models.ProjectUpload
	files map[string]*models.Attachment
}

func (f *fakeProjectStore) Create(ctx context.Context, p *models.ProjectUpload) error {
	p.ID = "p1"
	p.Filename = p.File.Filename
	p.MimeType = p.File.MimeType
	p.Size = p.File.Size
	cp := *p
	f.rows[p.ID] = &cp
	f.files[p.ID] = p.File
	return nil
}

func (f *fakeProjectStore) FindByID(ctx context.Context, id string) (*models.ProjectUpload, error) {
	if row, ok := f.rows[id]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeProjectStore) List(ctx context.Context, filter models.SubmissionFilter) ([]models.ProjectUpload, int, error) {
	return nil, len(f.rows), nil
}

func (f *fakeProjectStore) File(ctx context.Context, id string) (*models.Attachment, error) {
	if file, ok := f.files[id]; ok {
		return file, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeProjectStore) Delete(ctx context.Context, id string) error {
	if _, ok := f.rows[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.rows, id)
	delete(f.files, id)
	return nil
}

func newProjectFixture() (*ProjectService, *fakeProjectStore, *recordingNotifier, *countingInvalidator) {
	store := &fakeProjectStore{rows: map[string]*models.ProjectUpload{}, files: map[string]*models.Attachment{}}
	notifier := &recordingNotifier{}
	dashboard := &countingInvalidator{}
	signer := storage.NewLinkSigner("link-secret", time.Hour)
	svc := NewProjectService(store, signer, "https://portal.test/api/v1/files/", AttachmentPolicy{AllowedMIMEs: []string{"image/png"}}, notifier, dashboard, nil, nil, PagingConfig{})
	svc.now = fixedClock
	return svc, store, notifier, dashboard
}

func TestProjectUploadDownloadAndLink(t *testing.T) {
	svc, _, notifier, dashboard := newProjectFixture()
	ctx := context.Background()

	project, err := svc.Upload(ctx, internSession("i1"), dto.UploadProjectRequest{
		Title: "Final report", File: &models.Attachment{Data: pngBytes(), Filename: "diagram.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", project.MimeType)
	assert.Nil(t, project.File)
	require.Len(t, notifier.adminCalls, 1)
	assert.Equal(t, models.SectionProjects, notifier.adminCalls[0].Section)
	assert.Equal(t, 1, dashboard.calls)

	file, err := svc.Download(ctx, internSession("i1"), project.ID)
	require.NoError(t, err)
	assert.Equal(t, "diagram.png", file.Filename)
	_, err = svc.Download(ctx, internSession("i2"), project.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	link, err := svc.Link(ctx, adminSession(), project.ID)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link.URL, "https://portal.test/api/v1/files/"))
	token := strings.TrimPrefix(link.URL, "https://portal.test/api/v1/files/")

	resolved, err := svc.ResolveLink(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, file.Data, resolved.Data)

	_, err = svc.ResolveLink(ctx, token+"x")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestProjectUploadRequiresFile(t *testing.T) {
	svc, store, notifier, _ := newProjectFixture()

	_, err := svc.Upload(context.Background(), internSession("i1"), dto.UploadProjectRequest{Title: "No file"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.Upload(context.Background(), internSession("i1"), dto.UploadProjectRequest{
		Title: "Wrong type", File: &models.Attachment{Data: []byte("just text"), Filename: "a.txt"},
	})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, store.rows)
	assert.Empty(t, notifier.adminCalls)
}

func TestProjectDeleteIsAdminOnly(t *testing.T) {
	svc, store, _, _ := newProjectFixture()
	ctx := context.Background()
	project, err := svc.Upload(ctx, internSession("i1"), dto.UploadProjectRequest{
		Title: "Report", File: &models.Attachment{Data: pngBytes()},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, internSession("i1"), project.ID), appErrors.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, adminSession(), project.ID))
	assert.Empty(t, store.rows)
	assert.ErrorIs(t, svc.Delete(ctx, adminSession(), project.ID), appErrors.ErrNotFound)
}
