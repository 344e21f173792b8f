package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/intern-portal-api/internal/models"
	"github.com/noah-isme/intern-portal-api/internal/repository"
	"github.com/noah-isme/intern-portal-api/pkg/mail"
)

var fixedNow = time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type fakeInternStore struct {
	mu      sync.Mutex
	items   map[string]*models.Intern
	nextID  int
	findErr error
}

func newFakeInternStore() *fakeInternStore {
	return &fakeInternStore{items: make(map[string]*models.Intern)}
}

func (f *fakeInternStore) FindByEmail(ctx context.Context, email string) (*models.Intern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, intern := range f.items {
		if strings.EqualFold(intern.Email, email) {
			cp := *intern
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeInternStore) FindByID(ctx context.Context, id string) (*models.Intern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	intern, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *intern
	return &cp, nil
}

func (f *fakeInternStore) List(ctx context.Context, filter models.InternFilter) ([]models.Intern, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Intern
	for _, intern := range f.items {
		if filter.Status != nil && intern.ApprovalStatus != *filter.Status {
			continue
		}
		out = append(out, *intern)
	}
	return out, len(out), nil
}

func (f *fakeInternStore) Create(ctx context.Context, intern *models.Intern) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.Email == intern.Email || existing.MatricNumber == intern.MatricNumber {
			return &repository.DuplicateError{Constraint: "interns_email_key"}
		}
	}
	f.nextID++
	if intern.ID == "" {
		intern.ID = fmt.Sprintf("intern-%d", f.nextID)
	}
	intern.ApprovalStatus = models.ApprovalPending
	intern.IsApproved = false
	intern.HasProfilePicture = intern.ProfilePicture.Present()
	cp := *intern
	cp.ProfilePicture = nil
	f.items[intern.ID] = &cp
	return nil
}

func (f *fakeInternStore) ProfilePicture(ctx context.Context, id string) (*models.Attachment, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeInternStore) Approve(ctx context.Context, id, adminID string, at time.Time) (*models.Intern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	intern, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if intern.ApprovalStatus != models.ApprovalPending {
		return nil, repository.ErrAlreadyProcessed
	}
	intern.ApprovalStatus = models.ApprovalApproved
	intern.IsApproved = true
	intern.ApprovedBy = &adminID
	intern.ApprovedAt = &at
	cp := *intern
	return &cp, nil
}

func (f *fakeInternStore) Reject(ctx context.Context, id, adminID string, reason *string, at time.Time, purge bool) (*models.Intern, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	intern, ok := f.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if intern.ApprovalStatus != models.ApprovalPending {
		return nil, repository.ErrAlreadyProcessed
	}
	cp := *intern
	if purge {
		delete(f.items, id)
		return &cp, nil
	}
	intern.ApprovalStatus = models.ApprovalRejected
	intern.IsApproved = false
	intern.ApprovedBy = &adminID
	intern.ApprovedAt = &at
	intern.RejectionReason = reason
	cp = *intern
	return &cp, nil
}

type fakeAdminStore struct {
	admins  []models.Admin
	listErr error
	created []*models.Admin
}

func (f *fakeAdminStore) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	for _, admin := range f.admins {
		if strings.EqualFold(admin.Email, email) {
			cp := admin
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAdminStore) ListAll(ctx context.Context) ([]models.Admin, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.admins, nil
}

func (f *fakeAdminStore) Create(ctx context.Context, admin *models.Admin) error {
	for _, existing := range f.admins {
		if existing.Email == admin.Email {
			return &repository.DuplicateError{Constraint: "admins_email_key"}
		}
	}
	if admin.ID == "" {
		admin.ID = "admin-new"
	}
	f.admins = append(f.admins, *admin)
	f.created = append(f.created, admin)
	return nil
}

type sentEmail struct {
	Recipient models.Recipient
	Template  string
	Data      mail.TemplateData
}

// recordingNotifier captures workflow notifications.
type recordingNotifier struct {
	mu         sync.Mutex
	adminCalls []Notice
	internTo   []models.Recipient
	internCall []Notice
	emails     []sentEmail
	emailErr   error
}

func (r *recordingNotifier) NotifyAdmins(ctx context.Context, notice Notice) Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adminCalls = append(r.adminCalls, notice)
	return Report{}
}

func (r *recordingNotifier) NotifyIntern(ctx context.Context, recipient models.Recipient, notice Notice) Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.internTo = append(r.internTo, recipient)
	r.internCall = append(r.internCall, notice)
	return Report{}
}

func (r *recordingNotifier) SendEmail(ctx context.Context, recipient models.Recipient, template string, data mail.TemplateData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, sentEmail{Recipient: recipient, Template: template, Data: data})
	return r.emailErr
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) Invalidate(ctx context.Context) { c.calls++ }

var errStoreDown = errors.New("connection refused")

func adminSession() models.Session {
	return models.Session{ID: "sess-admin", PrincipalID: "admin-1", Role: models.RoleAdmin, FirstName: "Ada", LastName: "Admin"}
}

func internSession(id string) models.Session {
	return models.Session{ID: "sess-" + id, PrincipalID: id, Role: models.RoleIntern, FirstName: "Ivy", LastName: "Intern"}
}

func pngBytes() []byte {
	return []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
}
