package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-portal-api/internal/dto"
	"github.com/noah-isme/intern-portal-api/internal/models"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
)

type complaintStore interface {
	Create(ctx context.Context, c *models.Complaint) error
	FindByID(ctx context.Context, id string) (*models.Complaint, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Complaint, int, error)
	Review(ctx context.Context, id string, status models.ComplaintStatus, response *string, adminID string, at time.Time) (*models.Complaint, error)
}

// ComplaintService runs complaints and suggestions.
type ComplaintService struct {
	repo      complaintStore
	interns   internLookup
	notifier  workflowNotifier
	dashboard statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	paging    PagingConfig
	now       Clock
}

// NewComplaintService constructs a ComplaintService.
func NewComplaintService(repo complaintStore, interns internLookup, notifier workflowNotifier, dashboard statsInvalidator, validate *validator.Validate, logger *zap.Logger, paging PagingConfig) *ComplaintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &ComplaintService{repo: repo, interns: interns, notifier: notifier, dashboard: dashboard, validator: validate, logger: logger, paging: paging, now: systemClock}
}

// Submit stores a complaint or suggestion and notifies admins.
func (s *ComplaintService) Submit(ctx context.Context, principal models.Session, req dto.SubmitComplaintRequest) (*models.Complaint, error) {
	if err := requireIntern(principal); err != nil {
		return nil, err
	}
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid complaint payload")
	}
	complaint := &models.Complaint{
		InternID:    principal.PrincipalID,
		InternName:  principalName(principal),
		Category:    req.Category,
		Subject:     strings.TrimSpace(req.Subject),
		Body:        strings.TrimSpace(req.Body),
		SubmittedAt: s.now(),
	}
	if err := s.repo.Create(ctx, complaint); err != nil {
		return nil, appErrors.Internal(err, "failed to submit "+req.Category)
	}

	afterCommit(ctx, s.dashboard, func(bg context.Context) {
		s.notifier.NotifyAdmins(bg, Notice{
			SenderID: &principal.PrincipalID,
			Message:  fmt.Sprintf("%s submitted a %s: %s", complaint.InternName, complaint.Category, complaint.Subject),
			Section:  models.SectionComplaints,
			EntityID: complaint.ID,
			Subject:  "New " + complaint.Category,
			Heading:  "A " + complaint.Category + " is waiting for review",
		})
	})
	return complaint, nil
}

// List returns complaints. Interns only see their own.
func (s *ComplaintService) List(ctx context.Context, principal models.Session, status string, page, limit int) ([]models.Complaint, *models.Pagination, error) {
	switch models.ComplaintStatus(status) {
	case "", models.ComplaintPending, models.ComplaintResolved, models.ComplaintDismissed:
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown complaint status")
	}
	filter := ownerFilter(principal, status, s.paging.request(page, limit))
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list complaints")
	}
	return rows, models.NewPagination(filter.Page, total), nil
}

// Get returns one complaint.
func (s *ComplaintService) Get(ctx context.Context, principal models.Session, id string) (*models.Complaint, error) {
	complaint, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "complaint not found", "failed to load complaint")
	}
	if !canView(principal, complaint.InternID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "complaint not found")
	}
	return complaint, nil
}

// Review resolves or dismisses a pending complaint and notifies its author.
func (s *ComplaintService) Review(ctx context.Context, admin models.Session, id string, req dto.ReviewComplaintRequest) (*models.Complaint, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid review payload")
	}
	complaint, err := s.repo.Review(ctx, id, models.ComplaintStatus(req.Status), optional(req.Response), admin.PrincipalID, s.now())
	if err != nil {
		return nil, mapStoreError(err, "complaint not found", "failed to review complaint")
	}

	afterCommit(ctx, s.dashboard, func(bg context.Context) {
		s.notifier.NotifyIntern(bg, submitter(bg, s.interns, s.logger, complaint.InternID, complaint.InternName), Notice{
			SenderID: &admin.PrincipalID,
			Message:  fmt.Sprintf("Your %s \"%s\" was %s", complaint.Category, complaint.Subject, complaint.Status),
			Section:  models.SectionComplaints,
			EntityID: complaint.ID,
			Subject:  "Your " + complaint.Category + " was reviewed",
			Heading:  fmt.Sprintf("Your %s was %s", complaint.Category, complaint.Status),
		})
	})
	return complaint, nil
}
