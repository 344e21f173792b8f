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

const leaveDateLayout = "2006-01-02"

type leaveStore interface {
	Create(ctx context.Context, req *models.LeaveRequest) error
	FindByID(ctx context.Context, id string) (*models.LeaveRequest, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.LeaveRequest, int, error)
	Attachment(ctx context.Context, id string) (*models.Attachment, error)
	Review(ctx context.Context, id string, status models.LeaveStatus, note *string, adminID string, at time.Time) (*models.LeaveRequest, error)
}

// LeaveService runs leave requests and their review.
type LeaveService struct {
	repo      leaveStore
	interns   internLookup
	location  *time.Location
	policy    AttachmentPolicy
	notifier  workflowNotifier
	dashboard statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	paging    PagingConfig
	now       Clock
}

// NewLeaveService constructs a LeaveService. Dates are read in loc.
func NewLeaveService(repo leaveStore, interns internLookup, loc *time.Location, policy AttachmentPolicy, notifier workflowNotifier, dashboard statsInvalidator, validate *validator.Validate, logger *zap.Logger, paging PagingConfig) *LeaveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &LeaveService{repo: repo, interns: interns, location: loc, policy: policy, notifier: notifier, dashboard: dashboard, validator: validate, logger: logger, paging: paging, now: systemClock}
}

// Submit stores a leave request and notifies admins.
func (s *LeaveService) Submit(ctx context.Context, principal models.Session, req dto.SubmitLeaveRequest) (*models.LeaveRequest, error) {
	if err := requireIntern(principal); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid leave request payload")
	}
	start, err := time.ParseInLocation(leaveDateLayout, req.StartDate, s.location)
	if err != nil {
		return nil, appErrors.Validation(err, "start_date must be YYYY-MM-DD")
	}
	end, err := time.ParseInLocation(leaveDateLayout, req.EndDate, s.location)
	if err != nil {
		return nil, appErrors.Validation(err, "end_date must be YYYY-MM-DD")
	}
	if start.After(end) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must not be after end_date")
	}
	if err := s.policy.Check(req.Attachment); err != nil {
		return nil, err
	}

	leave := &models.LeaveRequest{
		InternID:    principal.PrincipalID,
		InternName:  principalName(principal),
		LeaveType:   req.LeaveType,
		Reason:      strings.TrimSpace(req.Reason),
		StartDate:   start,
		EndDate:     end,
		SubmittedAt: s.now(),
		Attachment:  req.Attachment,
	}
	if err := s.repo.Create(ctx, leave); err != nil {
		return nil, appErrors.Internal(err, "failed to submit leave request")
	}
	leave.Attachment = nil

	afterCommit(ctx, s.dashboard, func(bg context.Context) {
		s.notifier.NotifyAdmins(bg, Notice{
			SenderID: &principal.PrincipalID,
			Message: fmt.Sprintf("%s requested %s leave from %s to %s", leave.InternName, leave.LeaveType,
				start.Format(leaveDateLayout), end.Format(leaveDateLayout)),
			Section:  models.SectionLeaveRequests,
			EntityID: leave.ID,
			Subject:  "New leave request",
			Heading:  "A leave request is waiting for review",
		})
	})
	return leave, nil
}

// List returns leave requests. Interns only see their own.
func (s *LeaveService) List(ctx context.Context, principal models.Session, status string, page, limit int) ([]models.LeaveRequest, *models.Pagination, error) {
	switch models.LeaveStatus(status) {
	case "", models.LeavePending, models.LeaveApproved, models.LeaveRejected:
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown leave status")
	}
	filter := ownerFilter(principal, status, s.paging.request(page, limit))
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list leave requests")
	}
	return rows, models.NewPagination(filter.Page, total), nil
}

// Get returns one leave request.
func (s *LeaveService) Get(ctx context.Context, principal models.Session, id string) (*models.LeaveRequest, error) {
	leave, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "leave request not found", "failed to load leave request")
	}
	if !canView(principal, leave.InternID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
	}
	return leave, nil
}

// Attachment returns the supporting document of a leave request.
func (s *LeaveService) Attachment(ctx context.Context, principal models.Session, id string) (*models.Attachment, error) {
	if _, err := s.Get(ctx, principal, id); err != nil {
		return nil, err
	}
	file, err := s.repo.Attachment(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "attachment not found", "failed to load attachment")
	}
	return file, nil
}

// Review approves or rejects a pending leave request and notifies its author.
func (s *LeaveService) Review(ctx context.Context, admin models.Session, id string, req dto.ReviewLeaveRequest) (*models.LeaveRequest, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid review payload")
	}
	leave, err := s.repo.Review(ctx, id, models.LeaveStatus(req.Status), optional(req.Note), admin.PrincipalID, s.now())
	if err != nil {
		return nil, mapStoreError(err, "leave request not found", "failed to review leave request")
	}

	afterCommit(ctx, s.dashboard, func(bg context.Context) {
		s.notifier.NotifyIntern(bg, submitter(bg, s.interns, s.logger, leave.InternID, leave.InternName), Notice{
			SenderID: &admin.PrincipalID,
			Message: fmt.Sprintf("Your leave request from %s to %s was %s", leave.StartDate.Format(leaveDateLayout),
				leave.EndDate.Format(leaveDateLayout), leave.Status),
			Section:  models.SectionLeaveRequests,
			EntityID: leave.ID,
			Subject:  "Your leave request was reviewed",
			Heading:  "Leave request " + string(leave.Status),
		})
	})
	return leave, nil
}
