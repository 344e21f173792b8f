package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-portal-api/internal/dto"
	"github.com/noah-isme/intern-portal-api/internal/models"
	"github.com/noah-isme/intern-portal-api/internal/repository"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
)

type logbookStore interface {
	Create(ctx context.Context, lb *models.Logbook) error
	FindByID(ctx context.Context, id string) (*models.Logbook, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.Logbook, int, error)
	ListByIntern(ctx context.Context, internID string) ([]models.Logbook, error)
	Attachment(ctx context.Context, id string) (*models.Attachment, error)
	Grade(ctx context.Context, id, grade string, feedback *string, adminID string, at time.Time) (*models.Logbook, error)
}

// LogbookService runs weekly logbook submission and grading.
type LogbookService struct {
	repo      logbookStore
	interns   internLookup
	calendar  WeekCalendar
	policy    AttachmentPolicy
	notifier  workflowNotifier
	dashboard statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	paging    PagingConfig
	now       Clock
}

// NewLogbookService constructs a LogbookService.
func NewLogbookService(repo logbookStore, interns internLookup, calendar WeekCalendar, policy AttachmentPolicy, notifier workflowNotifier, dashboard statsInvalidator, validate *validator.Validate, logger *zap.Logger, paging PagingConfig) *LogbookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &LogbookService{repo: repo, interns: interns, calendar: calendar, policy: policy, notifier: notifier, dashboard: dashboard, validator: validate, logger: logger, paging: paging, now: systemClock}
}

// Submit stores the intern's report for one ISO week and notifies admins.
func (s *LogbookService) Submit(ctx context.Context, principal models.Session, req dto.SubmitLogbookRequest) (*models.Logbook, error) {
	if err := requireIntern(principal); err != nil {
		return nil, err
	}
	req.Week = strings.TrimSpace(req.Week)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid logbook payload")
	}
	now := s.now()
	week, err := s.calendar.Resolve(req.Week, now)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Check(req.Attachment); err != nil {
		return nil, err
	}

	lb := &models.Logbook{
		InternID:    principal.PrincipalID,
		InternName:  principalName(principal),
		Week:        week.String(),
		ISOYear:     week.Year,
		ISOWeek:     week.Week,
		Activities:  strings.TrimSpace(req.Activities),
		Challenges:  optional(req.Challenges),
		Learnings:   optional(req.Learnings),
		SubmittedAt: now,
		Attachment:  req.Attachment,
	}
	if err := s.repo.Create(ctx, lb); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Wrap(err, appErrors.ErrDuplicateSubmission.Code, appErrors.ErrDuplicateSubmission.Status,
				fmt.Sprintf("a logbook for week %s has already been submitted", week))
		}
		return nil, appErrors.Internal(err, "failed to submit logbook")
	}
	lb.Attachment = nil

	afterCommit(ctx, s.dashboard, func(bg context.Context) {
		s.notifier.NotifyAdmins(bg, Notice{
			SenderID: &principal.PrincipalID,
			Message:  fmt.Sprintf("%s submitted the logbook for week %s", lb.InternName, lb.Week),
			Section:  models.SectionLogbooks,
			EntityID: lb.ID,
			Subject:  "New logbook submission",
			Heading:  "A logbook is waiting to be graded",
		})
	})
	return lb, nil
}

// List returns logbooks. Interns only see their own.
func (s *LogbookService) List(ctx context.Context, principal models.Session, status string, page, limit int) ([]models.Logbook, *models.Pagination, error) {
	if status != "" && status != string(models.LogbookPending) && status != string(models.LogbookGraded) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown logbook status")
	}
	filter := ownerFilter(principal, status, s.paging.request(page, limit))
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list logbooks")
	}
	return rows, models.NewPagination(filter.Page, total), nil
}

// Get returns one logbook.
func (s *LogbookService) Get(ctx context.Context, principal models.Session, id string) (*models.Logbook, error) {
	lb, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "logbook not found", "failed to load logbook")
	}
	if !canView(principal, lb.InternID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "logbook not found")
	}
	return lb, nil
}

// Attachment returns the file attached to a logbook.
func (s *LogbookService) Attachment(ctx context.Context, principal models.Session, id string) (*models.Attachment, error) {
	if _, err := s.Get(ctx, principal, id); err != nil {
		return nil, err
	}
	file, err := s.repo.Attachment(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "attachment not found", "failed to load attachment")
	}
	return file, nil
}

// Grade grades a pending logbook and notifies its author.
func (s *LogbookService) Grade(ctx context.Context, admin models.Session, id string, req dto.GradeLogbookRequest) (*models.Logbook, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	req.Grade = strings.ToUpper(strings.TrimSpace(req.Grade))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid grade payload")
	}
	lb, err := s.repo.Grade(ctx, id, req.Grade, optional(req.Feedback), admin.PrincipalID, s.now())
	if err != nil {
		return nil, mapStoreError(err, "logbook not found", "failed to grade logbook")
	}

	afterCommit(ctx, s.dashboard, func(bg context.Context) {
		s.notifier.NotifyIntern(bg, submitter(bg, s.interns, s.logger, lb.InternID, lb.InternName), Notice{
			SenderID: &admin.PrincipalID,
			Message:  fmt.Sprintf("Your logbook for week %s was graded %s", lb.Week, req.Grade),
			Section:  models.SectionLogbooks,
			EntityID: lb.ID,
			Subject:  "Your logbook has been graded",
			Heading:  "Logbook graded",
		})
	})
	return lb, nil
}

// Export renders every logbook of one intern as CSV or PDF.
func (s *LogbookService) Export(ctx context.Context, admin models.Session, internID, format string) (*ExportFile, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	intern, err := s.interns.FindByID(ctx, internID)
	if err != nil {
		return nil, mapStoreError(err, "intern not found", "failed to load intern")
	}
	logbooks, err := s.repo.ListByIntern(ctx, internID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load logbooks")
	}
	return renderExport(format, "logbooks-"+intern.MatricNumber, logbookTable(intern, logbooks))
}

func principalName(principal models.Session) string {
	return strings.TrimSpace(principal.FirstName + " " + principal.LastName)
}
