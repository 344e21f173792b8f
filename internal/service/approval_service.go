package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-portal-api/internal/dto"
	"github.com/noah-isme/intern-portal-api/internal/models"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
	"github.com/noah-isme/intern-portal-api/pkg/mail"
)

type internApprovalStore interface {
	Approve(ctx context.Context, id, adminID string, at time.Time) (*models.Intern, error)
	Reject(ctx context.Context, id, adminID string, reason *string, at time.Time, purge bool) (*models.Intern, error)
}

// BackgroundRunner runs work off the caller's goroutine and waits for it at
// shutdown.
type BackgroundRunner interface {
	Go(fn func(ctx context.Context))
}

// ApprovalService moves pending interns to approved or rejected. Each
// transition sends exactly one outcome email after the commit.
type ApprovalService struct {
	repo      internApprovalStore
	notifier  workflowNotifier
	dashboard statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	runner    BackgroundRunner
	now       Clock
}

// NewApprovalService constructs an ApprovalService. With a runner the
// outcome email is sent on it after the call returns; a nil runner sends
// before returning.
func NewApprovalService(repo internApprovalStore, notifier workflowNotifier, dashboard statsInvalidator, validate *validator.Validate, logger *zap.Logger, runner BackgroundRunner) *ApprovalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &ApprovalService{repo: repo, notifier: notifier, dashboard: dashboard, validator: validate, logger: logger, runner: runner, now: systemClock}
}

// Approve admits a pending intern.
func (s *ApprovalService) Approve(ctx context.Context, admin models.Session, internID string) (*models.Intern, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	intern, err := s.repo.Approve(ctx, internID, admin.PrincipalID, s.now())
	if err != nil {
		return nil, mapStoreError(err, "intern not found", "failed to approve intern")
	}
	s.logger.Info("intern approved", zap.String("intern_id", intern.ID), zap.String("admin_id", admin.PrincipalID))

	s.sendOutcome(ctx, *intern, mail.TemplateApproval, mail.TemplateData{
		Subject:     "Your internship portal account is approved",
		ActionLabel: "Sign in",
	})
	return intern, nil
}

// Reject declines a pending intern. With Purge set the record is deleted.
func (s *ApprovalService) Reject(ctx context.Context, admin models.Session, internID string, req dto.RejectInternRequest) (*models.Intern, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid rejection payload")
	}
	intern, err := s.repo.Reject(ctx, internID, admin.PrincipalID, optional(req.Reason), s.now(), req.Purge)
	if err != nil {
		return nil, mapStoreError(err, "intern not found", "failed to reject intern")
	}
	s.logger.Info("intern rejected", zap.String("intern_id", intern.ID), zap.String("admin_id", admin.PrincipalID), zap.Bool("purged", req.Purge))

	s.sendOutcome(ctx, *intern, mail.TemplateRejection, mail.TemplateData{
		Subject: "Your internship portal registration",
		Reason:  strings.TrimSpace(req.Reason),
	})
	return intern, nil
}

func (s *ApprovalService) sendOutcome(ctx context.Context, intern models.Intern, template string, data mail.TemplateData) {
	recipient := models.InternRecipient(intern)
	send := func() {
		afterCommit(ctx, s.dashboard, func(bg context.Context) {
			// SendEmail logs its own failure; the transition stands regardless.
			_ = s.notifier.SendEmail(bg, recipient, template, data)
		})
	}
	if s.runner != nil {
		s.runner.Go(func(context.Context) { send() })
		return
	}
	send()
}
