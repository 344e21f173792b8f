package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/intern-portal-api/internal/models"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
	"github.com/noah-isme/intern-portal-api/pkg/mail"
)

// workflowNotifier is the part of the fan-out engine workflows depend on.
type workflowNotifier interface {
	NotifyAdmins(ctx context.Context, notice Notice) Report
	NotifyIntern(ctx context.Context, recipient models.Recipient, notice Notice) Report
	SendEmail(ctx context.Context, recipient models.Recipient, template string, data mail.TemplateData) error
}

type statsInvalidator interface {
	Invalidate(ctx context.Context)
}

// afterCommit runs the best-effort tail of a workflow on a context that
// outlives the request.
func afterCommit(ctx context.Context, dashboard statsInvalidator, fn func(context.Context)) {
	bg, cancel := detach(ctx)
	defer cancel()
	if dashboard != nil {
		dashboard.Invalidate(bg)
	}
	if fn != nil {
		fn(bg)
	}
}

func requireAdmin(principal models.Session) error {
	if !principal.Role.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "admin access required")
	}
	return nil
}

func requireIntern(principal models.Session) error {
	if principal.Role != models.RoleIntern {
		return appErrors.Clone(appErrors.ErrForbidden, "intern access required")
	}
	return nil
}

// ownerFilter scopes interns to their own rows while admins see everything.
func ownerFilter(principal models.Session, status string, page models.PageRequest) models.SubmissionFilter {
	filter := models.SubmissionFilter{Status: status, Page: page}
	if !principal.Role.IsAdmin() {
		id := principal.PrincipalID
		filter.InternID = &id
	}
	return filter
}

// canView reports whether principal may read a row owned by ownerID.
func canView(principal models.Session, ownerID string) bool {
	return principal.Role.IsAdmin() || principal.PrincipalID == ownerID
}

type internLookup interface {
	FindByID(ctx context.Context, id string) (*models.Intern, error)
}

// submitter resolves the author of a submission. When the lookup fails the
// in-app notification still goes out, only the email is lost.
func submitter(ctx context.Context, interns internLookup, logger *zap.Logger, internID, name string) models.Recipient {
	intern, err := interns.FindByID(ctx, internID)
	if err != nil {
		logger.Warn("submitter lookup failed", zap.String("intern_id", internID), zap.Error(err))
		return models.Recipient{Kind: models.RecipientIntern, ID: internID, Name: name}
	}
	return models.InternRecipient(*intern)
}
