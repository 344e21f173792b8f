package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/intern-portal-api/internal/models"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
	"github.com/noah-isme/intern-portal-api/pkg/mail"
)

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForRecipient(ctx context.Context, recipientID string, role models.NotificationRole, page models.PageRequest) ([]models.Notification, int, error)
	CountUnread(ctx context.Context, recipientID string, role models.NotificationRole) (int, error)
	MarkRead(ctx context.Context, id, recipientID string, role models.NotificationRole) error
	MarkAllRead(ctx context.Context, recipientID string, role models.NotificationRole) (int64, error)
}

type adminDirectory interface {
	ListAll(ctx context.Context) ([]models.Admin, error)
}

// EmailDispatcher hands an email to the outbound transport.
type EmailDispatcher interface {
	Dispatch(ctx context.Context, msg mail.Message) error
}

// Delivery stages reported in a failure.
const (
	StagePersist = "persist"
	StageEmail   = "email"
)

// Notice describes one event to fan out.
type Notice struct {
	SenderID *string
	Message  string
	Section  string
	EntityID string
	// Subject and Heading shape the email. An empty subject skips email.
	Subject string
	Heading string
}

// DeliveryFailure records one recipient that was not fully notified.
type DeliveryFailure struct {
	Recipient models.Recipient
	Stage     string
	Err       error
}

// Report summarises a fan-out. It never fails the caller.
type Report struct {
	Persisted []models.Notification
	Failures  []DeliveryFailure
}

// NotificationConfig carries fan-out settings.
type NotificationConfig struct {
	PublicBaseURL string
	DefaultLimit  int
	MaxLimit      int
}

// NotificationService persists in-app notifications and sends the matching
// emails. Every recipient is handled in isolation.
type NotificationService struct {
	store   notificationStore
	admins  adminDirectory
	mailer  EmailDispatcher
	metrics *MetricsService
	logger  *zap.Logger
	config  NotificationConfig
	now     Clock
}

// NewNotificationService constructs the fan-out engine.
func NewNotificationService(store notificationStore, admins adminDirectory, mailer EmailDispatcher, metrics *MetricsService, logger *zap.Logger, cfg NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	return &NotificationService{store: store, admins: admins, mailer: mailer, metrics: metrics, logger: logger, config: cfg, now: systemClock}
}

// Notify persists one notification per recipient and emails each of them.
// A failure for one recipient never stops the others.
func (s *NotificationService) Notify(ctx context.Context, recipients []models.Recipient, notice Notice) Report {
	var report Report
	for _, recipient := range recipients {
		n := models.Notification{
			RecipientID:   recipient.ID,
			RecipientRole: recipient.Role(),
			SenderID:      notice.SenderID,
			Message:       notice.Message,
			Section:       notice.Section,
			EntityID:      optional(notice.EntityID),
			Link:          models.DashboardLink(recipient.Role(), notice.Section, notice.EntityID),
			CreatedAt:     s.now(),
		}
		if err := s.store.Create(ctx, &n); err != nil {
			s.metrics.RecordNotification(notice.Section, OutcomeFailed)
			s.logger.Error("notification persist failed",
				zap.String("recipient_id", recipient.ID),
				zap.String("recipient_role", string(recipient.Role())),
				zap.String("section", notice.Section),
				zap.String("entity_id", notice.EntityID),
				zap.Error(err),
			)
			report.Failures = append(report.Failures, DeliveryFailure{Recipient: recipient, Stage: StagePersist, Err: err})
		} else {
			s.metrics.RecordNotification(notice.Section, OutcomePersisted)
			report.Persisted = append(report.Persisted, n)
		}

		if notice.Subject == "" {
			continue
		}
		data := mail.TemplateData{
			Subject: notice.Subject,
			Heading: notice.Heading,
			Body:    notice.Message,
			Link:    s.config.PublicBaseURL + n.Link,
		}
		if err := s.SendEmail(ctx, recipient, mail.TemplateNotification, data); err != nil {
			report.Failures = append(report.Failures, DeliveryFailure{Recipient: recipient, Stage: StageEmail, Err: err})
		}
	}
	return report
}

// NotifyAdmins fans the notice out to every admin and superadmin.
func (s *NotificationService) NotifyAdmins(ctx context.Context, notice Notice) Report {
	admins, err := s.admins.ListAll(ctx)
	if err != nil {
		s.logger.Error("load admin recipients failed", zap.String("section", notice.Section), zap.String("entity_id", notice.EntityID), zap.Error(err))
		return Report{}
	}
	recipients := make([]models.Recipient, 0, len(admins))
	for _, admin := range admins {
		recipients = append(recipients, models.AdminRecipient(admin))
	}
	return s.Notify(ctx, recipients, notice)
}

// NotifyIntern notifies a single intern.
func (s *NotificationService) NotifyIntern(ctx context.Context, recipient models.Recipient, notice Notice) Report {
	return s.Notify(ctx, []models.Recipient{recipient}, notice)
}

// SendEmail renders a template for one recipient and dispatches it. The
// error is logged before it is returned so callers may drop it.
func (s *NotificationService) SendEmail(ctx context.Context, recipient models.Recipient, template string, data mail.TemplateData) error {
	if recipient.Email == "" || s.mailer == nil {
		return nil
	}
	data.RecipientName = recipient.Name
	html, err := mail.Render(template, data)
	if err != nil {
		s.logger.Error("email render failed", zap.String("template", template), zap.Error(err))
		return err
	}
	msg := mail.Message{To: recipient.Email, ToName: recipient.Name, Subject: data.Subject, HTML: html}
	if err := s.mailer.Dispatch(ctx, msg); err != nil {
		s.logger.Warn("email dispatch failed",
			zap.String("recipient_id", recipient.ID),
			zap.String("to", recipient.Email),
			zap.String("subject", data.Subject),
			zap.String("template", template),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// List returns the caller's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, principal models.Session, page, limit int) ([]models.Notification, *models.Pagination, error) {
	req := models.NewPageRequest(page, limit, s.config.DefaultLimit, s.config.MaxLimit)
	rows, total, err := s.store.ListForRecipient(ctx, principal.PrincipalID, inboxRole(principal.Role), req)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to load notifications")
	}
	return rows, models.NewPagination(req, total), nil
}

// UnreadCount returns the caller's unread notification count.
func (s *NotificationService) UnreadCount(ctx context.Context, principal models.Session) (int, error) {
	count, err := s.store.CountUnread(ctx, principal.PrincipalID, inboxRole(principal.Role))
	if err != nil {
		return 0, appErrors.Internal(err, "failed to count notifications")
	}
	return count, nil
}

// MarkRead marks one of the caller's notifications as read. Notifications
// of other recipients are reported as missing.
func (s *NotificationService) MarkRead(ctx context.Context, principal models.Session, id string) error {
	err := s.store.MarkRead(ctx, id, principal.PrincipalID, inboxRole(principal.Role))
	if isMissing(err) {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	if err != nil {
		return appErrors.Internal(err, "failed to update notification")
	}
	return nil
}

// MarkAllRead marks every unread notification of the caller as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, principal models.Session) (int64, error) {
	updated, err := s.store.MarkAllRead(ctx, principal.PrincipalID, inboxRole(principal.Role))
	if err != nil {
		return 0, appErrors.Internal(err, "failed to update notifications")
	}
	return updated, nil
}

func inboxRole(role models.Role) models.NotificationRole {
	if role.IsAdmin() {
		return models.NotifyAdmin
	}
	return models.NotifyUser
}

// detach keeps request values but drops cancellation so best-effort work
// survives a disconnected client.
func detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
}
