package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-portal-api/internal/dto"
	"github.com/noah-isme/intern-portal-api/internal/models"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
	"github.com/noah-isme/intern-portal-api/pkg/mail"
)

type messageStore interface {
	Broadcast(ctx context.Context, msg *models.Message, tmpl models.Notification) ([]models.Recipient, error)
	List(ctx context.Context, page models.PageRequest) ([]models.Message, int, error)
	File(ctx context.Context, id string) (*models.Attachment, error)
}

// MessageService broadcasts admin messages to every approved intern.
type MessageService struct {
	repo      messageStore
	policy    AttachmentPolicy
	notifier  workflowNotifier
	metrics   *MetricsService
	baseURL   string
	validator *validator.Validate
	logger    *zap.Logger
	paging    PagingConfig
	now       Clock
}

// NewMessageService constructs a MessageService.
func NewMessageService(repo messageStore, policy AttachmentPolicy, notifier workflowNotifier, metrics *MetricsService, baseURL string, validate *validator.Validate, logger *zap.Logger, paging PagingConfig) *MessageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &MessageService{repo: repo, policy: policy, notifier: notifier, metrics: metrics, baseURL: baseURL, validator: validate, logger: logger, paging: paging, now: systemClock}
}

// Broadcast stores the message and its notifications atomically, then
// emails the recipients best-effort.
func (s *MessageService) Broadcast(ctx context.Context, admin models.Session, req dto.BroadcastMessageRequest) (*dto.BroadcastResult, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid message payload")
	}
	if err := s.policy.Check(req.File); err != nil {
		return nil, err
	}

	msg := &models.Message{
		Title:      strings.TrimSpace(req.Title),
		Body:       strings.TrimSpace(req.Body),
		CreatedBy:  admin.PrincipalID,
		AuthorName: principalName(admin),
		CreatedAt:  s.now(),
		File:       req.File,
	}
	tmpl := models.Notification{Message: fmt.Sprintf("New message from %s: %s", msg.AuthorName, msg.Title)}
	recipients, err := s.repo.Broadcast(ctx, msg, tmpl)
	if err != nil {
		s.metrics.RecordNotification(models.SectionMessages, OutcomeFailed)
		return nil, appErrors.Internal(err, "failed to broadcast message")
	}
	msg.File = nil
	s.metrics.AddNotifications(models.SectionMessages, OutcomePersisted, len(recipients))
	s.logger.Info("message broadcast", zap.String("message_id", msg.ID), zap.Int("recipients", len(recipients)))

	afterCommit(ctx, nil, func(bg context.Context) {
		link := s.baseURL + models.DashboardLink(models.NotifyUser, models.SectionMessages, msg.ID)
		for _, recipient := range recipients {
			_ = s.notifier.SendEmail(bg, recipient, mail.TemplateNotification, mail.TemplateData{
				Subject: msg.Title,
				Heading: msg.Title,
				Body:    msg.Body,
				Link:    link,
			})
		}
	})
	return &dto.BroadcastResult{Message: *msg, Recipients: len(recipients)}, nil
}

// List returns broadcast messages, newest first.
func (s *MessageService) List(ctx context.Context, page, limit int) ([]models.Message, *models.Pagination, error) {
	req := s.paging.request(page, limit)
	rows, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list messages")
	}
	return rows, models.NewPagination(req, total), nil
}

// File returns the file attached to a message.
func (s *MessageService) File(ctx context.Context, id string) (*models.Attachment, error) {
	file, err := s.repo.File(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "message file not found", "failed to load message file")
	}
	return file, nil
}
