package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-portal-api/internal/dto"
	"github.com/noah-isme/intern-portal-api/internal/models"
	"github.com/noah-isme/intern-portal-api/internal/repository"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
)

type internStore interface {
	FindByID(ctx context.Context, id string) (*models.Intern, error)
	List(ctx context.Context, filter models.InternFilter) ([]models.Intern, int, error)
	Create(ctx context.Context, intern *models.Intern) error
	ProfilePicture(ctx context.Context, id string) (*models.Attachment, error)
}

// InternListQuery filters the intern directory.
type InternListQuery struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// InternService handles self-registration and the intern directory.
type InternService struct {
	repo      internStore
	hasher    PasswordHasher
	policy    AttachmentPolicy
	notifier  workflowNotifier
	dashboard statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	paging    PagingConfig
	now       Clock
}

// PagingConfig carries list defaults.
type PagingConfig struct {
	DefaultLimit int
	MaxLimit     int
}

func (p PagingConfig) request(page, limit int) models.PageRequest {
	return models.NewPageRequest(page, limit, p.DefaultLimit, p.MaxLimit)
}

// NewInternService constructs an InternService.
func NewInternService(repo internStore, hasher PasswordHasher, policy AttachmentPolicy, notifier workflowNotifier, dashboard statsInvalidator, validate *validator.Validate, logger *zap.Logger, paging PagingConfig) *InternService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &InternService{repo: repo, hasher: hasher, policy: policy, notifier: notifier, dashboard: dashboard, validator: validate, logger: logger, paging: paging, now: systemClock}
}

// Register creates a pending intern and tells every admin about it.
func (s *InternService) Register(ctx context.Context, req dto.RegisterInternRequest) (*models.Intern, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid registration payload")
	}
	if err := s.policy.Check(req.Picture); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}

	intern := &models.Intern{
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		MatricNumber:   strings.TrimSpace(req.MatricNumber),
		PasswordHash:   hash,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		PhoneNumber:    optional(req.PhoneNumber),
		Institution:    optional(req.Institution),
		Department:     optional(req.Department),
		ApprovalStatus: models.ApprovalPending,
		CreatedAt:      s.now(),
		ProfilePicture: req.Picture,
	}
	if err := s.repo.Create(ctx, intern); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "email or matric number is already registered")
		}
		return nil, appErrors.Internal(err, "failed to register intern")
	}
	s.logger.Info("intern registered", zap.String("intern_id", intern.ID))

	afterCommit(ctx, s.dashboard, func(bg context.Context) {
		s.notifier.NotifyAdmins(bg, Notice{
			SenderID: &intern.ID,
			Message:  fmt.Sprintf("New intern registration from %s (%s) is awaiting approval", intern.FullName(), intern.MatricNumber),
			Section:  models.SectionPendingUsers,
			EntityID: intern.ID,
			Subject:  "New intern registration",
			Heading:  "A new intern is awaiting approval",
		})
	})
	intern.ProfilePicture = nil
	return intern, nil
}

// List returns the intern directory without picture blobs.
func (s *InternService) List(ctx context.Context, q InternListQuery) ([]models.Intern, *models.Pagination, error) {
	filter := models.InternFilter{Search: strings.TrimSpace(q.Search), Page: s.paging.request(q.Page, q.Limit)}
	if q.Status != "" {
		status := models.ApprovalStatus(q.Status)
		if !status.Valid() {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown approval status")
		}
		filter.Status = &status
	}
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list interns")
	}
	return rows, models.NewPagination(filter.Page, total), nil
}

// Get returns one intern. Interns may only read themselves.
func (s *InternService) Get(ctx context.Context, principal models.Session, id string) (*models.Intern, error) {
	if !canView(principal, id) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot view another intern")
	}
	intern, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "intern not found", "failed to load intern")
	}
	return intern, nil
}

// ProfilePicture returns the stored picture of an intern.
func (s *InternService) ProfilePicture(ctx context.Context, principal models.Session, id string) (*models.Attachment, error) {
	if !canView(principal, id) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot view another intern")
	}
	picture, err := s.repo.ProfilePicture(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "profile picture not found", "failed to load profile picture")
	}
	return picture, nil
}
