package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/intern-portal-api/internal/dto"
	"github.com/noah-isme/intern-portal-api/internal/models"
	"github.com/noah-isme/intern-portal-api/internal/repository"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
)

type adminStore interface {
	ListAll(ctx context.Context) ([]models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) error
}

// AdminService manages administrator accounts.
type AdminService struct {
	repo      adminStore
	hasher    PasswordHasher
	validator *validator.Validate
	logger    *zap.Logger
	now       Clock
}

// NewAdminService constructs an AdminService.
func NewAdminService(repo adminStore, hasher PasswordHasher, validate *validator.Validate, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &AdminService{repo: repo, hasher: hasher, validator: validate, logger: logger, now: systemClock}
}

// Create registers a new admin. Only a superadmin may do this.
func (s *AdminService) Create(ctx context.Context, actor models.Session, req dto.RegisterAdminRequest) (*models.Admin, error) {
	if actor.Role != models.RoleSuperAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only a superadmin can register admins")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid admin payload")
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}
	admin := &models.Admin{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         req.Role,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "email is already registered")
		}
		return nil, appErrors.Internal(err, "failed to create admin")
	}
	s.logger.Info("admin created", zap.String("admin_id", admin.ID), zap.String("created_by", actor.PrincipalID))
	return admin, nil
}

// List returns every admin.
func (s *AdminService) List(ctx context.Context) ([]models.Admin, error) {
	admins, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list admins")
	}
	return admins, nil
}
