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
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
	"github.com/noah-isme/intern-portal-api/pkg/storage"
)

const projectLinkKind = "project"

type projectStore interface {
	Create(ctx context.Context, p *models.ProjectUpload) error
	FindByID(ctx context.Context, id string) (*models.ProjectUpload, error)
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.ProjectUpload, int, error)
	File(ctx context.Context, id string) (*models.Attachment, error)
	Delete(ctx context.Context, id string) error
}

type linkSigner interface {
	Sign(kind, id string) (string, time.Time, error)
	Verify(token string) (kind, id string, err error)
}

// ProjectService handles project file uploads and downloads.
type ProjectService struct {
	repo      projectStore
	signer    linkSigner
	linkBase  string
	policy    AttachmentPolicy
	notifier  workflowNotifier
	dashboard statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	paging    PagingConfig
	now       Clock
}

// NewProjectService constructs a ProjectService. linkBase prefixes signed
// download tokens, e.g. https://portal.example.com/api/v1/files/.
func NewProjectService(repo projectStore, signer linkSigner, linkBase string, policy AttachmentPolicy, notifier workflowNotifier, dashboard statsInvalidator, validate *validator.Validate, logger *zap.Logger, paging PagingConfig) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &ProjectService{repo: repo, signer: signer, linkBase: linkBase, policy: policy, notifier: notifier, dashboard: dashboard, validator: validate, logger: logger, paging: paging, now: systemClock}
}

// Upload stores a project file and notifies admins.
func (s *ProjectService) Upload(ctx context.Context, principal models.Session, req dto.UploadProjectRequest) (*models.ProjectUpload, error) {
	if err := requireIntern(principal); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid project upload")
	}
	if err := s.policy.Check(req.File); err != nil {
		return nil, err
	}
	project := &models.ProjectUpload{
		InternID:    principal.PrincipalID,
		InternName:  principalName(principal),
		Title:       strings.TrimSpace(req.Title),
		Description: optional(req.Description),
		SubmittedAt: s.now(),
		File:        req.File,
	}
	if err := s.repo.Create(ctx, project); err != nil {
		return nil, appErrors.Internal(err, "failed to upload project")
	}
	project.File = nil

	afterCommit(ctx, s.dashboard, func(bg context.Context) {
		s.notifier.NotifyAdmins(bg, Notice{
			SenderID: &principal.PrincipalID,
			Message:  fmt.Sprintf("%s uploaded the project \"%s\"", project.InternName, project.Title),
			Section:  models.SectionProjects,
			EntityID: project.ID,
			Subject:  "New project upload",
			Heading:  "A project file was uploaded",
		})
	})
	return project, nil
}

// List returns project uploads. Interns only see their own.
func (s *ProjectService) List(ctx context.Context, principal models.Session, page, limit int) ([]models.ProjectUpload, *models.Pagination, error) {
	filter := ownerFilter(principal, "", s.paging.request(page, limit))
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list projects")
	}
	return rows, models.NewPagination(filter.Page, total), nil
}

// Download returns the project file.
func (s *ProjectService) Download(ctx context.Context, principal models.Session, id string) (*models.Attachment, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "project not found", "failed to load project")
	}
	if !canView(principal, project.InternID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
	}
	return s.file(ctx, id)
}

// Delete removes a project upload permanently.
func (s *ProjectService) Delete(ctx context.Context, admin models.Session, id string) error {
	if err := requireAdmin(admin); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapStoreError(err, "project not found", "failed to delete project")
	}
	s.logger.Info("project deleted", zap.String("project_id", id), zap.String("admin_id", admin.PrincipalID))
	afterCommit(ctx, s.dashboard, nil)
	return nil
}

// Link mints a time-limited download URL for a project file.
func (s *ProjectService) Link(ctx context.Context, admin models.Session, id string) (*dto.DownloadLinkResponse, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, mapStoreError(err, "project not found", "failed to load project")
	}
	token, expiresAt, err := s.signer.Sign(projectLinkKind, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to sign download link")
	}
	return &dto.DownloadLinkResponse{URL: s.linkBase + token, ExpiresAt: expiresAt}, nil
}

// ResolveLink returns the file a signed token points at.
func (s *ProjectService) ResolveLink(ctx context.Context, token string) (*models.Attachment, error) {
	kind, id, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, storage.ErrLinkExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link has expired")
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "download link is invalid")
	}
	if kind != projectLinkKind {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "download link is invalid")
	}
	return s.file(ctx, id)
}

func (s *ProjectService) file(ctx context.Context, id string) (*models.Attachment, error) {
	file, err := s.repo.File(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "project file not found", "failed to load project file")
	}
	return file, nil
}
