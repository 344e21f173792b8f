package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-portal-api/internal/dto"
	"github.com/noah-isme/intern-portal-api/internal/models"
	"github.com/noah-isme/intern-portal-api/pkg/response"
)

type projectService interface {
	Upload(ctx context.Context, principal models.Session, req dto.UploadProjectRequest) (*models.ProjectUpload, error)
	List(ctx context.Context, principal models.Session, page, limit int) ([]models.ProjectUpload, *models.Pagination, error)
	Download(ctx context.Context, principal models.Session, id string) (*models.Attachment, error)
	Delete(ctx context.Context, admin models.Session, id string) error
	Link(ctx context.Context, admin models.Session, id string) (*dto.DownloadLinkResponse, error)
	ResolveLink(ctx context.Context, token string) (*models.Attachment, error)
}

// ProjectHandler serves project file hand-ins.
type ProjectHandler struct {
	service   projectService
	maxUpload int64
}

// NewProjectHandler constructs the handler.
func NewProjectHandler(svc projectService, maxUpload int64) *ProjectHandler {
	return &ProjectHandler{service: svc, maxUpload: maxUpload}
}

// Upload godoc
// @Summary Upload a project file
// @Tags Projects
// @Accept mpfd
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param file formData file true "Project file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /projects [post]
func (h *ProjectHandler) Upload(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.UploadProjectRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	file, err := formFile(c, "file", h.maxUpload)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.File = file

	upload, err := h.service.Upload(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "project uploaded", upload)
}

// List godoc
// @Summary List project uploads
// @Tags Projects
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	page, limit := pageParams(c)
	rows, pagination, err := h.service.List(c.Request.Context(), session, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, "projects", rows, pagination)
}

// Download godoc
// @Summary Download a project file
// @Tags Projects
// @Produce octet-stream
// @Param id path string true "Project ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /projects/{id}/download [get]
func (h *ProjectHandler) Download(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	file, err := h.service.Download(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	sendAttachment(c, file, true)
}

// Delete godoc
// @Summary Delete a project upload
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), session, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "project deleted", nil)
}

// Link godoc
// @Summary Mint a signed download link
// @Tags Projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} response.Envelope
// @Router /projects/{id}/link [get]
func (h *ProjectHandler) Link(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	link, err := h.service.Link(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "download link", link)
}

// Resolve godoc
// @Summary Download through a signed link
// @Tags Projects
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /files/{token} [get]
func (h *ProjectHandler) Resolve(c *gin.Context) {
	file, err := h.service.ResolveLink(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	sendAttachment(c, file, true)
}
