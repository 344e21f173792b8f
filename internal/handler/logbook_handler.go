package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-portal-api/internal/dto"
	"github.com/noah-isme/intern-portal-api/internal/models"
	"github.com/noah-isme/intern-portal-api/internal/service"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
	"github.com/noah-isme/intern-portal-api/pkg/response"
)

type logbookService interface {
	Submit(ctx context.Context, principal models.Session, req dto.SubmitLogbookRequest) (*models.Logbook, error)
	List(ctx context.Context, principal models.Session, status string, page, limit int) ([]models.Logbook, *models.Pagination, error)
	Get(ctx context.Context, principal models.Session, id string) (*models.Logbook, error)
	Attachment(ctx context.Context, principal models.Session, id string) (*models.Attachment, error)
	Grade(ctx context.Context, admin models.Session, id string, req dto.GradeLogbookRequest) (*models.Logbook, error)
	Export(ctx context.Context, admin models.Session, internID, format string) (*service.ExportFile, error)
}

// LogbookHandler serves weekly logbook reports.
type LogbookHandler struct {
	service   logbookService
	maxUpload int64
}

// NewLogbookHandler constructs the handler.
func NewLogbookHandler(svc logbookService, maxUpload int64) *LogbookHandler {
	return &LogbookHandler{service: svc, maxUpload: maxUpload}
}

// Submit godoc
// @Summary Submit a weekly logbook
// @Description week uses ISO notation (2026-W09). An optional attachment file may be sent as multipart.
// @Tags Logbooks
// @Accept json,mpfd
// @Produce json
// @Param payload body dto.SubmitLogbookRequest true "Logbook"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /logbooks [post]
func (h *LogbookHandler) Submit(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.SubmitLogbookRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	attachment, err := formFile(c, "attachment", h.maxUpload)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.Attachment = attachment

	logbook, err := h.service.Submit(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "logbook submitted", logbook)
}

// List godoc
// @Summary List logbooks
// @Description Admins see every logbook, interns only their own.
// @Tags Logbooks
// @Produce json
// @Param status query string false "pending or graded"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /logbooks [get]
func (h *LogbookHandler) List(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	page, limit := pageParams(c)
	rows, pagination, err := h.service.List(c.Request.Context(), session, c.Query("status"), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, "logbooks", rows, pagination)
}

// Get godoc
// @Summary Get a logbook
// @Tags Logbooks
// @Produce json
// @Param id path string true "Logbook ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /logbooks/{id} [get]
func (h *LogbookHandler) Get(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	logbook, err := h.service.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "logbook", logbook)
}

// Attachment godoc
// @Summary Download a logbook attachment
// @Tags Logbooks
// @Produce octet-stream
// @Param id path string true "Logbook ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /logbooks/{id}/attachment [get]
func (h *LogbookHandler) Attachment(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	attachment, err := h.service.Attachment(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	sendAttachment(c, attachment, true)
}

// Grade godoc
// @Summary Grade a logbook
// @Tags Logbooks
// @Accept json
// @Produce json
// @Param id path string true "Logbook ID"
// @Param payload body dto.GradeLogbookRequest true "Grade"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /logbooks/{id}/grade [post]
func (h *LogbookHandler) Grade(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.GradeLogbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade payload"))
		return
	}
	logbook, err := h.service.Grade(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "logbook graded", logbook)
}

// Export godoc
// @Summary Export an intern's logbooks
// @Tags Logbooks
// @Produce octet-stream
// @Param id path string true "Intern ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /interns/{id}/logbooks/export [get]
func (h *LogbookHandler) Export(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	file, err := h.service.Export(c.Request.Context(), session, c.Param("id"), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Binary(c, file.Filename, file.MimeType, file.Data, true)
}
