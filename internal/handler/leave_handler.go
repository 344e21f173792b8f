package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-portal-api/internal/dto"
	"github.com/noah-isme/intern-portal-api/internal/models"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
	"github.com/noah-isme/intern-portal-api/pkg/response"
)

type leaveService interface {
	Submit(ctx context.Context, principal models.Session, req dto.SubmitLeaveRequest) (*models.LeaveRequest, error)
	List(ctx context.Context, principal models.Session, status string, page, limit int) ([]models.LeaveRequest, *models.Pagination, error)
	Get(ctx context.Context, principal models.Session, id string) (*models.LeaveRequest, error)
	Attachment(ctx context.Context, principal models.Session, id string) (*models.Attachment, error)
	Review(ctx context.Context, admin models.Session, id string, req dto.ReviewLeaveRequest) (*models.LeaveRequest, error)
}

// LeaveHandler serves leave requests.
type LeaveHandler struct {
	service   leaveService
	maxUpload int64
}

// NewLeaveHandler constructs the handler.
func NewLeaveHandler(svc leaveService, maxUpload int64) *LeaveHandler {
	return &LeaveHandler{service: svc, maxUpload: maxUpload}
}

// Submit godoc
// @Summary Request leave
// @Description Dates are inclusive (YYYY-MM-DD). Supporting documents may be sent as a multipart attachment.
// @Tags Leave
// @Accept json,mpfd
// @Produce json
// @Param payload body dto.SubmitLeaveRequest true "Leave request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /leave-requests [post]
func (h *LeaveHandler) Submit(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.SubmitLeaveRequest
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

	leave, err := h.service.Submit(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "leave request submitted", leave)
}

// List godoc
// @Summary List leave requests
// @Tags Leave
// @Produce json
// @Param status query string false "Pending, approved or rejected"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /leave-requests [get]
func (h *LeaveHandler) List(c *gin.Context) {
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
	response.Page(c, "leave requests", rows, pagination)
}

// Get godoc
// @Summary Get a leave request
// @Tags Leave
// @Produce json
// @Param id path string true "Leave request ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /leave-requests/{id} [get]
func (h *LeaveHandler) Get(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	leave, err := h.service.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "leave request", leave)
}

// Attachment godoc
// @Summary Download a leave attachment
// @Tags Leave
// @Produce octet-stream
// @Param id path string true "Leave request ID"
// @Success 200 {file} binary
// @Router /leave-requests/{id}/attachment [get]
func (h *LeaveHandler) Attachment(c *gin.Context) {
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

// Review godoc
// @Summary Approve or reject a leave request
// @Tags Leave
// @Accept json
// @Produce json
// @Param id path string true "Leave request ID"
// @Param payload body dto.ReviewLeaveRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /leave-requests/{id}/review [post]
func (h *LeaveHandler) Review(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.ReviewLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}
	leave, err := h.service.Review(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "leave request reviewed", leave)
}
