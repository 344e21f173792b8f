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

type complaintService interface {
	Submit(ctx context.Context, principal models.Session, req dto.SubmitComplaintRequest) (*models.Complaint, error)
	List(ctx context.Context, principal models.Session, status string, page, limit int) ([]models.Complaint, *models.Pagination, error)
	Get(ctx context.Context, principal models.Session, id string) (*models.Complaint, error)
	Review(ctx context.Context, admin models.Session, id string, req dto.ReviewComplaintRequest) (*models.Complaint, error)
}

// ComplaintHandler serves complaints and suggestions.
type ComplaintHandler struct {
	service complaintService
}

// NewComplaintHandler constructs the handler.
func NewComplaintHandler(svc complaintService) *ComplaintHandler {
	return &ComplaintHandler{service: svc}
}

// Submit godoc
// @Summary Raise a complaint or suggestion
// @Tags Complaints
// @Accept json
// @Produce json
// @Param payload body dto.SubmitComplaintRequest true "Complaint"
// @Success 201 {object} response.Envelope
// @Router /complaints [post]
func (h *ComplaintHandler) Submit(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.SubmitComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid complaint payload"))
		return
	}
	complaint, err := h.service.Submit(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "complaint submitted", complaint)
}

// List godoc
// @Summary List complaints
// @Tags Complaints
// @Produce json
// @Param status query string false "pending, resolved or dismissed"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /complaints [get]
func (h *ComplaintHandler) List(c *gin.Context) {
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
	response.Page(c, "complaints", rows, pagination)
}

// Get godoc
// @Summary Get a complaint
// @Tags Complaints
// @Produce json
// @Param id path string true "Complaint ID"
// @Success 200 {object} response.Envelope
// @Router /complaints/{id} [get]
func (h *ComplaintHandler) Get(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	complaint, err := h.service.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "complaint", complaint)
}

// Review godoc
// @Summary Resolve or dismiss a complaint
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path string true "Complaint ID"
// @Param payload body dto.ReviewComplaintRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /complaints/{id}/review [post]
func (h *ComplaintHandler) Review(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.ReviewComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}
	complaint, err := h.service.Review(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "complaint reviewed", complaint)
}
