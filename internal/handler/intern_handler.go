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

type internService interface {
	Register(ctx context.Context, req dto.RegisterInternRequest) (*models.Intern, error)
	List(ctx context.Context, q service.InternListQuery) ([]models.Intern, *models.Pagination, error)
	Get(ctx context.Context, principal models.Session, id string) (*models.Intern, error)
	ProfilePicture(ctx context.Context, principal models.Session, id string) (*models.Attachment, error)
}

type approvalService interface {
	Approve(ctx context.Context, admin models.Session, internID string) (*models.Intern, error)
	Reject(ctx context.Context, admin models.Session, internID string, req dto.RejectInternRequest) (*models.Intern, error)
}

// InternHandler serves registration, the intern directory and approvals.
type InternHandler struct {
	interns   internService
	approvals approvalService
	maxUpload int64
}

// NewInternHandler constructs the handler.
func NewInternHandler(interns internService, approvals approvalService, maxUpload int64) *InternHandler {
	return &InternHandler{interns: interns, approvals: approvals, maxUpload: maxUpload}
}

// Register godoc
// @Summary Self-register as an intern
// @Description Accepts JSON or multipart form data with an optional profile_picture file. The account stays pending until an admin approves it.
// @Tags Interns
// @Accept json,mpfd
// @Produce json
// @Param payload body dto.RegisterInternRequest true "Registration"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /auth/register [post]
func (h *InternHandler) Register(c *gin.Context) {
	var req dto.RegisterInternRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	picture, err := formFile(c, "profile_picture", h.maxUpload)
	if err != nil {
		response.Error(c, err)
		return
	}
	req.Picture = picture

	intern, err := h.interns.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "registration received, awaiting approval", intern)
}

// List godoc
// @Summary List interns
// @Tags Interns
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Param search query string false "Name, email or matric number"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /interns [get]
func (h *InternHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	rows, pagination, err := h.interns.List(c.Request.Context(), service.InternListQuery{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, "interns", rows, pagination)
}

// Get godoc
// @Summary Get an intern
// @Tags Interns
// @Produce json
// @Param id path string true "Intern ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /interns/{id} [get]
func (h *InternHandler) Get(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	intern, err := h.interns.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "intern", intern)
}

// Picture godoc
// @Summary Intern profile picture
// @Tags Interns
// @Produce octet-stream
// @Param id path string true "Intern ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /interns/{id}/picture [get]
func (h *InternHandler) Picture(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	picture, err := h.interns.ProfilePicture(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	sendAttachment(c, picture, false)
}

// Approve godoc
// @Summary Approve a pending intern
// @Tags Interns
// @Produce json
// @Param id path string true "Intern ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /interns/{id}/approve [post]
func (h *InternHandler) Approve(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	intern, err := h.approvals.Approve(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "intern approved", intern)
}

// Reject godoc
// @Summary Reject a pending intern
// @Description purge=true deletes the pending record instead of keeping it as rejected.
// @Tags Interns
// @Accept json
// @Produce json
// @Param id path string true "Intern ID"
// @Param payload body dto.RejectInternRequest false "Rejection"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /interns/{id}/reject [post]
func (h *InternHandler) Reject(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.RejectInternRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rejection payload"))
			return
		}
	}
	intern, err := h.approvals.Reject(c.Request.Context(), session, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "intern rejected", intern)
}
