package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-portal-api/internal/dto"
	"github.com/noah-isme/intern-portal-api/internal/models"
	"github.com/noah-isme/intern-portal-api/pkg/response"
)

type messageService interface {
	Broadcast(ctx context.Context, admin models.Session, req dto.BroadcastMessageRequest) (*dto.BroadcastResult, error)
	List(ctx context.Context, page, limit int) ([]models.Message, *models.Pagination, error)
	File(ctx context.Context, id string) (*models.Attachment, error)
}

// MessageHandler serves admin broadcasts.
type MessageHandler struct {
	service   messageService
	maxUpload int64
}

// NewMessageHandler constructs the handler.
func NewMessageHandler(svc messageService, maxUpload int64) *MessageHandler {
	return &MessageHandler{service: svc, maxUpload: maxUpload}
}

// Broadcast godoc
// @Summary Broadcast a message to all interns
// @Tags Messages
// @Accept json,mpfd
// @Produce json
// @Param payload body dto.BroadcastMessageRequest true "Message"
// @Success 201 {object} response.Envelope
// @Router /messages [post]
func (h *MessageHandler) Broadcast(c *gin.Context) {
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	var req dto.BroadcastMessageRequest
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

	result, err := h.service.Broadcast(c.Request.Context(), session, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "message broadcast", result)
}

// List godoc
// @Summary List messages
// @Tags Messages
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /messages [get]
func (h *MessageHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	rows, pagination, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, "messages", rows, pagination)
}

// File godoc
// @Summary Download a message file
// @Tags Messages
// @Produce octet-stream
// @Param id path string true "Message ID"
// @Success 200 {file} binary
// @Router /messages/{id}/file [get]
func (h *MessageHandler) File(c *gin.Context) {
	file, err := h.service.File(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	sendAttachment(c, file, true)
}
