package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-portal-api/internal/models"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
	"github.com/noah-isme/intern-portal-api/pkg/response"
)

type dashboardService interface {
	Stats(ctx context.Context, principal models.Session) (*models.DashboardStats, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats godoc
// @Summary Dashboard counters
// @Description Admins get portal-wide counters, interns their own.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	session, ok := sessionFromContext(c)
	if !ok {
		return
	}
	stats, err := h.service.Stats(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "dashboard", stats)
}
