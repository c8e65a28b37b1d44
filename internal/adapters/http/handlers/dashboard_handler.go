package handlers

import (
	"evapod/internal/adapters/http/middleware"
	"evapod/internal/core/services"
	"evapod/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
	logger           *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// GetStats returns the summary counters
// @Summary Dashboard stats
// @Description Counters scoped to the caller's place in the hierarchy. Every counter is present, zero when there is no data.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=services.DashboardStats}
// @Failure 401 {object} response.Response
// @Router /admin/dashboard-stats [get]
func (h *DashboardHandler) GetStats(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	stats, err := h.dashboardService.GetStats(c.UserContext(), identity)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to get dashboard stats")
	}
	return response.Success(c, "Dashboard stats retrieved successfully", stats)
}
