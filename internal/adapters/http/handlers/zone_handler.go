package handlers

import (
	"evapod/internal/core/services"
	"evapod/internal/pkg/pagination"
	"evapod/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ZoneHandler handles zone admin endpoints
type ZoneHandler struct {
	zoneService *services.ZoneService
	logger      *zap.Logger
}

// NewZoneHandler creates a new zone handler
func NewZoneHandler(zoneService *services.ZoneService, logger *zap.Logger) *ZoneHandler {
	return &ZoneHandler{zoneService: zoneService, logger: logger}
}

// Create creates a zone
// @Summary Create zone
// @Description The region may be given by id or name. Zone names are unique within a region.
// @Tags Zones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ZoneInput true "Zone"
// @Success 201 {object} response.Response{data=models.ZoneResponse}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /admin/create-zone [post]
func (h *ZoneHandler) Create(c *fiber.Ctx) error {
	var req services.ZoneInput
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}

	zone, err := h.zoneService.Create(c.UserContext(), &req)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to create zone")
	}
	return response.Created(c, "Zone created successfully", zone)
}

// List lists zones, optionally for one region
// @Summary List zones
// @Tags Zones
// @Produce json
// @Security BearerAuth
// @Param region query int false "Region ID"
// @Success 200 {object} response.Response{data=pagination.List[models.ZoneResponse]}
// @Router /admin/get-zones [get]
func (h *ZoneHandler) List(c *fiber.Ctx) error {
	regionID := uint(c.QueryInt("region", 0))

	zones, err := h.zoneService.List(c.UserContext(), regionID)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to list zones")
	}
	return response.Success(c, "Zones retrieved successfully", pagination.NewList(zones))
}

// Get gets a zone by ID
// @Summary Get zone
// @Tags Zones
// @Produce json
// @Security BearerAuth
// @Param id path int true "Zone ID"
// @Success 200 {object} response.Response{data=models.ZoneResponse}
// @Failure 404 {object} response.Response
// @Router /admin/get-zone/{id} [get]
func (h *ZoneHandler) Get(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid zone ID")
	}

	zone, err := h.zoneService.Get(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to get zone")
	}
	return response.Success(c, "Zone retrieved successfully", zone)
}

// Update updates a zone
// @Summary Update zone
// @Tags Zones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Zone ID"
// @Param body body services.ZoneInput true "Fields to change"
// @Success 200 {object} response.Response{data=models.ZoneResponse}
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /admin/update-zone/{id} [put]
func (h *ZoneHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid zone ID")
	}

	var req services.ZoneInput
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}

	zone, err := h.zoneService.Update(c.UserContext(), id, &req)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to update zone")
	}
	return response.Success(c, "Zone updated successfully", zone)
}

// Delete deletes a zone
// @Summary Delete zone
// @Tags Zones
// @Produce json
// @Security BearerAuth
// @Param id path int true "Zone ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/delete-zone/{id} [delete]
func (h *ZoneHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid zone ID")
	}

	if err := h.zoneService.Delete(c.UserContext(), id); err != nil {
		return handleError(c, h.logger, err, "Failed to delete zone")
	}
	return response.Success(c, "Zone deleted successfully", nil)
}
