package handlers

import (
	"evapod/internal/core/services"
	"evapod/internal/pkg/pagination"
	"evapod/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RegionHandler handles region admin endpoints
type RegionHandler struct {
	regionService *services.RegionService
	logger        *zap.Logger
}

// NewRegionHandler creates a new region handler
func NewRegionHandler(regionService *services.RegionService, logger *zap.Logger) *RegionHandler {
	return &RegionHandler{regionService: regionService, logger: logger}
}

// Create creates a region
// @Summary Create region
// @Description Coordinators are referenced by zionId
// @Tags Regions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.RegionInput true "Region"
// @Success 201 {object} response.Response{data=models.RegionResponse}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /admin/create-region [post]
func (h *RegionHandler) Create(c *fiber.Ctx) error {
	var req services.RegionInput
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}

	region, err := h.regionService.Create(c.UserContext(), &req)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to create region")
	}
	return response.Created(c, "Region created successfully", region)
}

// List lists every region
// @Summary List regions
// @Tags Regions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=pagination.List[models.RegionResponse]}
// @Router /admin/get-regions [get]
func (h *RegionHandler) List(c *fiber.Ctx) error {
	regions, err := h.regionService.List(c.UserContext())
	if err != nil {
		return handleError(c, h.logger, err, "Failed to list regions")
	}
	return response.Success(c, "Regions retrieved successfully", pagination.NewList(regions))
}

// Get gets a region by ID
// @Summary Get region
// @Tags Regions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Region ID"
// @Success 200 {object} response.Response{data=models.RegionResponse}
// @Failure 404 {object} response.Response
// @Router /admin/get-region/{id} [get]
func (h *RegionHandler) Get(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid region ID")
	}

	region, err := h.regionService.Get(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to get region")
	}
	return response.Success(c, "Region retrieved successfully", region)
}

// Update updates a region
// @Summary Update region
// @Description Only supplied fields change; null clears an optional field
// @Tags Regions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Region ID"
// @Param body body services.RegionInput true "Fields to change"
// @Success 200 {object} response.Response{data=models.RegionResponse}
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /admin/update-region/{id} [put]
func (h *RegionHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid region ID")
	}

	var req services.RegionInput
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}

	region, err := h.regionService.Update(c.UserContext(), id, &req)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to update region")
	}
	return response.Success(c, "Region updated successfully", region)
}

// Delete deletes a region
// @Summary Delete region
// @Tags Regions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Region ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/delete-region/{id} [delete]
func (h *RegionHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid region ID")
	}

	if err := h.regionService.Delete(c.UserContext(), id); err != nil {
		return handleError(c, h.logger, err, "Failed to delete region")
	}
	return response.Success(c, "Region deleted successfully", nil)
}
