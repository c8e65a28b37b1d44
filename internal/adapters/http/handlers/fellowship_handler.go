package handlers

import (
	"evapod/internal/core/services"
	"evapod/internal/pkg/pagination"
	"evapod/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// FellowshipHandler handles fellowship admin endpoints
type FellowshipHandler struct {
	fellowshipService *services.FellowshipService
	logger         *zap.Logger
}

// NewFellowshipHandler creates a new fellowship handler
func NewFellowshipHandler(fellowshipService *services.FellowshipService, logger *zap.Logger) *FellowshipHandler {
	return &FellowshipHandler{fellowshipService: fellowshipService, logger: logger}
}

// Create creates a fellowship
// @Summary Create fellowship
// @Description coordinator is a required zionId; the zone is taken from the subZone when omitted
// @Tags Fellowships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.FellowshipInput true "Fellowship"
// @Success 201 {object} response.Response{data=models.FellowshipResponse}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /admin/create-fellowship [post]
func (h *FellowshipHandler) Create(c *fiber.Ctx) error {
	var req services.FellowshipInput
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}

	fellowship, err := h.fellowshipService.Create(c.UserContext(), &req)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to create fellowship")
	}
	return response.Created(c, "Fellowship created successfully", fellowship)
}

// List lists every fellowship
// @Summary List fellowships
// @Tags Fellowships
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=pagination.List[models.FellowshipResponse]}
// @Router /admin/get-fellowships [get]
func (h *FellowshipHandler) List(c *fiber.Ctx) error {
	fellowships, err := h.fellowshipService.List(c.UserContext())
	if err != nil {
		return handleError(c, h.logger, err, "Failed to list fellowships")
	}
	return response.Success(c, "Fellowships retrieved successfully", pagination.NewList(fellowships))
}

// Paginate lists one page of fellowships. The search term matches names.
// @Summary List fellowships (paginated)
// @Tags Fellowships
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param search query string false "Name contains"
// @Success 200 {object} response.Response{data=pagination.Page[models.FellowshipResponse]}
// @Router /admin/fellowships-paginated [get]
func (h *FellowshipHandler) Paginate(c *fiber.Ctx) error {
	page, err := h.fellowshipService.Paginate(c.UserContext(), pagination.GetParams(c))
	if err != nil {
		return handleError(c, h.logger, err, "Failed to list fellowships")
	}
	return response.Success(c, "Fellowships retrieved successfully", page)
}

// Get gets a fellowship by ID
// @Summary Get fellowship
// @Tags Fellowships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fellowship ID"
// @Success 200 {object} response.Response{data=models.FellowshipResponse}
// @Failure 404 {object} response.Response
// @Router /admin/get-fellowship/{id} [get]
func (h *FellowshipHandler) Get(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid fellowship ID")
	}

	fellowship, err := h.fellowshipService.Get(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to get fellowship")
	}
	return response.Success(c, "Fellowship retrieved successfully", fellowship)
}

// Update updates a fellowship
// @Summary Update fellowship
// @Tags Fellowships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fellowship ID"
// @Param body body services.FellowshipInput true "Fields to change"
// @Success 200 {object} response.Response{data=models.FellowshipResponse}
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /admin/update-fellowship/{id} [put]
func (h *FellowshipHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid fellowship ID")
	}

	var req services.FellowshipInput
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}

	fellowship, err := h.fellowshipService.Update(c.UserContext(), id, &req)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to update fellowship")
	}
	return response.Success(c, "Fellowship updated successfully", fellowship)
}

// Delete deletes a fellowship
// @Summary Delete fellowship
// @Tags Fellowships
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fellowship ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/delete-fellowship/{id} [delete]
func (h *FellowshipHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid fellowship ID")
	}

	if err := h.fellowshipService.Delete(c.UserContext(), id); err != nil {
		return handleError(c, h.logger, err, "Failed to delete fellowship")
	}
	return response.Success(c, "Fellowship deleted successfully", nil)
}
