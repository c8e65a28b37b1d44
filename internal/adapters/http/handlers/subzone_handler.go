package handlers

import (
	"evapod/internal/core/services"
	"evapod/internal/pkg/pagination"
	"evapod/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SubzoneHandler handles subzone admin endpoints
type SubzoneHandler struct {
	subzoneService *services.SubzoneService
	logger         *zap.Logger
}

// NewSubzoneHandler creates a new subzone handler
func NewSubzoneHandler(subzoneService *services.SubzoneService, logger *zap.Logger) *SubzoneHandler {
	return &SubzoneHandler{subzoneService: subzoneService, logger: logger}
}

// Create creates a subzone
// @Summary Create subzone
// @Description zonalCoordinator and evngCoordinator are required zionIds; zone is a zone name or id
// @Tags Subzones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SubzoneInput true "Subzone"
// @Success 201 {object} response.Response{data=models.SubzoneResponse}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /admin/create-subzone [post]
func (h *SubzoneHandler) Create(c *fiber.Ctx) error {
	var req services.SubzoneInput
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}

	subzone, err := h.subzoneService.Create(c.UserContext(), &req)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to create subzone")
	}
	return response.Created(c, "Subzone created successfully", subzone)
}

// List lists every subzone
// @Summary List subzones
// @Tags Subzones
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=pagination.List[models.SubzoneResponse]}
// @Router /admin/get-subzones [get]
func (h *SubzoneHandler) List(c *fiber.Ctx) error {
	subzones, err := h.subzoneService.List(c.UserContext())
	if err != nil {
		return handleError(c, h.logger, err, "Failed to list subzones")
	}
	return response.Success(c, "Subzones retrieved successfully", pagination.NewList(subzones))
}

// Paginate lists one page of subzones
// @Summary List subzones (paginated)
// @Tags Subzones
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param search query string false "Name contains"
// @Success 200 {object} response.Response{data=pagination.Page[models.SubzoneResponse]}
// @Router /admin/subzones-paginated [get]
func (h *SubzoneHandler) Paginate(c *fiber.Ctx) error {
	page, err := h.subzoneService.Paginate(c.UserContext(), pagination.GetParams(c))
	if err != nil {
		return handleError(c, h.logger, err, "Failed to list subzones")
	}
	return response.Success(c, "Subzones retrieved successfully", page)
}

// Get gets a subzone by ID
// @Summary Get subzone
// @Tags Subzones
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subzone ID"
// @Success 200 {object} response.Response{data=models.SubzoneResponse}
// @Failure 404 {object} response.Response
// @Router /admin/get-subzone/{id} [get]
func (h *SubzoneHandler) Get(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid subzone ID")
	}

	subzone, err := h.subzoneService.Get(c.UserContext(), id)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to get subzone")
	}
	return response.Success(c, "Subzone retrieved successfully", subzone)
}

// Update updates a subzone
// @Summary Update subzone
// @Tags Subzones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subzone ID"
// @Param body body services.SubzoneInput true "Fields to change"
// @Success 200 {object} response.Response{data=models.SubzoneResponse}
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /admin/update-subzone/{id} [put]
func (h *SubzoneHandler) Update(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid subzone ID")
	}

	var req services.SubzoneInput
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}

	subzone, err := h.subzoneService.Update(c.UserContext(), id, &req)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to update subzone")
	}
	return response.Success(c, "Subzone updated successfully", subzone)
}

// Delete deletes a subzone
// @Summary Delete subzone
// @Tags Subzones
// @Produce json
// @Security BearerAuth
// @Param id path int true "Subzone ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/delete-subzone/{id} [delete]
func (h *SubzoneHandler) Delete(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid subzone ID")
	}

	if err := h.subzoneService.Delete(c.UserContext(), id); err != nil {
		return handleError(c, h.logger, err, "Failed to delete subzone")
	}
	return response.Success(c, "Subzone deleted successfully", nil)
}
