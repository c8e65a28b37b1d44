package handlers

import (
	"evapod/internal/adapters/http/middleware"
	"evapod/internal/core/services"
	"evapod/internal/pkg/pagination"
	"evapod/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService   *services.UserService
	reportService *services.ReportService
	logger        *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, reportService *services.ReportService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService:   userService,
		reportService: reportService,
		logger:        logger,
	}
}

// Create creates a user
// @Summary Create user
// @Description Admin-created users are verified. zionId is assigned when omitted.
// @Tags Admin Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UserInput true "User"
// @Success 201 {object} response.Response{data=models.UserResponse}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /admin/create-user [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req services.UserInput
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}

	user, err := h.userService.Create(c.UserContext(), &req)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to create user")
	}
	return response.Created(c, "User created successfully", user)
}

// List lists the users visible to the caller
// @Summary List users
// @Tags Admin Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=pagination.List[models.UserResponse]}
// @Router /admin/get-users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	users, err := h.userService.List(c.UserContext(), identity)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to list users")
	}
	return response.Success(c, "Users retrieved successfully", pagination.NewList(users))
}

// Paginate lists one page of users
// @Summary List users (paginated)
// @Description Search matches name, email, phone and zionId
// @Tags Admin Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param search query string false "Search term"
// @Param fellowship query string false "Fellowship name or id"
// @Success 200 {object} response.Response{data=pagination.Page[models.UserResponse]}
// @Router /admin/users-paginated [get]
func (h *UserHandler) Paginate(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	page, err := h.userService.Paginate(c.UserContext(), identity, pagination.GetParams(c))
	if err != nil {
		return handleError(c, h.logger, err, "Failed to list users")
	}
	return response.Success(c, "Users retrieved successfully", page)
}

// PaginateReports lists one page of the reports visible to the caller
// @Summary List reports (paginated)
// @Description Search matches hearer name, location, mobile number and owner name
// @Tags Admin Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param search query string false "Search term"
// @Param fellowship query string false "Fellowship name"
// @Param status query string false "Sentiment"
// @Param followUpStatus query string false "Follow-up status"
// @Success 200 {object} response.Response{data=pagination.Page[models.ReportResponse]}
// @Router /admin/users-reports-paginated [get]
func (h *UserHandler) PaginateReports(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	filter := services.ListFilter{
		Status:         c.Query("status"),
		FollowUpStatus: c.Query("followUpStatus"),
	}
	page, err := h.reportService.Paginate(c.UserContext(), identity, filter, pagination.GetParams(c))
	if err != nil {
		return handleError(c, h.logger, err, "Failed to list reports")
	}
	return response.Success(c, "Reports retrieved successfully", page)
}

// Get gets a user by ID
// @Summary Get user
// @Tags Admin Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response{data=models.UserResponse}
// @Failure 404 {object} response.Response
// @Router /admin/get-user/{id} [get]
func (h *UserHandler) Get(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	user, err := h.userService.Get(c.UserContext(), identity, id)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to get user")
	}
	return response.Success(c, "User retrieved successfully", user)
}

// Update updates a user
// @Summary Update user
// @Description Blocking a user signs them out everywhere
// @Tags Admin Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UserInput true "Fields to change"
// @Success 200 {object} response.Response{data=models.UserResponse}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/update-user/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	var req services.UserInput
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}

	user, err := h.userService.Update(c.UserContext(), identity, id, &req)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to update user")
	}
	return response.Success(c, "User updated successfully", user)
}

// Delete deletes a user
// @Summary Delete user
// @Tags Admin Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/delete-user/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid user ID")
	}

	if err := h.userService.Delete(c.UserContext(), identity, id); err != nil {
		return handleError(c, h.logger, err, "Failed to delete user")
	}
	return response.Success(c, "User deleted successfully", nil)
}
