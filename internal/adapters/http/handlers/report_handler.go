package handlers

import (
	"strconv"

	"evapod/internal/adapters/http/middleware"
	"evapod/internal/core/services"
	"evapod/internal/pkg/pagination"
	"evapod/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ReportHandler handles report endpoints
type ReportHandler struct {
	reportService *services.ReportService
	logger        *zap.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *services.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reportService: reportService, logger: logger}
}

// Create records a report for the caller
// @Summary Create report
// @Description typeOfReport, date, hearerName and status are required. followUpStatus defaults to "First Contact" and appointmentStatus to "Not Scheduled".
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-CSRF-Token header string true "CSRF token"
// @Param body body services.ReportInput true "Report"
// @Success 201 {object} response.Response{data=models.ReportResponse}
// @Failure 400 {object} response.Response
// @Router /reports/create [post]
func (h *ReportHandler) Create(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.ReportInput
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}

	report, err := h.reportService.Create(c.UserContext(), identity, &req)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to create report")
	}
	return response.Created(c, "Report created successfully", report)
}

// List lists the reports visible to the caller
// @Summary List reports
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param fellowship query string false "Fellowship name"
// @Success 200 {object} response.Response{data=pagination.List[models.ReportResponse]}
// @Router /reports [get]
func (h *ReportHandler) List(c *fiber.Ctx) error {
	return h.list(c, services.ListFilter{Fellowship: c.Query("fellowship")})
}

// ListByFellowship lists reports for one fellowship
// @Summary List reports by fellowship
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param fellowship path string true "Fellowship name"
// @Success 200 {object} response.Response{data=pagination.List[models.ReportResponse]}
// @Router /reports/fellowship/{fellowship} [get]
func (h *ReportHandler) ListByFellowship(c *fiber.Ctx) error {
	return h.list(c, services.ListFilter{Fellowship: pathParam(c, "fellowship")})
}

// ListByStatus lists reports with one sentiment
// @Summary List reports by status
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param status path string true "Positive, Negative or Neutral"
// @Success 200 {object} response.Response{data=pagination.List[models.ReportResponse]}
// @Failure 400 {object} response.Response
// @Router /reports/status/{status} [get]
func (h *ReportHandler) ListByStatus(c *fiber.Ctx) error {
	return h.list(c, services.ListFilter{Status: pathParam(c, "status")})
}

// ListByFollowUp lists reports at one follow-up stage
// @Summary List reports by follow-up status
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param status path string true "Follow-up status"
// @Success 200 {object} response.Response{data=pagination.List[models.ReportResponse]}
// @Failure 400 {object} response.Response
// @Router /reports/followup/{status} [get]
func (h *ReportHandler) ListByFollowUp(c *fiber.Ctx) error {
	return h.list(c, services.ListFilter{FollowUpStatus: pathParam(c, "status")})
}

// ListByUser lists the caller's reports, or another visible user's
// @Summary List reports by user
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param user query int false "zionId of the owner, defaults to the caller"
// @Success 200 {object} response.Response{data=pagination.List[models.ReportResponse]}
// @Failure 422 {object} response.Response
// @Router /reports/report-by-user [get]
func (h *ReportHandler) ListByUser(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var zionID int64
	if raw := c.Query("user"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			return response.BadRequest(c, "Invalid user zionId")
		}
		zionID = v
	}

	reports, err := h.reportService.ListOwn(c.UserContext(), identity, zionID)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to list reports")
	}
	return response.Success(c, "Reports retrieved successfully", pagination.NewList(reports))
}

// Get gets a report by ID
// @Summary Get report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param id path int true "Report ID"
// @Success 200 {object} response.Response{data=models.ReportResponse}
// @Failure 404 {object} response.Response
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid report ID")
	}

	report, err := h.reportService.Get(c.UserContext(), identity, id)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to get report")
	}
	return response.Success(c, "Report retrieved successfully", report)
}

// Update changes the supplied report fields
// @Summary Update report
// @Description Sentiment, follow-up and appointment can each be changed on their own
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param X-CSRF-Token header string true "CSRF token"
// @Param id path int true "Report ID"
// @Param body body services.ReportInput true "Fields to change"
// @Success 200 {object} response.Response{data=models.ReportResponse}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reports/{id} [put]
func (h *ReportHandler) Update(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid report ID")
	}

	var req services.ReportInput
	if err := c.BodyParser(&req); err != nil {
		return bodyError(c, err)
	}

	report, err := h.reportService.Update(c.UserContext(), identity, id, &req)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to update report")
	}
	return response.Success(c, "Report updated successfully", report)
}

// Delete deletes a report
// @Summary Delete report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param X-CSRF-Token header string true "CSRF token"
// @Param id path int true "Report ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reports/{id} [delete]
func (h *ReportHandler) Delete(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid report ID")
	}

	if err := h.reportService.Delete(c.UserContext(), identity, id); err != nil {
		return handleError(c, h.logger, err, "Failed to delete report")
	}
	return response.Success(c, "Report deleted successfully", nil)
}

func (h *ReportHandler) list(c *fiber.Ctx, filter services.ListFilter) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	reports, err := h.reportService.List(c.UserContext(), identity, filter)
	if err != nil {
		return handleError(c, h.logger, err, "Failed to list reports")
	}
	return response.Success(c, "Reports retrieved successfully", pagination.NewList(reports))
}
