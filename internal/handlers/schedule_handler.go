package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aasl/gate-duty-backend/internal/models"
	"github.com/aasl/gate-duty-backend/internal/services"
	"github.com/aasl/gate-duty-backend/pkg/validator"
)

// scheduleConfirmationToken must be sent verbatim with destructive bulk operations
const scheduleConfirmationToken = "CONFIRM"

// ScheduleHandler handles gate duty schedule HTTP requests
type ScheduleHandler struct {
	scheduleService *services.ScheduleService
	monthValidator  *validator.MonthValidator
}

// NewScheduleHandler creates a new ScheduleHandler
func NewScheduleHandler(scheduleService *services.ScheduleService, monthValidator *validator.MonthValidator) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
		monthValidator:  monthValidator,
	}
}

// GenerateScheduleRequest represents a schedule generation request
type GenerateScheduleRequest struct {
	Month string `json:"month" binding:"required"`
}

// ResetPrioritiesRequest represents a priority reset request
type ResetPrioritiesRequest struct {
	Confirmation string `json:"confirmation" binding:"required"`
}

// DeleteMonthRequest represents a month deletion request
type DeleteMonthRequest struct {
	Month        string `json:"month" binding:"required"`
	Confirmation string `json:"confirmation" binding:"required"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// GenerateSchedule runs one scheduling run for the requested month
// POST /api/v1/schedule
func (h *ScheduleHandler) GenerateSchedule(c *gin.Context) {
	var req GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "month is required",
		})
		return
	}

	month, err := h.monthValidator.Validate(req.Month)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_month",
			Message: err.Error(),
		})
		return
	}

	result, err := h.scheduleService.GenerateMonthlySchedule(month, models.RunTriggerAPI)
	if err != nil {
		if err == services.ErrRunInProgress {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "run_in_progress",
				Message: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "generation_failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMonthSchedule returns the persisted schedule rows for one month
// GET /api/v1/schedule/:month
func (h *ScheduleHandler) GetMonthSchedule(c *gin.Context) {
	month, err := h.monthValidator.Validate(c.Param("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_month",
			Message: err.Error(),
		})
		return
	}

	rows, err := h.scheduleService.GetMonthSchedule(month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "fetch_failed",
			Message: err.Error(),
		})
		return
	}

	if rows == nil {
		rows = []models.MonthScheduleRow{}
	}

	c.JSON(http.StatusOK, rows)
}

// ResetPriorities zeroes every staff member's priority counter
// POST /api/v1/reset-priority
func (h *ScheduleHandler) ResetPriorities(c *gin.Context) {
	var req ResetPrioritiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "confirmation is required",
		})
		return
	}

	if req.Confirmation != scheduleConfirmationToken {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "confirmation_mismatch",
			Message: "Confirmation failed. Type CONFIRM to reset all priorities",
		})
		return
	}

	count, err := h.scheduleService.ResetAllPriorities()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "reset_failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "All staff priorities reset",
		"staff_reset": count,
	})
}

// DeleteMonthSchedule removes every schedule row for one month
// POST /api/v1/delete-month
func (h *ScheduleHandler) DeleteMonthSchedule(c *gin.Context) {
	var req DeleteMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "month and confirmation are required",
		})
		return
	}

	if req.Confirmation != scheduleConfirmationToken {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "confirmation_mismatch",
			Message: "Confirmation failed. Type CONFIRM to delete the month schedule",
		})
		return
	}

	month, err := h.monthValidator.Validate(req.Month)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_month",
			Message: err.Error(),
		})
		return
	}

	deleted, err := h.scheduleService.DeleteMonth(month)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "delete_failed",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      fmt.Sprintf("%s deleted", h.monthValidator.Format(month)),
		"rows_deleted": deleted,
	})
}

// ListScheduleRuns returns recent scheduling run audit records, newest first
// GET /api/v1/schedule-runs
func (h *ScheduleHandler) ListScheduleRuns(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 200 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "limit must be between 1 and 200",
			})
			return
		}
		limit = parsed
	}

	runs, err := h.scheduleService.ListRuns(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "list_failed",
			Message: err.Error(),
		})
		return
	}

	if runs == nil {
		runs = []models.ScheduleRun{}
	}

	c.JSON(http.StatusOK, gin.H{
		"runs":  runs,
		"count": len(runs),
	})
}
