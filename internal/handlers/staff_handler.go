package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aasl/gate-duty-backend/internal/database"
	"github.com/aasl/gate-duty-backend/internal/models"
)

// StaffHandler handles staff roster HTTP requests
type StaffHandler struct {
	staffRepo *database.StaffRepository
}

// NewStaffHandler creates a new StaffHandler
func NewStaffHandler(staffRepo *database.StaffRepository) *StaffHandler {
	return &StaffHandler{
		staffRepo: staffRepo,
	}
}

// UpsertStaff adds a staff member or updates an existing one
// POST /api/v1/staff
func (h *StaffHandler) UpsertStaff(c *gin.Context) {
	var input models.StaffUpsertInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": "staff_id, staff_name and department are required",
		})
		return
	}

	created, err := h.staffRepo.Upsert(input)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "upsert_failed",
			"message": err.Error(),
		})
		return
	}

	if created {
		c.JSON(http.StatusCreated, gin.H{
			"message":  "Staff added",
			"staff_id": input.StaffID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Staff updated",
		"staff_id": input.StaffID,
	})
}

// ListStaff returns every staff member with their priority counter
// GET /api/v1/staffs
func (h *StaffHandler) ListStaff(c *gin.Context) {
	summaries, err := h.staffRepo.ListSummaries()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "list_failed",
			"message": err.Error(),
		})
		return
	}

	if summaries == nil {
		summaries = []models.StaffSummary{}
	}

	c.JSON(http.StatusOK, gin.H{
		"staffs": summaries,
		"count":  len(summaries),
	})
}
