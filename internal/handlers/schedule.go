package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lunchmate/lunchmate-backend/internal/logger"
	"github.com/lunchmate/lunchmate-backend/internal/services"
)

type ScheduleHandler struct {
	log             *logger.Logger
	scheduleService services.ScheduleService
}

func NewScheduleHandler(log *logger.Logger, scheduleService services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		log:             log.With("handler", "ScheduleHandler"),
		scheduleService: scheduleService,
	}
}

// POST /api/schedules
func (sh *ScheduleHandler) Create(c *gin.Context) {
	var req struct {
		ScheduleDate string `json:"schedule_date"`
		Description  string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	entry, err := sh.scheduleService.CreateEntry(c.Request.Context(), req.ScheduleDate, req.Description)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "schedule_creation_failed", err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GET /api/schedules
func (sh *ScheduleHandler) ListMine(c *gin.Context) {
	entries, err := sh.scheduleService.ListMine(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusBadRequest, "schedule_lookup_failed", err)
		return
	}
	RespondOK(c, entries)
}

// DELETE /api/schedules/:id
func (sh *ScheduleHandler) Delete(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid schedule id"})
		return
	}
	if err := sh.scheduleService.DeleteEntry(c.Request.Context(), entryID); err != nil {
		RespondError(c, http.StatusBadRequest, "schedule_deletion_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "schedule entry deleted"})
}
