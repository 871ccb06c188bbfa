package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lunchmate/lunchmate-backend/internal/logger"
	"github.com/lunchmate/lunchmate-backend/internal/requestdata"
	"github.com/lunchmate/lunchmate-backend/internal/services"
)

type RecommendationHandler struct {
	log    *logger.Logger
	recSvc services.RecommendationService
}

func NewRecommendationHandler(log *logger.Logger, recSvc services.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		log:    log.With("handler", "RecommendationHandler"),
		recSvc: recSvc,
	}
}

// GET /api/recommendations?date=YYYY-MM-DD
// Returns the caller's precomputed lunch groups for the given date.
func (rh *RecommendationHandler) GetForDate(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter required"})
		return
	}
	entries, err := rh.recSvc.Lookup(c.Request.Context(), rd.UserID, date)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}
	RespondOK(c, gin.H{
		"date":          date,
		"generated_for": rh.recSvc.GeneratedFor(),
		"groups":        entries,
	})
}

// POST /api/recommendations/generate
// Kicks the batch run; a no-op when today's run already happened.
func (rh *RecommendationHandler) Generate(c *gin.Context) {
	if err := rh.recSvc.TriggerGeneration(c.Request.Context()); err != nil {
		RespondError(c, http.StatusInternalServerError, "generation_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"generated_for": rh.recSvc.GeneratedFor()})
}
