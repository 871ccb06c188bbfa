package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lunchmate/lunchmate-backend/internal/logger"
	"github.com/lunchmate/lunchmate-backend/internal/services"
)

type PartyHandler struct {
	log          *logger.Logger
	partyService services.PartyService
}

func NewPartyHandler(log *logger.Logger, partyService services.PartyService) *PartyHandler {
	return &PartyHandler{
		log:          log.With("handler", "PartyHandler"),
		partyService: partyService,
	}
}

// POST /api/parties
func (ph *PartyHandler) Create(c *gin.Context) {
	var req services.CreatePartyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	party, err := ph.partyService.CreateParty(c.Request.Context(), req)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "party_creation_failed", err)
		return
	}
	c.JSON(http.StatusCreated, party)
}

// GET /api/parties?date=YYYY-MM-DD
func (ph *PartyHandler) ListByDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter required"})
		return
	}
	parties, err := ph.partyService.GetPartiesByDate(c.Request.Context(), date)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_date", err)
		return
	}
	RespondOK(c, parties)
}

// GET /api/parties/:id
func (ph *PartyHandler) Get(c *gin.Context) {
	partyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid party id"})
		return
	}
	party, err := ph.partyService.GetParty(c.Request.Context(), partyID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "party_not_found", err)
		return
	}
	RespondOK(c, party)
}

// POST /api/parties/:id/join
func (ph *PartyHandler) Join(c *gin.Context) {
	partyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid party id"})
		return
	}
	if err := ph.partyService.JoinParty(c.Request.Context(), partyID); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrPartyFull) || errors.Is(err, services.ErrAlreadyMember) {
			status = http.StatusConflict
		}
		RespondError(c, status, "party_join_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "joined party"})
}

// POST /api/parties/:id/leave
func (ph *PartyHandler) Leave(c *gin.Context) {
	partyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid party id"})
		return
	}
	if err := ph.partyService.LeaveParty(c.Request.Context(), partyID); err != nil {
		RespondError(c, http.StatusBadRequest, "party_leave_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left party"})
}

// DELETE /api/parties/:id
func (ph *PartyHandler) Delete(c *gin.Context) {
	partyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid party id"})
		return
	}
	if err := ph.partyService.DeleteParty(c.Request.Context(), partyID); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, services.ErrNotHost) {
			status = http.StatusForbidden
		}
		RespondError(c, status, "party_deletion_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "party deleted"})
}
