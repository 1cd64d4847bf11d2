package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mentorRepo "mentorhub/database/repository/mentor"
	"mentorhub/models"
	"mentorhub/services/scheduling"
)

type MentorHandler struct {
	Availability *scheduling.Availability
	Mentors      mentorRepo.MentorRepository
}

// UpdateAvailability replaces the caller's slot list. Slots that are
// already booked cannot be removed or unbooked through this path.
func (h *MentorHandler) UpdateAvailability(c *gin.Context) {
	_, email, ok := identity(c)
	if !ok {
		return
	}

	var input struct {
		Slots []models.Slot `json:"slots" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	slots, err := h.Availability.UpdateSlots(c.Request.Context(), email, input.Slots)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// GetByID returns a mentor profile with its slots.
func (h *MentorHandler) GetByID(c *gin.Context) {
	m, err := h.Mentors.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
