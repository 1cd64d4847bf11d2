package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mentorhub/services/booking"
)

type BookingHandler struct {
	Svc booking.Service
}

// Create books a slot directly, without a payment. The slot conflict
// check and insert run atomically; a lost race answers 409.
func (h *BookingHandler) Create(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}

	var input struct {
		MentorID  string  `json:"mentorId" binding:"required"`
		Date      string  `json:"date" binding:"required"`
		StartTime string  `json:"startTime" binding:"required"`
		EndTime   string  `json:"endTime" binding:"required"`
		Mode      string  `json:"mode" binding:"required"`
		Price     float64 `json:"price"`
		Notes     string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Svc.Create(c.Request.Context(), booking.CreateRequest{
		MentorID:    input.MentorID,
		UserID:      userID,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		SessionType: input.Mode,
		Price:       input.Price,
		Notes:       input.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// UpdateStatus moves a booking through its lifecycle.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	if _, _, ok := identity(c); !ok {
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Svc.UpdateStatus(c.Request.Context(), c.Param("id"), input.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GetByID returns one booking to its mentee or mentor; anyone else
// answers 403.
func (h *BookingHandler) GetByID(c *gin.Context) {
	userID, email, ok := identity(c)
	if !ok {
		return
	}
	b, err := h.Svc.GetFor(c.Request.Context(), c.Param("id"), userID, email)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// MyBookings lists the caller's bookings as a mentee.
func (h *BookingHandler) MyBookings(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	list, err := h.Svc.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// MentorBookings lists bookings held against the caller's mentor
// profile, resolved by account email.
func (h *BookingHandler) MentorBookings(c *gin.Context) {
	_, email, ok := identity(c)
	if !ok {
		return
	}
	list, err := h.Svc.ListForMentor(c.Request.Context(), email)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
