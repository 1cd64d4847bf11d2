package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	chatService "mentorhub/services/chat"
)

type ChatHandler struct {
	Svc *chatService.Service
}

// CreateRoom returns the chat room for a booking, creating it on the
// first gated access. Answers 403 with the gate's reason when the
// session window is closed or the booking is unpaid.
func (h *ChatHandler) CreateRoom(c *gin.Context) {
	userID, email, ok := identity(c)
	if !ok {
		return
	}

	var input struct {
		BookingID string `json:"bookingId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	room, err := h.Svc.OpenRoom(c.Request.Context(), input.BookingID, userID, email)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// RoomForBooking returns an existing room for a booking without the
// creation side effect.
func (h *ChatHandler) RoomForBooking(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	room, err := h.Svc.RoomForBooking(c.Request.Context(), c.Param("bookingId"), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// Messages pages a room's history in chronological order.
func (h *ChatHandler) Messages(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	skip, _ := strconv.ParseInt(c.DefaultQuery("skip", "0"), 10, 64)

	msgs, err := h.Svc.MessagesPage(c.Request.Context(), c.Param("roomId"), userID, limit, skip)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// MyRooms lists the caller's rooms, most recently active first.
func (h *ChatHandler) MyRooms(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	rooms, err := h.Svc.RoomsForUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}
