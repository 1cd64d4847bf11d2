package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mentorhub/services/payment"
)

type PaymentHandler struct {
	Gate *payment.Gate
}

// CreateOrder opens checkout for a session window. No booking is
// created yet; the draft rides on the payment record until settlement.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}

	var input struct {
		Amount       float64 `json:"amount" binding:"required"`
		Currency     string  `json:"currency"`
		MentorID     string  `json:"mentorId" binding:"required"`
		Mode         string  `json:"mode" binding:"required"`
		BookingDraft struct {
			Date      string `json:"date" binding:"required"`
			StartTime string `json:"startTime" binding:"required"`
			EndTime   string `json:"endTime" binding:"required"`
			Notes     string `json:"notes"`
		} `json:"bookingDraft" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	res, err := h.Gate.CreateOrder(c.Request.Context(), payment.OrderRequest{
		Amount:      input.Amount,
		Currency:    input.Currency,
		MentorID:    input.MentorID,
		UserID:      userID,
		SessionType: input.Mode,
		Date:        input.BookingDraft.Date,
		StartTime:   input.BookingDraft.StartTime,
		EndTime:     input.BookingDraft.EndTime,
		Notes:       input.BookingDraft.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Verify settles a payment: signature check, slot re-check, booking
// creation. A slot lost during checkout answers 409 with the payment
// marked failed.
func (h *PaymentHandler) Verify(c *gin.Context) {
	if _, _, ok := identity(c); !ok {
		return
	}

	var input struct {
		OrderID         string `json:"orderId" binding:"required"`
		PaymentID       string `json:"paymentId" binding:"required"`
		Signature       string `json:"signature" binding:"required"`
		PaymentRecordID string `json:"paymentRecordId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	res, err := h.Gate.Verify(c.Request.Context(), input.OrderID, input.PaymentID, input.Signature, input.PaymentRecordID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetByID returns one payment record; callers may only read their own.
func (h *PaymentHandler) GetByID(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	p, err := h.Gate.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if p.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// History lists the caller's payments, newest first.
func (h *PaymentHandler) History(c *gin.Context) {
	userID, _, ok := identity(c)
	if !ok {
		return
	}
	list, err := h.Gate.HistoryForUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
