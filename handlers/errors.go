package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	bookingRepo "mentorhub/database/repository/booking"
	chatRepo "mentorhub/database/repository/chat"
	mentorRepo "mentorhub/database/repository/mentor"
	paymentRepo "mentorhub/database/repository/payment"
	userRepo "mentorhub/database/repository/user"
	"mentorhub/services/booking"
	"mentorhub/services/chat"
	"mentorhub/services/payment"
	"mentorhub/services/scheduling"
	"mentorhub/utils"
)

// respondServiceError maps service-layer error types onto HTTP
// statuses. Unknown errors become an opaque 500; their detail goes to
// the log, not the client.
func respondServiceError(c *gin.Context, err error) {
	var (
		validationErr *booking.ValidationError
		conflictErr   *booking.ConflictError
		transitionErr *booking.InvalidTransitionError
		slotErr       *scheduling.SlotError
		bookedErr     *scheduling.BookedSlotError
		takenErr      *payment.SlotTakenError
		deniedErr     *chat.AccessDeniedError
		memberErr     *chat.NotParticipantError
		outsiderErr   *booking.NotParticipantError
	)

	switch {
	case errors.As(err, &validationErr):
		utils.JSONError(c, http.StatusBadRequest, validationErr.Message, "")
	case errors.As(err, &slotErr):
		utils.JSONError(c, http.StatusBadRequest, slotErr.Message, "")
	case errors.As(err, &transitionErr):
		utils.JSONError(c, http.StatusBadRequest, err.Error(), "")
	case errors.As(err, &conflictErr):
		utils.JSONError(c, http.StatusConflict, "slot is already booked", err.Error())
	case errors.As(err, &bookedErr):
		utils.JSONError(c, http.StatusConflict, err.Error(), "")
	case errors.As(err, &takenErr):
		utils.JSONError(c, http.StatusConflict, "slot was taken during payment", err.Error())
	case errors.As(err, &deniedErr):
		body := gin.H{"error": deniedErr.Reason}
		if deniedErr.RetryAt != nil {
			body["retryAt"] = deniedErr.RetryAt
		}
		c.JSON(http.StatusForbidden, body)
	case errors.As(err, &memberErr):
		utils.JSONError(c, http.StatusForbidden, "unauthorized access to room", "")
	case errors.As(err, &outsiderErr):
		utils.JSONError(c, http.StatusForbidden, "unauthorized access to this booking", "")
	case errors.Is(err, payment.ErrInvalidSignature):
		utils.JSONError(c, http.StatusBadRequest, "invalid payment signature", "")
	case errors.Is(err, payment.ErrProviderUnavailable):
		utils.JSONError(c, http.StatusServiceUnavailable, "payment provider not configured", "")
	case errors.Is(err, bookingRepo.ErrNotFound),
		errors.Is(err, mentorRepo.ErrNotFound),
		errors.Is(err, userRepo.ErrNotFound),
		errors.Is(err, paymentRepo.ErrNotFound),
		errors.Is(err, chatRepo.ErrRoomNotFound):
		utils.JSONError(c, http.StatusNotFound, "not found", "")
	default:
		getLogger(c).Error("unhandled service error: " + err.Error())
		utils.JSONError(c, http.StatusInternalServerError, "internal server error", "")
	}
}

// identity pulls the authenticated caller set by the auth middleware.
func identity(c *gin.Context) (userID, email string, ok bool) {
	id, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", "", false
	}
	em, _ := c.Get("email")
	userID, _ = id.(string)
	email, _ = em.(string)
	return userID, email, true
}
