package chat

import (
	"time"

	"mentorhub/services/access"
)

// AccessDeniedError carries the gate's denial out to the HTTP surface.
type AccessDeniedError struct {
	Reason  string
	RetryAt *time.Time
}

func (e *AccessDeniedError) Error() string { return e.Reason }

func deniedError(d access.Decision) *AccessDeniedError {
	return &AccessDeniedError{Reason: d.Reason, RetryAt: d.RetryAt}
}

// NotParticipantError rejects room reads by non-members.
type NotParticipantError struct {
	RoomID string
}

func (e *NotParticipantError) Error() string {
	return "unauthorized access to room " + e.RoomID
}
