package booking

import "fmt"

// ConflictError signals that the requested window overlaps an existing
// non-cancelled booking. Recoverable: the caller can pick another slot.
type ConflictError struct {
	MentorID  string
	Date      string
	StartTime string
	EndTime   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time slot %s-%s on %s overlaps an existing booking", e.StartTime, e.EndTime, e.Date)
}

// ValidationError reports malformed or missing input, rejected before
// any write.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotParticipantError rejects access to a booking by a caller who is
// neither its mentee nor its mentor.
type NotParticipantError struct {
	BookingID string
}

func (e *NotParticipantError) Error() string {
	return fmt.Sprintf("caller is not a participant of booking %s", e.BookingID)
}

// InvalidTransitionError rejects a status change the lifecycle does
// not permit.
type InvalidTransitionError struct {
	From, To string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition booking from %q to %q", e.From, e.To)
}
