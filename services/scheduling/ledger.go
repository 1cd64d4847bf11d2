// Package scheduling owns a mentor's declared availability: the
// booking-overlap predicate consulted at both booking-request and
// payment-settlement time, and the guard that keeps booked slots from
// being edited away.
package scheduling

import (
	"context"
	"fmt"

	"mentorhub/models"
)

// OverlapSource is the slice of the booking store the ledger needs.
type OverlapSource interface {
	FindOverlapping(ctx context.Context, mentorID, date, startTime, endTime string) (*models.Booking, error)
}

// Ledger answers "is this mentor window free?" against non-cancelled
// bookings.
type Ledger struct {
	Bookings OverlapSource
}

func NewLedger(src OverlapSource) *Ledger {
	return &Ledger{Bookings: src}
}

// HasOverlap reports whether any non-cancelled booking for the mentor
// on the given date overlaps [startTime, endTime). Inputs are
// normalized before comparison; malformed times or dates are an error,
// never silently compared.
func (l *Ledger) HasOverlap(ctx context.Context, mentorID, date, startTime, endTime string) (bool, error) {
	date, err := NormalizeDate(date)
	if err != nil {
		return false, err
	}
	start, err := NormalizeClock(startTime)
	if err != nil {
		return false, err
	}
	end, err := NormalizeClock(endTime)
	if err != nil {
		return false, err
	}
	if end <= start {
		return false, fmt.Errorf("invalid window: end %s not after start %s", end, start)
	}

	existing, err := l.Bookings.FindOverlapping(ctx, mentorID, date, start, end)
	if err != nil {
		return false, err
	}
	return existing != nil, nil
}
