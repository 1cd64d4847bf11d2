package scheduling

import "mentorhub/models"

// BookedSlotError rejects a slot-list edit that would drop or alter a
// slot referenced by an active booking.
type BookedSlotError struct {
	Slot models.Slot
}

func (e *BookedSlotError) Error() string {
	where := e.Slot.Day
	if e.Slot.Date != "" {
		where = e.Slot.Date
	}
	return "cannot remove slot " + e.Slot.StartTime + " - " + e.Slot.EndTime +
		" (" + where + "): it has an active booking; cancel the booking first"
}

// sameSlot matches slots by value (day, date, start, end). Clients may
// resend the full list with regenerated internal IDs, so identity
// comparison is useless here.
func sameSlot(a, b models.Slot) bool {
	return a.Day == b.Day &&
		a.Date == b.Date &&
		a.StartTime == b.StartTime &&
		a.EndTime == b.EndTime
}

// DiffGuard validates a wholesale slot-list replacement: every booked
// slot in old must survive, by value, into next. The booked flag
// itself is carried over from old so the editing path can never flip
// it; only the booking/cancellation path owns that bit.
func DiffGuard(old, next []models.Slot) ([]models.Slot, error) {
	for _, o := range old {
		if !o.IsBooked {
			continue
		}
		found := false
		for _, n := range next {
			if sameSlot(o, n) {
				found = true
				break
			}
		}
		if !found {
			return nil, &BookedSlotError{Slot: o}
		}
	}

	out := make([]models.Slot, len(next))
	for i, n := range next {
		n.IsBooked = false
		for _, o := range old {
			if o.IsBooked && sameSlot(o, n) {
				n.IsBooked = true
				break
			}
		}
		out[i] = n
	}
	return out, nil
}
