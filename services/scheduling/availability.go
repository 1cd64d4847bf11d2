package scheduling

import (
	"context"

	mentorRepo "mentorhub/database/repository/mentor"
	"mentorhub/models"
)

var weekdays = map[string]bool{
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true,
	"Friday": true, "Saturday": true, "Sunday": true,
}

// SlotError reports a malformed slot in an availability update.
type SlotError struct {
	Message string
}

func (e *SlotError) Error() string { return e.Message }

// Availability manages a mentor's published slot list.
type Availability struct {
	Mentors mentorRepo.MentorRepository
}

// UpdateSlots replaces the mentor's slot list after normalizing each
// entry and running the booked-slot diff guard. The mentor is resolved
// from the caller's account email.
func (a *Availability) UpdateSlots(ctx context.Context, mentorEmail string, slots []models.Slot) ([]models.Slot, error) {
	mentor, err := a.Mentors.GetByEmail(ctx, mentorEmail)
	if err != nil {
		return nil, err
	}

	normalized := make([]models.Slot, len(slots))
	for i, s := range slots {
		// A slot is recurring (weekday) or date-specific, not both.
		if s.Day == "" && s.Date == "" {
			return nil, &SlotError{Message: "slot needs a day or a date"}
		}
		if s.Day != "" && s.Date != "" {
			return nil, &SlotError{Message: "slot cannot have both a day and a date"}
		}
		if s.Day != "" && !weekdays[s.Day] {
			return nil, &SlotError{Message: "unknown weekday " + s.Day}
		}
		if s.Date != "" {
			if s.Date, err = NormalizeDate(s.Date); err != nil {
				return nil, &SlotError{Message: err.Error()}
			}
		}
		if s.StartTime, err = NormalizeClock(s.StartTime); err != nil {
			return nil, &SlotError{Message: err.Error()}
		}
		if s.EndTime, err = NormalizeClock(s.EndTime); err != nil {
			return nil, &SlotError{Message: err.Error()}
		}
		if s.EndTime <= s.StartTime {
			return nil, &SlotError{Message: "slot end must be after start"}
		}
		for _, mode := range s.SessionTypes {
			if !models.ValidMode(mode) {
				return nil, &SlotError{Message: "unknown session type " + mode}
			}
		}
		normalized[i] = s
	}

	guarded, err := DiffGuard(mentor.Slots, normalized)
	if err != nil {
		return nil, err
	}

	if err := a.Mentors.UpdateSlots(ctx, mentor.ID, guarded); err != nil {
		return nil, err
	}
	return guarded, nil
}
