// Package access decides, for every entry attempt, whether a caller
// may use a booking's live channel. The decision is a pure function of
// the booking, the wall clock, and the caller identity; it is
// re-evaluated on every attempt and never cached.
package access

import (
	"time"

	"mentorhub/models"
)

// Deny reasons, in rule order.
const (
	ReasonPaymentRequired = "payment required"
	ReasonInvalidWindow   = "session window invalid"
	ReasonNotYetAvailable = "not yet available"
	ReasonSessionEnded    = "session ended"
	ReasonUnauthorized    = "unauthorized"
)

// Decision is the outcome of an access check. RetryAt is set only for
// not-yet-available denials.
type Decision struct {
	Allowed bool
	Reason  string
	RetryAt *time.Time
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// SessionWindow combines the booking's date with its times at minute
// precision, seconds zeroed. Policy: both fields are interpreted in
// the server's local calendar (time.Local); participants in other
// zones are evaluated against this one clock, so both always see the
// same window.
func SessionWindow(b models.Booking) (start, end time.Time, err error) {
	day, err := time.ParseInLocation("2006-01-02", b.Date, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	st, err := time.ParseInLocation("15:04", b.StartTime, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	et, err := time.ParseInLocation("15:04", b.EndTime, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start = time.Date(day.Year(), day.Month(), day.Day(), st.Hour(), st.Minute(), 0, 0, time.Local)
	end = time.Date(day.Year(), day.Month(), day.Day(), et.Hour(), et.Minute(), 0, 0, time.Local)
	return start, end, nil
}

// CanEnter evaluates the entry rules in order: payment, session start,
// session end, participant identity.
//
// The mentor side is identified by matching the caller's account email
// against the mentor profile's email, because a mentor's profile and
// account are separate records linked only by that field. Known
// data-integrity risk: the link breaks if either email is edited
// independently; a stable foreign key would fix it at the data model.
func CanEnter(b models.Booking, mentorEmail, callerID, callerEmail string, now time.Time) Decision {
	if b.PaymentStatus != models.PaymentStatusPaid {
		return deny(ReasonPaymentRequired)
	}

	// A booking whose window cannot be parsed is a data defect, not a
	// caller fault. Still denied, but with its own reason.
	start, end, err := SessionWindow(b)
	if err != nil {
		return deny(ReasonInvalidWindow)
	}
	if now.Before(start) {
		d := deny(ReasonNotYetAvailable)
		d.RetryAt = &start
		return d
	}
	if now.After(end) {
		return deny(ReasonSessionEnded)
	}

	isMentee := callerID != "" && callerID == b.UserID
	isMentor := callerEmail != "" && mentorEmail != "" && callerEmail == mentorEmail
	if !isMentee && !isMentor {
		return deny(ReasonUnauthorized)
	}

	return allow()
}
