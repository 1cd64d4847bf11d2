package models

import "time"

// Booking status values. Cancellation is a status transition, never a
// record deletion.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// Payment status values on a booking.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Session modes.
const (
	ModeChat  = "chat"
	ModeCall  = "call"
	ModeVideo = "video"
)

// Booking is a reserved, priced time window with a mentor. For a given
// mentor, non-cancelled bookings on the same date are pairwise
// non-overlapping in the half-open interval [StartTime, EndTime).
type Booking struct {
	ID            string    `bson:"id" json:"id"`
	MentorID      string    `bson:"mentorId" json:"mentorId"`
	UserID        string    `bson:"userId" json:"userId"`
	Date          string    `bson:"date" json:"date"` // "YYYY-MM-DD"
	StartTime     string    `bson:"startTime" json:"startTime"`
	EndTime       string    `bson:"endTime" json:"endTime"`
	Status        string    `bson:"status" json:"status"`
	SessionType   string    `bson:"sessionType" json:"sessionType"`
	Price         float64   `bson:"price" json:"price"`
	PaymentStatus string    `bson:"paymentStatus" json:"paymentStatus"`
	Notes         string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ValidMode reports whether m is a recognized session mode.
func ValidMode(m string) bool {
	return m == ModeChat || m == ModeCall || m == ModeVideo
}
