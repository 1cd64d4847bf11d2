package models

import "time"

// Payment provider record states.
const (
	PaymentCreated = "created"
	PaymentSuccess = "success"
	PaymentFailed  = "failed"
)

// PaymentMetadata stashes the booking draft between order creation and
// settlement, and records why a settled payment could not be converted
// into a booking.
type PaymentMetadata struct {
	Date          string `bson:"date,omitempty" json:"date,omitempty"`
	StartTime     string `bson:"startTime,omitempty" json:"startTime,omitempty"`
	EndTime       string `bson:"endTime,omitempty" json:"endTime,omitempty"`
	Notes         string `bson:"notes,omitempty" json:"notes,omitempty"`
	FailureReason string `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
}

// Payment tracks one provider order through settlement. BookingID is
// populated only after a successful, race-free settlement.
type Payment struct {
	ID          string          `bson:"id" json:"id"`
	OrderID     string          `bson:"orderId" json:"orderId"`
	PaymentID   string          `bson:"paymentId,omitempty" json:"paymentId,omitempty"`
	Signature   string          `bson:"signature,omitempty" json:"signature,omitempty"`
	Amount      float64         `bson:"amount" json:"amount"`
	Currency    string          `bson:"currency" json:"currency"`
	Status      string          `bson:"status" json:"status"`
	BookingID   string          `bson:"bookingId,omitempty" json:"bookingId,omitempty"`
	UserID      string          `bson:"userId" json:"userId"`
	MentorID    string          `bson:"mentorId" json:"mentorId"`
	SessionType string          `bson:"sessionType" json:"sessionType"`
	Metadata    PaymentMetadata `bson:"metadata" json:"metadata"`
	CreatedAt   time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time       `bson:"updatedAt" json:"updatedAt"`
}
