package models

import "time"

// Slot is a declared interval of mentor availability, either recurring
// by weekday (Day set) or pinned to a calendar date (Date set,
// "YYYY-MM-DD"). Times are zero-padded "HH:MM". A slot with
// IsBooked=true is referenced by an active booking and must not be
// removed or altered until that booking is cancelled.
type Slot struct {
	Day          string   `bson:"day,omitempty" json:"day,omitempty"`
	Date         string   `bson:"date,omitempty" json:"date,omitempty"`
	StartTime    string   `bson:"startTime" json:"startTime"`
	EndTime      string   `bson:"endTime" json:"endTime"`
	IsBooked     bool     `bson:"isBooked" json:"isBooked"`
	SessionTypes []string `bson:"sessionTypes,omitempty" json:"sessionTypes,omitempty"`
}

// Mentor is the published mentor profile. It is a separate record from
// the mentor's User account; the two are linked by the Email field.
type Mentor struct {
	ID         string    `bson:"id" json:"id"`
	Name       string    `bson:"name" json:"name"`
	Email      string    `bson:"email" json:"email"`
	Category   string    `bson:"category,omitempty" json:"category,omitempty"`
	HourlyRate float64   `bson:"hourlyRate,omitempty" json:"hourlyRate,omitempty"`
	Slots      []Slot    `bson:"slots" json:"slots"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}
