package models

// ReminderPayload is the queued session-reminder task body. It carries
// enough to rebuild the notification at fire time; participant
// connections are resolved when the task runs, not when it is queued.
type ReminderPayload struct {
	BookingID   string `json:"bookingId"`
	UserID      string `json:"userId"`
	MentorID    string `json:"mentorId"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	SessionType string `json:"sessionType"`
}
