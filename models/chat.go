package models

import "time"

// ChatRoom is the 1:1 realtime context bound to exactly one booking.
// Created lazily on the first gated access attempt by either
// participant. Participants are User account IDs.
type ChatRoom struct {
	ID              string         `bson:"id" json:"id"`
	BookingID       string         `bson:"bookingId" json:"bookingId"`
	Participants    []string       `bson:"participants" json:"participants"`
	LastMessage     string         `bson:"lastMessage" json:"lastMessage"`
	LastMessageTime time.Time      `bson:"lastMessageTime" json:"lastMessageTime"`
	UnreadCount     map[string]int `bson:"unreadCount" json:"unreadCount"`
	IsActive        bool           `bson:"isActive" json:"isActive"`
	CreatedAt       time.Time      `bson:"createdAt" json:"createdAt"`
}

// Message is an append-only chat message. IsRead is the only mutable
// field, flipped in bulk by mark-read scoped to (room, receiver).
type Message struct {
	ID         string    `bson:"id" json:"id"`
	RoomID     string    `bson:"roomId" json:"roomId"`
	SenderID   string    `bson:"senderId" json:"senderId"`
	ReceiverID string    `bson:"receiverId" json:"receiverId"`
	Body       string    `bson:"message" json:"message"`
	IsRead     bool      `bson:"isRead" json:"isRead"`
	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
}
