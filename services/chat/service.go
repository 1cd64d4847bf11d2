// Package chat owns chat room records and message history. Rooms are
// bound one-to-one to bookings and created lazily on the first access
// attempt that passes the session gate.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "mentorhub/database/repository/booking"
	chatRepo "mentorhub/database/repository/chat"
	mentorRepo "mentorhub/database/repository/mentor"
	userRepo "mentorhub/database/repository/user"
	"mentorhub/models"
	"mentorhub/services/access"
)

type Service struct {
	Rooms    chatRepo.ChatRepository
	Bookings bookingRepo.BookingRepository
	Mentors  mentorRepo.MentorRepository
	Users    userRepo.UserRepository
	Logger   *zap.Logger
}

// OpenRoom returns the room for a booking, creating it on first gated
// access. The caller must be a booking participant and the session
// window must be open.
func (s *Service) OpenRoom(ctx context.Context, bookingID, callerID, callerEmail string) (*models.ChatRoom, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	mentor, err := s.Mentors.GetByID(ctx, b.MentorID)
	if err != nil {
		return nil, err
	}

	if d := access.CanEnter(*b, mentor.Email, callerID, callerEmail, time.Now()); !d.Allowed {
		return nil, deniedError(d)
	}

	// The room's participants are user accounts; the mentor side is
	// resolved through the profile email.
	mentorUser, err := s.Users.GetByEmail(ctx, mentor.Email)
	if err != nil {
		return nil, fmt.Errorf("mentor user account not found for mentor %s: %w", mentor.ID, err)
	}

	room, err := s.Rooms.GetRoomByBookingID(ctx, bookingID)
	if err == nil {
		return room, nil
	}
	if err != chatRepo.ErrRoomNotFound {
		return nil, err
	}

	room = &models.ChatRoom{
		ID:           uuid.New().String(),
		BookingID:    bookingID,
		Participants: []string{b.UserID, mentorUser.ID},
		UnreadCount:  map[string]int{b.UserID: 0, mentorUser.ID: 0},
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	if err := s.Rooms.CreateRoom(ctx, room); err != nil {
		return nil, err
	}
	s.Logger.Info("chat room created",
		zap.String("roomId", room.ID), zap.String("bookingId", bookingID))
	return room, nil
}

// RoomForBooking returns an existing room; the caller must be a
// participant.
func (s *Service) RoomForBooking(ctx context.Context, bookingID, callerID string) (*models.ChatRoom, error) {
	room, err := s.Rooms.GetRoomByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(room, callerID) {
		return nil, &NotParticipantError{RoomID: room.ID}
	}
	return room, nil
}

// MessagesPage returns a page of room history in chronological order.
func (s *Service) MessagesPage(ctx context.Context, roomID, callerID string, limit, skip int64) ([]models.Message, error) {
	room, err := s.Rooms.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(room, callerID) {
		return nil, &NotParticipantError{RoomID: roomID}
	}
	if limit <= 0 {
		limit = 50
	}

	msgs, err := s.Rooms.MessagesByRoom(ctx, roomID, limit, skip)
	if err != nil {
		return nil, err
	}
	reverse(msgs)
	return msgs, nil
}

// RoomsForUser lists the caller's rooms, most recently active first.
func (s *Service) RoomsForUser(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	return s.Rooms.RoomsByParticipant(ctx, userID)
}

func isParticipant(room *models.ChatRoom, userID string) bool {
	for _, p := range room.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

func reverse(msgs []models.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
