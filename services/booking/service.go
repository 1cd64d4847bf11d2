// Package booking owns the booking lifecycle: pending → confirmed →
// completed, with cancellation from pending or confirmed. Records are
// never deleted; cancellation is a status transition that also
// releases the mentor's slot.
package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "mentorhub/database/repository/booking"
	mentorRepo "mentorhub/database/repository/mentor"
	"mentorhub/models"
	"mentorhub/services/scheduling"
)

// CreateRequest carries the fields of a booking request.
type CreateRequest struct {
	MentorID    string
	UserID      string
	Date        string
	StartTime   string
	EndTime     string
	SessionType string
	Price       float64
	Notes       string
}

// Service is the booking lifecycle API.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Booking, error)
	GetFor(ctx context.Context, id, callerID, callerEmail string) (*models.Booking, error)
	ListForUser(ctx context.Context, userID string) ([]models.Booking, error)
	ListForMentor(ctx context.Context, mentorEmail string) ([]models.Booking, error)
}

type DefaultService struct {
	Repo    bookingRepo.BookingRepository
	Mentors mentorRepo.MentorRepository
	Ledger  *scheduling.Ledger
	Logger  *zap.Logger
}

// legal status transitions; completed and cancelled are terminal.
var transitions = map[string][]string{
	models.BookingPending:   {models.BookingConfirmed, models.BookingCancelled},
	models.BookingConfirmed: {models.BookingCompleted, models.BookingCancelled},
}

func allowedTransition(from, to string) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Create validates the request, normalizes its times, and inserts the
// booking atomically with the overlap check. A direct (unpaid) booking
// starts pending with paymentStatus pending.
func (s *DefaultService) Create(ctx context.Context, req CreateRequest) (*models.Booking, error) {
	if req.MentorID == "" || req.UserID == "" {
		return nil, &ValidationError{Message: "mentorId and userId are required"}
	}
	if !models.ValidMode(req.SessionType) {
		return nil, &ValidationError{Message: "sessionType must be one of chat, call, video"}
	}
	if req.Price < 0 {
		return nil, &ValidationError{Message: "price must not be negative"}
	}

	date, err := scheduling.NormalizeDate(req.Date)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	start, err := scheduling.NormalizeClock(req.StartTime)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	end, err := scheduling.NormalizeClock(req.EndTime)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if end <= start {
		return nil, &ValidationError{Message: "endTime must be after startTime"}
	}

	if _, err := s.Mentors.GetByID(ctx, req.MentorID); err != nil {
		return nil, err
	}

	now := time.Now()
	b := &models.Booking{
		ID:            uuid.New().String(),
		MentorID:      req.MentorID,
		UserID:        req.UserID,
		Date:          date,
		StartTime:     start,
		EndTime:       end,
		Status:        models.BookingPending,
		SessionType:   req.SessionType,
		Price:         req.Price,
		PaymentStatus: models.PaymentStatusPending,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.Repo.CreateIfFree(ctx, b); err != nil {
		if err == bookingRepo.ErrOverlap {
			return nil, &ConflictError{MentorID: req.MentorID, Date: date, StartTime: start, EndTime: end}
		}
		return nil, err
	}

	s.markSlot(ctx, b, true)

	s.Logger.Info("booking created",
		zap.String("bookingId", b.ID),
		zap.String("mentorId", b.MentorID),
		zap.String("window", b.Date+" "+b.StartTime+"-"+b.EndTime))
	return b, nil
}

// UpdateStatus applies a lifecycle transition. Cancellation releases
// the slot the booking occupied; completion is an administrative
// action, never time-driven.
func (s *DefaultService) UpdateStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	current, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if status == current.Status {
		return current, nil
	}
	if !allowedTransition(current.Status, status) {
		return nil, &InvalidTransitionError{From: current.Status, To: status}
	}

	updated, err := s.Repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	if status == models.BookingCancelled {
		s.markSlot(ctx, updated, false)
	}
	return updated, nil
}

// GetFor returns a booking to its mentee or its mentor; anyone else is
// rejected. The mentor side is resolved from the caller's account
// email, the same link ListForMentor uses.
func (s *DefaultService) GetFor(ctx context.Context, id, callerID, callerEmail string) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerID != "" && callerID == b.UserID {
		return b, nil
	}
	if callerEmail != "" {
		mentor, err := s.Mentors.GetByEmail(ctx, callerEmail)
		if err != nil && err != mentorRepo.ErrNotFound {
			return nil, err
		}
		if mentor != nil && mentor.ID == b.MentorID {
			return b, nil
		}
	}
	return nil, &NotParticipantError{BookingID: id}
}

func (s *DefaultService) ListForUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// ListForMentor resolves the mentor profile from the caller's account
// email, then lists that mentor's bookings.
func (s *DefaultService) ListForMentor(ctx context.Context, mentorEmail string) ([]models.Booking, error) {
	mentor, err := s.Mentors.GetByEmail(ctx, mentorEmail)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListByMentor(ctx, mentor.ID)
}

// markSlot flips isBooked on the slot matching the booking window by
// value. Best-effort: the window may not correspond to a published
// slot, and a cancelled booking must not fail over stale slot data.
func (s *DefaultService) markSlot(ctx context.Context, b *models.Booking, booked bool) {
	key := mentorRepo.SlotKey{
		Day:       scheduling.Weekday(b.Date),
		Date:      b.Date,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	}
	if err := s.Mentors.SetSlotBooked(ctx, b.MentorID, key, booked); err != nil {
		s.Logger.Warn("failed to update slot booked flag",
			zap.String("bookingId", b.ID), zap.Bool("booked", booked), zap.Error(err))
	}
}
