// Package payment bridges the external payment provider to the
// booking lifecycle. Two-phase protocol: an order is created with the
// booking draft stashed on the payment record, and at settlement the
// signature is verified, the slot re-checked, and only then is the
// booking written. Signature comes before the slot re-check and the
// re-check before booking creation, so no booking ever results from an
// unverified payment or a double-paid slot.
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingRepo "mentorhub/database/repository/booking"
	mentorRepo "mentorhub/database/repository/mentor"
	paymentRepo "mentorhub/database/repository/payment"
	"mentorhub/models"
	"mentorhub/services/booking"
	"mentorhub/services/scheduling"
)

const failureSlotTaken = "slot taken during payment"

// ReminderScheduler queues a session-start reminder. Optional; a nil
// scheduler disables reminders.
type ReminderScheduler interface {
	ScheduleSessionReminder(b *models.Booking, participants []string) error
}

// OrderRequest carries a create-order call: the amount, the session
// mode, the mentor, and the booking draft to replay at settlement.
type OrderRequest struct {
	Amount      float64
	Currency    string
	MentorID    string
	UserID      string
	SessionType string
	Date        string
	StartTime   string
	EndTime     string
	Notes       string
}

// OrderResponse is returned to the client to start checkout.
type OrderResponse struct {
	OrderID         string  `json:"orderId"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	PaymentRecordID string  `json:"paymentRecordId"`
}

// VerifyResult bundles the settled payment and the booking it created.
type VerifyResult struct {
	Payment *models.Payment `json:"payment"`
	Booking *models.Booking `json:"booking"`
}

// Gate is the payment reconciliation gate.
type Gate struct {
	Orders    OrderClient // nil when the provider is unconfigured
	KeySecret string
	Payments  paymentRepo.PaymentRepository
	Bookings  bookingRepo.BookingRepository
	Mentors   mentorRepo.MentorRepository
	Ledger    *scheduling.Ledger
	Reminders ReminderScheduler
	Logger    *zap.Logger
}

// CreateOrder registers a provider order and persists the payment
// record in created status with the draft stashed in metadata. No
// booking exists yet.
func (g *Gate) CreateOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error) {
	if g.Orders == nil {
		return nil, ErrProviderUnavailable
	}
	if req.Amount <= 0 {
		return nil, &booking.ValidationError{Message: "amount must be positive"}
	}
	if !models.ValidMode(req.SessionType) {
		return nil, &booking.ValidationError{Message: "sessionType must be one of chat, call, video"}
	}

	date, err := scheduling.NormalizeDate(req.Date)
	if err != nil {
		return nil, &booking.ValidationError{Message: err.Error()}
	}
	start, err := scheduling.NormalizeClock(req.StartTime)
	if err != nil {
		return nil, &booking.ValidationError{Message: err.Error()}
	}
	end, err := scheduling.NormalizeClock(req.EndTime)
	if err != nil {
		return nil, &booking.ValidationError{Message: err.Error()}
	}

	if _, err := g.Mentors.GetByID(ctx, req.MentorID); err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	receipt := fmt.Sprintf("receipt_%d", time.Now().UnixMilli())
	orderID, err := g.Orders.CreateOrder(int64(req.Amount*100), currency, receipt, map[string]interface{}{
		"userId":      req.UserID,
		"mentorId":    req.MentorID,
		"sessionType": req.SessionType,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &models.Payment{
		ID:          uuid.New().String(),
		OrderID:     orderID,
		Amount:      req.Amount,
		Currency:    currency,
		Status:      models.PaymentCreated,
		UserID:      req.UserID,
		MentorID:    req.MentorID,
		SessionType: req.SessionType,
		Metadata: models.PaymentMetadata{
			Date:      date,
			StartTime: start,
			EndTime:   end,
			Notes:     req.Notes,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := g.Payments.Create(ctx, p); err != nil {
		return nil, err
	}

	g.Logger.Info("payment order created",
		zap.String("orderId", orderID), zap.String("paymentId", p.ID))
	return &OrderResponse{
		OrderID:         orderID,
		Amount:          req.Amount,
		Currency:        currency,
		PaymentRecordID: p.ID,
	}, nil
}

// Verify settles a payment. Step order is load-bearing:
//
//  1. recompute and compare the signature, unconditionally and before
//     any state mutation;
//  2. mark the payment successful;
//  3. re-run the slot overlap check with the stashed draft; if the
//     window was taken during checkout, mark the payment failed with a
//     recorded reason and return a conflict without creating anything;
//  4. create the confirmed, paid booking and link it.
//
// Refunds for step-3 failures go through the provider and are the
// caller's concern.
func (g *Gate) Verify(ctx context.Context, orderID, providerPaymentID, signature, paymentRecordID string) (*VerifyResult, error) {
	if !signatureValid(g.KeySecret, orderID, providerPaymentID, signature) {
		g.Logger.Warn("settlement signature mismatch", zap.String("orderId", orderID))
		return nil, ErrInvalidSignature
	}

	p, err := g.Payments.GetByID(ctx, paymentRecordID)
	if err != nil {
		return nil, err
	}

	p.PaymentID = providerPaymentID
	p.Signature = signature
	p.Status = models.PaymentSuccess
	if err := g.Payments.Update(ctx, p); err != nil {
		return nil, err
	}

	draft := p.Metadata
	taken, err := g.Ledger.HasOverlap(ctx, p.MentorID, draft.Date, draft.StartTime, draft.EndTime)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, g.failSlotTaken(ctx, p)
	}

	now := time.Now()
	b := &models.Booking{
		ID:            uuid.New().String(),
		MentorID:      p.MentorID,
		UserID:        p.UserID,
		Date:          draft.Date,
		StartTime:     draft.StartTime,
		EndTime:       draft.EndTime,
		Status:        models.BookingConfirmed,
		SessionType:   p.SessionType,
		Price:         p.Amount,
		PaymentStatus: models.PaymentStatusPaid,
		Notes:         draft.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := g.Bookings.CreateIfFree(ctx, b); err != nil {
		// A concurrent settlement can still win between the re-check
		// and the insert; same terminal outcome.
		if err == bookingRepo.ErrOverlap {
			return nil, g.failSlotTaken(ctx, p)
		}
		return nil, err
	}

	p.BookingID = b.ID
	if err := g.Payments.Update(ctx, p); err != nil {
		return nil, err
	}

	key := mentorRepo.SlotKey{
		Day:       scheduling.Weekday(b.Date),
		Date:      b.Date,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	}
	if err := g.Mentors.SetSlotBooked(ctx, b.MentorID, key, true); err != nil {
		g.Logger.Warn("failed to mark slot booked after settlement",
			zap.String("bookingId", b.ID), zap.Error(err))
	}

	if g.Reminders != nil {
		if err := g.Reminders.ScheduleSessionReminder(b, []string{b.UserID}); err != nil {
			g.Logger.Warn("failed to schedule session reminder",
				zap.String("bookingId", b.ID), zap.Error(err))
		}
	}

	g.Logger.Info("payment settled",
		zap.String("orderId", orderID), zap.String("bookingId", b.ID))
	return &VerifyResult{Payment: p, Booking: b}, nil
}

func (g *Gate) failSlotTaken(ctx context.Context, p *models.Payment) error {
	p.Status = models.PaymentFailed
	p.Metadata.FailureReason = failureSlotTaken
	if err := g.Payments.Update(ctx, p); err != nil {
		return err
	}
	g.Logger.Warn("settlement lost slot race",
		zap.String("orderId", p.OrderID), zap.String("paymentId", p.ID))
	return &SlotTakenError{PaymentID: p.ID}
}

// GetByID returns a payment record.
func (g *Gate) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	return g.Payments.GetByID(ctx, id)
}

// HistoryForUser returns the caller's payments, newest first.
func (g *Gate) HistoryForUser(ctx context.Context, userID string) ([]models.Payment, error) {
	return g.Payments.ListByUser(ctx, userID)
}
