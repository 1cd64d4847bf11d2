package payment

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	bookingRepo "mentorhub/database/repository/booking"
	mentorRepo "mentorhub/database/repository/mentor"
	paymentRepo "mentorhub/database/repository/payment"
	"mentorhub/models"
	"mentorhub/services/scheduling"
)

const testSecret = "test_key_secret"

type fakeOrderClient struct {
	orders int
	fail   bool
}

func (f *fakeOrderClient) CreateOrder(amountSubunits int64, currency, receipt string, notes map[string]interface{}) (string, error) {
	if f.fail {
		return "", errors.New("provider down")
	}
	f.orders++
	return "order_test_1", nil
}

type fakePaymentRepo struct {
	byID map[string]*models.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{byID: make(map[string]*models.Payment)}
}

func (f *fakePaymentRepo) Create(ctx context.Context, p *models.Payment) error {
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePaymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, paymentRepo.ErrNotFound
}

func (f *fakePaymentRepo) GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	for _, p := range f.byID {
		if p.OrderID == orderID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, paymentRepo.ErrNotFound
}

func (f *fakePaymentRepo) Update(ctx context.Context, p *models.Payment) error {
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePaymentRepo) ListByUser(ctx context.Context, userID string) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.byID {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeBookingStore struct {
	bookings []*models.Booking
}

func (f *fakeBookingStore) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	for _, b := range f.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, bookingRepo.ErrNotFound
}

func (f *fakeBookingStore) FindOverlapping(ctx context.Context, mentorID, date, startTime, endTime string) (*models.Booking, error) {
	for _, b := range f.bookings {
		if b.MentorID != mentorID || b.Date != date || b.Status == models.BookingCancelled {
			continue
		}
		if scheduling.Overlaps(b.StartTime, b.EndTime, startTime, endTime) {
			return b, nil
		}
	}
	return nil, nil
}

func (f *fakeBookingStore) CreateIfFree(ctx context.Context, b *models.Booking) error {
	if existing, _ := f.FindOverlapping(ctx, b.MentorID, b.Date, b.StartTime, b.EndTime); existing != nil {
		return bookingRepo.ErrOverlap
	}
	f.bookings = append(f.bookings, b)
	return nil
}

func (f *fakeBookingStore) UpdateStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	b, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Status = status
	return b, nil
}

func (f *fakeBookingStore) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return nil, nil
}

func (f *fakeBookingStore) ListByMentor(ctx context.Context, mentorID string) ([]models.Booking, error) {
	return nil, nil
}

type stubMentors struct {
	mentor *models.Mentor
	flips  int
}

func (s *stubMentors) GetByID(ctx context.Context, id string) (*models.Mentor, error) {
	if s.mentor != nil && s.mentor.ID == id {
		return s.mentor, nil
	}
	return nil, mentorRepo.ErrNotFound
}

func (s *stubMentors) GetByEmail(ctx context.Context, email string) (*models.Mentor, error) {
	return nil, mentorRepo.ErrNotFound
}

func (s *stubMentors) UpdateSlots(ctx context.Context, id string, slots []models.Slot) error {
	return nil
}

func (s *stubMentors) SetSlotBooked(ctx context.Context, mentorID string, key mentorRepo.SlotKey, booked bool) error {
	s.flips++
	return nil
}

type recordingReminders struct {
	scheduled []*models.Booking
}

func (r *recordingReminders) ScheduleSessionReminder(b *models.Booking, participants []string) error {
	r.scheduled = append(r.scheduled, b)
	return nil
}

func newGate(orders OrderClient, bookings *fakeBookingStore) (*Gate, *fakePaymentRepo, *recordingReminders) {
	payments := newFakePaymentRepo()
	reminders := &recordingReminders{}
	g := &Gate{
		Orders:    orders,
		KeySecret: testSecret,
		Payments:  payments,
		Bookings:  bookings,
		Mentors:   &stubMentors{mentor: &models.Mentor{ID: "m1"}},
		Ledger:    scheduling.NewLedger(bookings),
		Reminders: reminders,
		Logger:    zap.NewNop(),
	}
	return g, payments, reminders
}

func orderRequest() OrderRequest {
	return OrderRequest{
		Amount:      75,
		MentorID:    "m1",
		UserID:      "u1",
		SessionType: models.ModeVideo,
		Date:        "2030-06-10",
		StartTime:   "10:00",
		EndTime:     "11:00",
	}
}

func TestCreateOrderStashesDraft(t *testing.T) {
	g, payments, _ := newGate(&fakeOrderClient{}, &fakeBookingStore{})

	res, err := g.CreateOrder(context.Background(), orderRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.OrderID != "order_test_1" {
		t.Errorf("orderId = %q", res.OrderID)
	}

	p, err := payments.GetByID(context.Background(), res.PaymentRecordID)
	if err != nil {
		t.Fatalf("payment record missing: %v", err)
	}
	if p.Status != models.PaymentCreated {
		t.Errorf("status = %q, want created", p.Status)
	}
	if p.Metadata.Date != "2030-06-10" || p.Metadata.StartTime != "10:00" || p.Metadata.EndTime != "11:00" {
		t.Errorf("draft not stashed: %+v", p.Metadata)
	}
	if p.BookingID != "" {
		t.Error("no booking may exist before settlement")
	}
}

func TestCreateOrderWithoutProvider(t *testing.T) {
	g, _, _ := newGate(nil, &fakeBookingStore{})
	if _, err := g.CreateOrder(context.Background(), orderRequest()); err != ErrProviderUnavailable {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	bookings := &fakeBookingStore{}
	g, payments, _ := newGate(&fakeOrderClient{}, bookings)
	ctx := context.Background()

	res, err := g.CreateOrder(ctx, orderRequest())
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	_, err = g.Verify(ctx, res.OrderID, "pay_1", "forged-signature", res.PaymentRecordID)
	if err != ErrInvalidSignature {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	// Nothing may change: the record stays created and no booking
	// exists, even though the slot is free.
	p, _ := payments.GetByID(ctx, res.PaymentRecordID)
	if p.Status != models.PaymentCreated {
		t.Errorf("payment status changed to %q on bad signature", p.Status)
	}
	if len(bookings.bookings) != 0 {
		t.Error("booking created from unverified payment")
	}
}

func TestVerifyRejectsTamperedSignatureWhenSlotTaken(t *testing.T) {
	// Same forged signature, but the window was also lost during
	// checkout. The signature check comes first, so the outcome is
	// identical to the free-slot case: ErrInvalidSignature, record
	// still created, no failure reason, no booking, no reminder.
	bookings := &fakeBookingStore{bookings: []*models.Booking{{
		ID:        "b-rival",
		MentorID:  "m1",
		UserID:    "u2",
		Date:      "2030-06-10",
		StartTime: "10:30",
		EndTime:   "11:30",
		Status:    models.BookingConfirmed,
	}}}
	g, payments, reminders := newGate(&fakeOrderClient{}, bookings)
	ctx := context.Background()

	res, err := g.CreateOrder(ctx, orderRequest())
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	_, err = g.Verify(ctx, res.OrderID, "pay_1", "forged-signature", res.PaymentRecordID)
	if err != ErrInvalidSignature {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	p, _ := payments.GetByID(ctx, res.PaymentRecordID)
	if p.Status != models.PaymentCreated {
		t.Errorf("payment status = %q, want created", p.Status)
	}
	if p.Metadata.FailureReason != "" {
		t.Errorf("slot re-check ran before the signature check: %q", p.Metadata.FailureReason)
	}
	if len(bookings.bookings) != 1 {
		t.Error("booking created from unverified payment")
	}
	if len(reminders.scheduled) != 0 {
		t.Error("reminder scheduled from unverified payment")
	}
}

func TestVerifySettlesAndCreatesBooking(t *testing.T) {
	bookings := &fakeBookingStore{}
	g, payments, reminders := newGate(&fakeOrderClient{}, bookings)
	ctx := context.Background()

	res, err := g.CreateOrder(ctx, orderRequest())
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	sig := expectedSignature(testSecret, res.OrderID, "pay_1")
	out, err := g.Verify(ctx, res.OrderID, "pay_1", sig, res.PaymentRecordID)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}

	if out.Booking.Status != models.BookingConfirmed {
		t.Errorf("booking status = %q, want confirmed", out.Booking.Status)
	}
	if out.Booking.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("booking paymentStatus = %q, want paid", out.Booking.PaymentStatus)
	}
	if out.Payment.Status != models.PaymentSuccess {
		t.Errorf("payment status = %q, want success", out.Payment.Status)
	}
	if out.Payment.BookingID != out.Booking.ID {
		t.Error("payment not linked to booking")
	}

	p, _ := payments.GetByID(ctx, res.PaymentRecordID)
	if p.BookingID != out.Booking.ID || p.PaymentID != "pay_1" {
		t.Errorf("persisted payment incomplete: %+v", p)
	}
	if len(reminders.scheduled) != 1 {
		t.Errorf("expected one reminder, got %d", len(reminders.scheduled))
	}
}

func TestVerifyLosesSlotRace(t *testing.T) {
	// Someone books the window while checkout is in flight.
	bookings := &fakeBookingStore{bookings: []*models.Booking{{
		ID:        "b-rival",
		MentorID:  "m1",
		UserID:    "u2",
		Date:      "2030-06-10",
		StartTime: "10:30",
		EndTime:   "11:30",
		Status:    models.BookingConfirmed,
	}}}
	g, payments, reminders := newGate(&fakeOrderClient{}, bookings)
	ctx := context.Background()

	res, err := g.CreateOrder(ctx, orderRequest())
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	sig := expectedSignature(testSecret, res.OrderID, "pay_1")
	_, err = g.Verify(ctx, res.OrderID, "pay_1", sig, res.PaymentRecordID)
	var taken *SlotTakenError
	if !errors.As(err, &taken) {
		t.Fatalf("expected *SlotTakenError, got %v", err)
	}

	p, _ := payments.GetByID(ctx, res.PaymentRecordID)
	if p.Status != models.PaymentFailed {
		t.Errorf("payment status = %q, want failed", p.Status)
	}
	if p.Metadata.FailureReason != "slot taken during payment" {
		t.Errorf("failureReason = %q", p.Metadata.FailureReason)
	}
	if len(bookings.bookings) != 1 {
		t.Error("no booking may be created for the losing settlement")
	}
	if len(reminders.scheduled) != 0 {
		t.Error("no reminder may be scheduled for a failed settlement")
	}
}

func TestSignatureArithmetic(t *testing.T) {
	sig := expectedSignature("secret", "order_1", "pay_1")
	if !signatureValid("secret", "order_1", "pay_1", sig) {
		t.Error("valid signature rejected")
	}
	if signatureValid("secret", "order_1", "pay_2", sig) {
		t.Error("signature accepted for a different payment id")
	}
	if signatureValid("other", "order_1", "pay_1", sig) {
		t.Error("signature accepted under a different secret")
	}
}
