package scheduling

import (
	"context"
	"testing"

	"mentorhub/models"
)

// fakeOverlapSource answers overlap queries from an in-memory booking
// list using the same half-open interval rule as the store.
type fakeOverlapSource struct {
	bookings []models.Booking
	lastCall [4]string
}

func (f *fakeOverlapSource) FindOverlapping(ctx context.Context, mentorID, date, startTime, endTime string) (*models.Booking, error) {
	f.lastCall = [4]string{mentorID, date, startTime, endTime}
	for i, b := range f.bookings {
		if b.MentorID != mentorID || b.Date != date || b.Status == models.BookingCancelled {
			continue
		}
		if Overlaps(b.StartTime, b.EndTime, startTime, endTime) {
			return &f.bookings[i], nil
		}
	}
	return nil, nil
}

func TestHasOverlapNormalizesBeforeQuerying(t *testing.T) {
	src := &fakeOverlapSource{bookings: []models.Booking{
		{MentorID: "m1", Date: "2026-03-09", StartTime: "09:00", EndTime: "10:00", Status: models.BookingConfirmed},
	}}
	ledger := NewLedger(src)

	// Unpadded "9:30" must be compared as "09:30", not lexicographically
	// as-is.
	taken, err := ledger.HasOverlap(context.Background(), "m1", "2026-03-09", "9:30", "10:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !taken {
		t.Error("expected overlap for 9:30-10:30 against 09:00-10:00")
	}
	if src.lastCall[2] != "09:30" {
		t.Errorf("query used unnormalized start %q", src.lastCall[2])
	}
}

func TestHasOverlapBackToBackIsFree(t *testing.T) {
	src := &fakeOverlapSource{bookings: []models.Booking{
		{MentorID: "m1", Date: "2026-03-09", StartTime: "09:00", EndTime: "10:00", Status: models.BookingConfirmed},
	}}
	ledger := NewLedger(src)

	taken, err := ledger.HasOverlap(context.Background(), "m1", "2026-03-09", "10:00", "11:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if taken {
		t.Error("back-to-back window must be free")
	}
}

func TestHasOverlapRejectsInvertedWindow(t *testing.T) {
	ledger := NewLedger(&fakeOverlapSource{})
	if _, err := ledger.HasOverlap(context.Background(), "m1", "2026-03-09", "11:00", "10:00"); err == nil {
		t.Error("expected error for inverted window")
	}
	if _, err := ledger.HasOverlap(context.Background(), "m1", "2026-03-09", "10:00", "10:00"); err == nil {
		t.Error("expected error for zero-length window")
	}
}
