package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mentorhub/database"
	"mentorhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no booking matches the query.
	ErrNotFound = errors.New("booking not found")
	// ErrOverlap is returned by CreateIfFree when a non-cancelled
	// booking already occupies an overlapping window.
	ErrOverlap = errors.New("overlapping booking exists")
)

// BookingRepository defines methods for booking data access.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// FindOverlapping returns a non-cancelled booking for the mentor on
	// the given date whose [startTime, endTime) window overlaps the
	// given one, or nil if the window is free. Times must be
	// zero-padded "HH:MM"; the comparison is lexicographic.
	FindOverlapping(ctx context.Context, mentorID, date, startTime, endTime string) (*models.Booking, error)
	// CreateIfFree atomically re-runs the overlap check and inserts the
	// booking, returning ErrOverlap if the window was taken.
	CreateIfFree(ctx context.Context, booking *models.Booking) error
	UpdateStatus(ctx context.Context, id, status string) (*models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	ListByMentor(ctx context.Context, mentorID string) ([]models.Booking, error)
}

type MongoBookingRepo struct {
	coll *mongo.Collection
}

func NewMongoBookingRepo() *MongoBookingRepo {
	return &MongoBookingRepo{coll: database.DB().Collection("bookings")}
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &b, nil
}

// overlapFilter matches non-cancelled bookings on the same date whose
// half-open interval overlaps [startTime, endTime): an overlap exists
// iff existing.start < new.end AND existing.end > new.start.
// Back-to-back windows do not match.
func overlapFilter(mentorID, date, startTime, endTime string) bson.M {
	return bson.M{
		"mentorId":  mentorID,
		"date":      date,
		"status":    bson.M{"$ne": models.BookingCancelled},
		"startTime": bson.M{"$lt": endTime},
		"endTime":   bson.M{"$gt": startTime},
	}
}

func (r *MongoBookingRepo) FindOverlapping(ctx context.Context, mentorID, date, startTime, endTime string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	err := r.coll.FindOne(ctx, overlapFilter(mentorID, date, startTime, endTime)).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("overlap query failed: %w", err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) UpdateStatus(ctx context.Context, id, status string) (*models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var b models.Booking
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, update, opts).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update booking %s status: %w", id, err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"userId": userID})
}

func (r *MongoBookingRepo) ListByMentor(ctx context.Context, mentorID string) ([]models.Booking, error) {
	return r.list(ctx, bson.M{"mentorId": mentorID})
}

func (r *MongoBookingRepo) list(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "startTime", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cur.Close(ctx)

	var bookings []models.Booking
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}
