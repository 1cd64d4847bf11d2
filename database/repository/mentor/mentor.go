package mentorRepo

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

// ErrNotFound is returned when no mentor matches the query.
var ErrNotFound = errors.New("mentor not found")

// SlotKey identifies a slot by value (day/date + times), not by an
// internal identifier, because clients may resend the full slot list
// with regenerated IDs.
type SlotKey struct {
	Day       string
	Date      string
	StartTime string
	EndTime   string
}

// MentorRepository defines methods for mentor profile data access.
type MentorRepository interface {
	GetByID(ctx context.Context, id string) (*models.Mentor, error)
	GetByEmail(ctx context.Context, email string) (*models.Mentor, error)
	// UpdateSlots replaces the mentor's slot list wholesale.
	UpdateSlots(ctx context.Context, id string, slots []models.Slot) error
	// SetSlotBooked flips isBooked on the slot matching key by value.
	// Matching is by (startTime, endTime) plus either the specific date
	// or the recurrence weekday. A missing slot is not an error: direct
	// bookings are allowed for windows the mentor never published.
	SetSlotBooked(ctx context.Context, mentorID string, key SlotKey, booked bool) error
}

type MongoMentorRepo struct {
	coll *mongo.Collection
}

func NewMongoMentorRepo() *MongoMentorRepo {
	return &MongoMentorRepo{coll: database.DB().Collection("mentors")}
}

func (r *MongoMentorRepo) GetByID(ctx context.Context, id string) (*models.Mentor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var m models.Mentor
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mentor %s: %w", id, err)
	}
	return &m, nil
}

func (r *MongoMentorRepo) GetByEmail(ctx context.Context, email string) (*models.Mentor, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var m models.Mentor
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mentor by email: %w", err)
	}
	return &m, nil
}

func (r *MongoMentorRepo) UpdateSlots(ctx context.Context, id string, slots []models.Slot) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{"slots": slots, "updatedAt": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("failed to update slots for mentor %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// A slot pinned to the booking's calendar date takes precedence over a
// recurring weekday slot covering the same window; the weekday slot is
// touched only when no dated slot matches.
func (r *MongoMentorRepo) SetSlotBooked(ctx context.Context, mentorID string, key SlotKey, booked bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if key.Date != "" {
		matched, err := r.flipSlot(ctx, mentorID, datedSlotFilter(key), booked)
		if err != nil {
			return fmt.Errorf("failed to flip slot booked flag for mentor %s: %w", mentorID, err)
		}
		if matched > 0 {
			return nil
		}
	}
	if _, err := r.flipSlot(ctx, mentorID, weekdaySlotFilter(key), booked); err != nil {
		return fmt.Errorf("failed to flip slot booked flag for mentor %s: %w", mentorID, err)
	}
	return nil
}

// flipSlot sets isBooked on the slot matching elem. The document
// filter carries the same $elemMatch so the returned match count says
// whether such a slot exists at all, not just whether the mentor does.
func (r *MongoMentorRepo) flipSlot(ctx context.Context, mentorID string, elem bson.M, booked bool) (int64, error) {
	arrayElem := bson.M{}
	for k, v := range elem {
		arrayElem["s."+k] = v
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{arrayElem},
	})
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": mentorID, "slots": bson.M{"$elemMatch": elem}},
		bson.M{"$set": bson.M{"slots.$[s].isBooked": booked, "updatedAt": time.Now()}},
		opts,
	)
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func datedSlotFilter(key SlotKey) bson.M {
	return bson.M{
		"startTime": key.StartTime,
		"endTime":   key.EndTime,
		"date":      key.Date,
	}
}

// weekdaySlotFilter matches only recurring slots: a slot carrying any
// date is dated, not recurring, and must never be flipped by weekday.
func weekdaySlotFilter(key SlotKey) bson.M {
	return bson.M{
		"startTime": key.StartTime,
		"endTime":   key.EndTime,
		"day":       key.Day,
		"date":      bson.M{"$in": bson.A{"", nil}},
	}
}
