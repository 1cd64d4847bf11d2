package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"mentorhub/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// CreateIfFree runs the overlap check and the insert inside one mongo
// transaction so concurrent creates for the same mentor window cannot
// both pass the check. On deployments without replica-set transactions
// it degrades to a plain check-then-insert; the settlement-time
// re-check remains the authoritative guard for the paid path.
func (r *MongoBookingRepo) CreateIfFree(ctx context.Context, booking *models.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return r.createIfFreePlain(ctx, booking)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		filter := overlapFilter(booking.MentorID, booking.Date, booking.StartTime, booking.EndTime)
		if err := r.coll.FindOne(sc, filter).Err(); err == nil {
			return ErrOverlap
		} else if err != mongo.ErrNoDocuments {
			return fmt.Errorf("overlap query failed: %w", err)
		}

		if _, err := r.coll.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			// Standalone mongod: no transaction support.
			return r.createIfFreePlain(sc, booking)
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if err == ErrOverlap {
			return ErrOverlap
		}
		return fmt.Errorf("booking transaction failed: %w", err)
	}

	return nil
}

func (r *MongoBookingRepo) createIfFreePlain(ctx context.Context, booking *models.Booking) error {
	existing, err := r.FindOverlapping(ctx, booking.MentorID, booking.Date, booking.StartTime, booking.EndTime)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrOverlap
	}
	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("insert booking failed: %w", err)
	}
	return nil
}
