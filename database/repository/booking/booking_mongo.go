package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"petcare/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// FindByID retrieves a booking by its public id.
func (r *mongoBookingRepo) FindByID(ctx context.Context, id string) (*models.BookingRecord, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

// FindByGatewayOrderID resolves a gateway order back to its booking.
func (r *mongoBookingRepo) FindByGatewayOrderID(ctx context.Context, orderID string) (*models.BookingRecord, error) {
	return r.findOne(ctx, bson.M{"payment.gatewayOrderId": orderID})
}

func (r *mongoBookingRepo) findOne(ctx context.Context, filter bson.M) (*models.BookingRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var record models.BookingRecord
	if err := r.coll.FindOne(ctx, filter).Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error fetching booking: %w", err)
	}
	return &record, nil
}

// ListByCategoryDate returns all bookings for a category on a date, in any status.
func (r *mongoBookingRepo) ListByCategoryDate(ctx context.Context, category, date string) ([]models.BookingRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"serviceCategory": category, "selectedDate": date}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error finding bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.BookingRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return records, nil
}

// AttachOrder stores the gateway order on a booking that is still Pending.
func (r *mongoBookingRepo) AttachOrder(ctx context.Context, id string, payment models.PaymentRef) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.StatusPending}
	update := bson.M{"$set": bson.M{
		"payment.gatewayOrderId": payment.GatewayOrderID,
		"payment.amount":         payment.Amount,
		"payment.currency":       payment.Currency,
		"payment.status":         payment.Status,
		"updatedAt":              time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to attach gateway order: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missOrConflict(ctx, id)
	}
	return nil
}

// FlagForReview marks a booking for manual payment follow-up.
func (r *mongoBookingRepo) FlagForReview(ctx context.Context, id, note string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set":  bson.M{"reviewRequired": true, "updatedAt": time.Now().UTC()},
		"$push": bson.M{"reviewNotes": note},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to flag booking for review: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// missOrConflict explains why a status-filtered write matched nothing.
func (r *mongoBookingRepo) missOrConflict(ctx context.Context, id string) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("error checking booking existence: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrStatusConflict
}
