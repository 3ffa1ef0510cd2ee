// FILE: database/repository/booking/indexes.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the necessary indexes on the bookings collection.
func (r *mongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		// Availability reads every booking for a category and day.
		{
			Keys:    bson.D{{Key: "serviceCategory", Value: 1}, {Key: "selectedDate", Value: 1}, {Key: "selectedTime", Value: 1}},
			Options: options.Index().SetName("category_date_time_idx"),
		},
		// Webhook lookups.
		{
			Keys:    bson.D{{Key: "payment.gatewayOrderId", Value: 1}},
			Options: options.Index().SetName("gateway_order_idx").SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "subjectRef", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("subject_created_idx"),
		},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}
