package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"petcare/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// occupancyID is the _id of the counter document guarding one slot's capacity.
func occupancyID(key models.SlotKey) string {
	return key.ServiceCategory + "|" + key.Date + "|" + key.Time
}

// Reserve inserts the record and bumps the slot counter in one transaction.
// The counter update only matches while count < capacity; otherwise the upsert collides
// with the existing _id and the transaction aborts with ErrSlotFull.
func (r *mongoBookingRepo) Reserve(ctx context.Context, record *models.BookingRecord, capacity int) error {
	if capacity <= 0 {
		return ErrSlotFull
	}
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := r.claimSlot(sc, record.SlotKey(), capacity); err != nil {
			return err
		}
		if _, err := r.coll.InsertOne(sc, record); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotFull) {
			return ErrSlotFull
		}
		return fmt.Errorf("reserve transaction failed: %w", err)
	}
	return nil
}

// Transition is a compare-and-set on status. Moving out of a slot-holding status
// into one that does not hold a slot releases the counter in the same transaction.
func (r *mongoBookingRepo) Transition(
	ctx context.Context,
	id string,
	from, to models.BookingStatus,
	patch Patch,
) (*models.BookingRecord, error) {
	var updated models.BookingRecord
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		rec, err := r.casStatus(sc, id, from, to, patch.setFields(to))
		if err != nil {
			return err
		}
		if from.HoldsSlot() && !to.HoldsSlot() {
			if err := r.releaseSlot(sc, rec.SlotKey()); err != nil {
				return err
			}
		}
		updated = *rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Reschedule claims the new slot before releasing the old one so a failed claim leaves
// the booking and both counters unchanged.
func (r *mongoBookingRepo) Reschedule(
	ctx context.Context,
	id string,
	from models.BookingStatus,
	date, clock string,
	capacity int,
) (*models.BookingRecord, error) {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldKey := current.SlotKey()
	newKey := models.SlotKey{ServiceCategory: current.ServiceCategory, Date: date, Time: clock}

	var updated models.BookingRecord
	err = r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := r.claimSlot(sc, newKey, capacity); err != nil {
			return err
		}
		set := bson.M{
			"status":       models.StatusRescheduled,
			"selectedDate": date,
			"selectedTime": clock,
			"updatedAt":    time.Now().UTC(),
		}
		rec, err := r.casStatus(sc, id, from, models.StatusRescheduled, set)
		if err != nil {
			return err
		}
		if err := r.releaseSlot(sc, oldKey); err != nil {
			return err
		}
		updated = *rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *mongoBookingRepo) casStatus(sc mongo.SessionContext, id string, from, to models.BookingStatus, set bson.M) (*models.BookingRecord, error) {
	filter := bson.M{"id": id, "status": from}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var rec models.BookingRecord
	err := r.coll.FindOneAndUpdate(sc, filter, bson.M{"$set": set}, opts).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.missOrConflict(sc, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to move booking %s from %s to %s: %w", id, from, to, err)
	}
	return &rec, nil
}

func (r *mongoBookingRepo) claimSlot(sc mongo.SessionContext, key models.SlotKey, capacity int) error {
	filter := bson.M{"_id": occupancyID(key), "count": bson.M{"$lt": capacity}}
	update := bson.M{
		"$inc": bson.M{"count": 1},
		"$setOnInsert": bson.M{
			"serviceCategory": key.ServiceCategory,
			"date":            key.Date,
			"time":            key.Time,
		},
	}
	_, err := r.occupancy.UpdateOne(sc, filter, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return ErrSlotFull
	}
	if err != nil {
		return fmt.Errorf("claim slot failed: %w", err)
	}
	return nil
}

func (r *mongoBookingRepo) releaseSlot(sc mongo.SessionContext, key models.SlotKey) error {
	filter := bson.M{"_id": occupancyID(key), "count": bson.M{"$gt": 0}}
	if _, err := r.occupancy.UpdateOne(sc, filter, bson.M{"$inc": bson.M{"count": -1}}); err != nil {
		return fmt.Errorf("release slot failed: %w", err)
	}
	return nil
}

func (r *mongoBookingRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (p Patch) setFields(to models.BookingStatus) bson.M {
	set := bson.M{"status": to, "updatedAt": time.Now().UTC()}
	if p.PaymentStatus != "" {
		set["payment.status"] = p.PaymentStatus
	}
	if p.GatewayPaymentID != "" {
		set["payment.gatewayPaymentId"] = p.GatewayPaymentID
	}
	if p.Signature != "" {
		set["payment.signature"] = p.Signature
	}
	if p.RefundID != "" {
		set["payment.refundId"] = p.RefundID
	}
	if p.ReportRef != "" {
		set["reportRef"] = p.ReportRef
	}
	if p.CancelReason != "" {
		set["cancelReason"] = p.CancelReason
	}
	return set
}
