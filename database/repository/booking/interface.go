// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"errors"

	"petcare/database"
	"petcare/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound       = errors.New("booking not found")
	ErrStatusConflict = errors.New("booking status changed concurrently")
	ErrSlotFull       = errors.New("slot has no remaining capacity")
)

// Patch lists the fields a transition may write alongside the new status.
// Zero values are left untouched.
type Patch struct {
	PaymentStatus    models.PaymentStatus
	GatewayPaymentID string
	Signature        string
	RefundID         string
	ReportRef        string
	CancelReason     string
}

type BookingRepository interface {
	// Reserve inserts a Pending record iff the slot's occupancy is below capacity.
	Reserve(ctx context.Context, record *models.BookingRecord, capacity int) error
	FindByID(ctx context.Context, id string) (*models.BookingRecord, error)
	FindByGatewayOrderID(ctx context.Context, orderID string) (*models.BookingRecord, error)
	ListByCategoryDate(ctx context.Context, category, date string) ([]models.BookingRecord, error)
	AttachOrder(ctx context.Context, id string, payment models.PaymentRef) error
	// Transition moves a record from one status to another only if it is still in from.
	// Leaving a slot-holding status releases the slot in the same transaction.
	Transition(ctx context.Context, id string, from, to models.BookingStatus, patch Patch) (*models.BookingRecord, error)
	// Reschedule claims the new slot, releases the old one and moves from to Rescheduled atomically.
	Reschedule(ctx context.Context, id string, from models.BookingStatus, date, clock string, capacity int) (*models.BookingRecord, error)
	FlagForReview(ctx context.Context, id, note string) error
	EnsureIndexes(ctx context.Context) error
}

type mongoBookingRepo struct {
	client    *mongo.Client
	coll      *mongo.Collection
	occupancy *mongo.Collection
}

// NewMongoBookingRepo constructs a new MongoDB BookingRepository.
func NewMongoBookingRepo() BookingRepository {
	db := database.DB()
	return &mongoBookingRepo{
		client:    database.MongoClient,
		coll:      db.Collection("bookings"),
		occupancy: db.Collection("slot_occupancy"),
	}
}
