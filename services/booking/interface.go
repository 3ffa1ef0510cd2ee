package booking

import (
	"context"

	"petcare/models"
)

type BookingService interface {
	CreateBooking(ctx context.Context, intent models.BookingIntent) (*models.BookingCreated, error)
	ConfirmPayment(ctx context.Context, bookingID, paymentID, signature string) (models.BookingStatus, error)
	ReportPaymentAbandoned(ctx context.Context, bookingID string) (models.BookingStatus, error)
	Reconcile(ctx context.Context, bookingID string) (models.BookingStatus, error)
	ReconcileOrder(ctx context.Context, orderID string) (models.BookingStatus, error)
	CancelBooking(ctx context.Context, bookingID, reason string) (models.BookingStatus, error)
	RescheduleBooking(ctx context.Context, bookingID, newDate, newTime string) (models.BookingStatus, error)
	ReconfirmBooking(ctx context.Context, bookingID string) (models.BookingStatus, error)
	CompleteBooking(ctx context.Context, bookingID, reportRef string) (models.BookingStatus, error)
	GetBookingStatus(ctx context.Context, bookingID string) (*models.BookingView, error)
}

// SlotChecker resolves a single slot against current occupancy.
type SlotChecker interface {
	CheckSlot(ctx context.Context, category, date, clock string) (*models.SlotAvailability, *models.AvailabilitySettings, error)
}

type PriceSource interface {
	GetBasePrice(ctx context.Context, serviceRef string, location models.LocationType) (*models.ServicePrice, error)
}

// ReconcileScheduler queues the deferred gateway status check.
type ReconcileScheduler interface {
	ScheduleReconcile(ctx context.Context, bookingID, trigger string) error
}
