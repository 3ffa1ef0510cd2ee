package booking

import (
	"context"
	"errors"

	bookingRepo "petcare/database/repository/booking"
	"petcare/models"
	"petcare/services/availability"
	"petcare/services/tasks"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBooking reserves the slot as a Pending record, opens a gateway order for it
// and queues the deferred reconcile check.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, intent models.BookingIntent) (*models.BookingCreated, error) {
	if err := validateIntent(intent); err != nil {
		return nil, err
	}

	slot, settings, err := s.Slots.CheckSlot(ctx, intent.ServiceCategory, intent.SelectedDate, intent.SelectedTime)
	if errors.Is(err, availability.ErrSlotNotOffered) {
		return nil, validationError("selected time is not offered on that date", err)
	}
	if err != nil {
		return nil, internalError("could not check availability", err)
	}
	if err := slotError(slot); err != nil {
		return nil, err
	}

	price, err := s.Prices.GetBasePrice(ctx, intent.ServiceRef, intent.LocationType)
	if err != nil {
		return nil, internalError("could not price service", err)
	}
	currency := price.Currency
	if currency == "" {
		currency = s.DefaultCurrency
	}

	now := s.Now().UTC()
	rec := &models.BookingRecord{
		ID:                 uuid.New().String(),
		SubjectRef:         intent.SubjectRef,
		ServiceRef:         intent.ServiceRef,
		ServiceCategory:    intent.ServiceCategory,
		SelectedDate:       intent.SelectedDate,
		SelectedTime:       intent.SelectedTime,
		BookingPart:        intent.BookingPart,
		Status:             models.StatusPending,
		TotalPayableAmount: price.Amount,
		Currency:           currency,
		CouponRef:          intent.CouponRef,
		LocationType:       intent.LocationType,
		Address:            intent.Address,
		ClinicRef:          intent.ClinicRef,
		Payment: models.PaymentRef{
			Amount:   price.Amount,
			Currency: currency,
			Status:   models.PaymentCreated,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.Repo.Reserve(ctx, rec, settings.PerSlotCapacity); err != nil {
		if errors.Is(err, bookingRepo.ErrSlotFull) {
			return nil, slotUnavailableError("slot was just taken, please pick another time", true)
		}
		return nil, internalError("could not reserve slot", err)
	}

	order, err := s.Gateway.CreateOrder(ctx, rec.TotalPayableAmount, rec.Currency, rec.ID, map[string]string{
		"bookingId":  rec.ID,
		"subjectRef": rec.SubjectRef,
		"serviceRef": rec.ServiceRef,
	})
	if err == nil {
		rec.Payment.GatewayOrderID = order.OrderID
		err = s.Repo.AttachOrder(ctx, rec.ID, rec.Payment)
	}
	if err != nil {
		s.failOrder(ctx, rec, err)
		return nil, gatewayError("could not start payment, please try booking again", err)
	}

	if err := s.Scheduler.ScheduleReconcile(ctx, rec.ID, tasks.TriggerCreated); err != nil {
		s.Logger.Error("could not schedule reconcile check", zap.String("bookingId", rec.ID), zap.Error(err))
	}

	s.Logger.Info("booking created",
		zap.String("bookingId", rec.ID),
		zap.String("category", rec.ServiceCategory),
		zap.String("slot", rec.SelectedDate+" "+rec.SelectedTime),
		zap.String("orderId", order.OrderID))

	return &models.BookingCreated{
		BookingID:    rec.ID,
		Status:       rec.Status,
		GatewayOrder: *order,
	}, nil
}

// failOrder parks a reserved booking in Facing Error, which also frees its slot.
// If that write fails the booking is flagged and the deferred check retries the release.
func (s *DefaultBookingService) failOrder(ctx context.Context, rec *models.BookingRecord, cause error) {
	s.Logger.Error("gateway order creation failed", zap.String("bookingId", rec.ID), zap.Error(cause))
	_, err := s.releaseOrderless(ctx, rec)
	if err == nil {
		return
	}
	s.Logger.Error("booking stranded in Pending without a payment order; slot still held",
		zap.String("bookingId", rec.ID), zap.Error(err))

	if err := s.Repo.FlagForReview(ctx, rec.ID, "order creation failed and the slot could not be released"); err != nil {
		s.Logger.Error("could not flag booking for review", zap.String("bookingId", rec.ID), zap.Error(err))
	}
	if err := s.Scheduler.ScheduleReconcile(ctx, rec.ID, tasks.TriggerOrderFailed); err != nil {
		s.Logger.Error("could not schedule release of stranded booking", zap.String("bookingId", rec.ID), zap.Error(err))
	}
}

// releaseOrderless moves a Pending booking that has no gateway order to Facing Error.
func (s *DefaultBookingService) releaseOrderless(ctx context.Context, rec *models.BookingRecord) (*models.BookingRecord, error) {
	return s.move(ctx, rec, EventOrderFailed, bookingRepo.Patch{PaymentStatus: models.PaymentFailed})
}

func slotError(slot *models.SlotAvailability) error {
	switch slot.Reason {
	case models.SlotReasonAvailable:
		return nil
	case models.SlotReasonFull:
		return slotUnavailableError("slot is fully booked", false)
	case models.SlotReasonPast:
		return validationError("slot has already started", nil)
	default:
		return validationError("slot is not bookable", nil)
	}
}
