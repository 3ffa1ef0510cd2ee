package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "petcare/database/repository/booking"
	"petcare/models"
	"petcare/services/notification"
	"petcare/services/payment"

	"go.uber.org/zap"
)

const processingMessage = "processing, we'll confirm shortly"

// DefaultBookingService owns every state change of a booking record.
type DefaultBookingService struct {
	Repo            bookingRepo.BookingRepository
	Slots           SlotChecker
	Prices          PriceSource
	Gateway         payment.Gateway
	Scheduler       ReconcileScheduler
	Notifier        notification.NotificationService
	DefaultCurrency string
	Logger          *zap.Logger
	Now             func() time.Time
}

func NewBookingService(
	repo bookingRepo.BookingRepository,
	slots SlotChecker,
	prices PriceSource,
	gateway payment.Gateway,
	scheduler ReconcileScheduler,
	notifier notification.NotificationService,
	defaultCurrency string,
	logger *zap.Logger,
) *DefaultBookingService {
	return &DefaultBookingService{
		Repo:            repo,
		Slots:           slots,
		Prices:          prices,
		Gateway:         gateway,
		Scheduler:       scheduler,
		Notifier:        notifier,
		DefaultCurrency: defaultCurrency,
		Logger:          logger,
		Now:             time.Now,
	}
}

func (s *DefaultBookingService) GetBookingStatus(ctx context.Context, bookingID string) (*models.BookingView, error) {
	rec, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	view := &models.BookingView{
		BookingID:          rec.ID,
		Status:             rec.Status,
		PaymentStatus:      rec.Payment.Status,
		SelectedDate:       rec.SelectedDate,
		SelectedTime:       rec.SelectedTime,
		TotalPayableAmount: rec.TotalPayableAmount,
		Currency:           rec.Currency,
	}
	if rec.Status == models.StatusPending {
		view.Message = processingMessage
	}
	return view, nil
}

func (s *DefaultBookingService) load(ctx context.Context, bookingID string) (*models.BookingRecord, error) {
	rec, err := s.Repo.FindByID(ctx, bookingID)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return nil, notFoundError(bookingID)
	}
	if err != nil {
		return nil, internalError("could not load booking", err)
	}
	return rec, nil
}

// move applies event to rec and persists it with a compare-and-set on rec.Status.
func (s *DefaultBookingService) move(ctx context.Context, rec *models.BookingRecord, event Event, patch bookingRepo.Patch) (*models.BookingRecord, error) {
	next, err := Transition(rec.Status, event)
	if err != nil {
		return nil, err
	}
	updated, err := s.Repo.Transition(ctx, rec.ID, rec.Status, next, patch)
	switch {
	case errors.Is(err, bookingRepo.ErrStatusConflict):
		return nil, &BookingError{
			Code:    CodeInvalidTransition,
			Message: fmt.Sprintf("booking %s changed while applying %s", rec.ID, event),
			Err:     err,
		}
	case errors.Is(err, bookingRepo.ErrNotFound):
		return nil, notFoundError(rec.ID)
	case err != nil:
		return nil, internalError("could not persist booking transition", err)
	}

	s.Logger.Info("booking transitioned",
		zap.String("bookingId", rec.ID),
		zap.String("from", string(rec.Status)),
		zap.String("to", string(next)),
		zap.String("event", string(event)))
	return updated, nil
}

// notify is best-effort; a failed push never fails the booking operation.
func (s *DefaultBookingService) notify(ctx context.Context, rec *models.BookingRecord, title, body string) {
	if s.Notifier == nil {
		return
	}
	data := map[string]string{
		"type":      "booking_update",
		"bookingId": rec.ID,
		"status":    string(rec.Status),
	}
	if err := s.Notifier.Notify(ctx, rec.SubjectRef, title, body, data); err != nil {
		s.Logger.Warn("booking notification failed", zap.String("bookingId", rec.ID), zap.Error(err))
	}
}
