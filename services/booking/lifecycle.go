package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "petcare/database/repository/booking"
	"petcare/models"
	"petcare/services/availability"
)

// RescheduleBooking moves a paid, Confirmed booking to a new slot on the same service.
func (s *DefaultBookingService) RescheduleBooking(ctx context.Context, bookingID, newDate, newTime string) (models.BookingStatus, error) {
	rec, err := s.load(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if _, err := Transition(rec.Status, EventReschedule); err != nil {
		return rec.Status, err
	}
	if rec.Payment.Status != models.PaymentPaid {
		return rec.Status, &BookingError{Code: CodePaymentOutstanding, Message: "booking cannot be rescheduled until payment is complete"}
	}
	if err := validateSlotInput(newDate, newTime); err != nil {
		return rec.Status, err
	}
	if newDate == rec.SelectedDate && newTime == rec.SelectedTime {
		return rec.Status, validationError("new slot is the same as the current one", nil)
	}

	slot, settings, err := s.Slots.CheckSlot(ctx, rec.ServiceCategory, newDate, newTime)
	if errors.Is(err, availability.ErrSlotNotOffered) {
		return rec.Status, validationError("selected time is not offered on that date", err)
	}
	if err != nil {
		return rec.Status, internalError("could not check availability", err)
	}
	if err := slotError(slot); err != nil {
		return rec.Status, err
	}

	updated, err := s.Repo.Reschedule(ctx, rec.ID, rec.Status, newDate, newTime, settings.PerSlotCapacity)
	switch {
	case errors.Is(err, bookingRepo.ErrSlotFull):
		return rec.Status, slotUnavailableError("slot was just taken, please pick another time", true)
	case errors.Is(err, bookingRepo.ErrStatusConflict):
		return rec.Status, &BookingError{Code: CodeInvalidTransition, Message: "booking changed while rescheduling", Err: err}
	case err != nil:
		return rec.Status, internalError("could not reschedule booking", err)
	}

	s.notify(ctx, updated, "Booking rescheduled",
		fmt.Sprintf("Your appointment has moved to %s at %s.", updated.SelectedDate, updated.SelectedTime))
	return updated.Status, nil
}

// ReconfirmBooking acknowledges a rescheduled slot (Rescheduled -> Confirmed).
func (s *DefaultBookingService) ReconfirmBooking(ctx context.Context, bookingID string) (models.BookingStatus, error) {
	rec, err := s.load(ctx, bookingID)
	if err != nil {
		return "", err
	}
	updated, err := s.move(ctx, rec, EventReconfirm, bookingRepo.Patch{})
	if err != nil {
		return rec.Status, err
	}
	return updated.Status, nil
}

// CompleteBooking finalizes service delivery, optionally attaching a report reference.
func (s *DefaultBookingService) CompleteBooking(ctx context.Context, bookingID, reportRef string) (models.BookingStatus, error) {
	rec, err := s.load(ctx, bookingID)
	if err != nil {
		return "", err
	}
	updated, err := s.move(ctx, rec, EventComplete, bookingRepo.Patch{ReportRef: reportRef})
	if err != nil {
		return rec.Status, err
	}
	s.notify(ctx, updated, "Appointment completed", "Thanks for visiting. Your report will be available in the app.")
	return updated.Status, nil
}

func validateSlotInput(date, clock string) error {
	in := struct {
		Date string `validate:"required,datetime=2006-01-02"`
		Time string `validate:"required,datetime=15:04"`
	}{date, clock}
	if err := validate.Struct(in); err != nil {
		return validationError("date must be YYYY-MM-DD and time HH:MM", err)
	}
	return nil
}
