package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "petcare/database/repository/booking"
	"petcare/models"
	"petcare/services/tasks"

	"go.uber.org/zap"
)

// ConfirmPayment handles the client's verification callback. Re-verifying a booking that
// is already paid is a no-op that returns its current status.
func (s *DefaultBookingService) ConfirmPayment(ctx context.Context, bookingID, paymentID, signature string) (models.BookingStatus, error) {
	rec, err := s.load(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if alreadySettled(rec) {
		return rec.Status, nil
	}
	if rec.Payment.GatewayOrderID == "" {
		return rec.Status, &BookingError{Code: CodeInvalidTransition, Message: "booking has no payment order"}
	}

	ok, err := s.Gateway.VerifyPayment(ctx, rec.Payment.GatewayOrderID, paymentID, signature)
	if err != nil {
		s.Logger.Warn("payment verification unavailable, deferred check will settle it",
			zap.String("bookingId", rec.ID), zap.Error(err))
		return rec.Status, gatewayError("payment provider unreachable, we'll confirm shortly", err)
	}
	if !ok {
		s.Logger.Warn("payment signature mismatch",
			zap.String("bookingId", rec.ID),
			zap.String("orderId", rec.Payment.GatewayOrderID),
			zap.String("paymentId", paymentID))
		return rec.Status, &BookingError{
			Code:    CodeVerificationFailed,
			Message: "payment could not be verified; it will be checked with the payment provider",
		}
	}

	if rec.Status != models.StatusPending {
		s.flagPaidWhileInactive(ctx, rec, paymentID)
		return rec.Status, &BookingError{
			Code:    CodeInvalidTransition,
			Message: fmt.Sprintf("payment received for a booking that is %s; support will follow up", rec.Status),
		}
	}

	return s.confirm(ctx, rec, bookingRepo.Patch{
		PaymentStatus:    models.PaymentPaid,
		GatewayPaymentID: paymentID,
		Signature:        signature,
	})
}

// Reconcile is the deferred check: the gateway's status always wins over anything the client reported.
func (s *DefaultBookingService) Reconcile(ctx context.Context, bookingID string) (models.BookingStatus, error) {
	rec, err := s.load(ctx, bookingID)
	if err != nil {
		return "", err
	}
	return s.reconcile(ctx, rec)
}

// ReconcileOrder runs Reconcile for the booking that owns a gateway order (webhook path).
func (s *DefaultBookingService) ReconcileOrder(ctx context.Context, orderID string) (models.BookingStatus, error) {
	rec, err := s.Repo.FindByGatewayOrderID(ctx, orderID)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return "", &BookingError{Code: CodeNotFound, Message: fmt.Sprintf("no booking for order %s", orderID)}
	}
	if err != nil {
		return "", internalError("could not load booking", err)
	}
	return s.reconcile(ctx, rec)
}

// ReportPaymentAbandoned records that the client closed the payment UI. The gateway is still
// checked later because the report can race a real payment.
func (s *DefaultBookingService) ReportPaymentAbandoned(ctx context.Context, bookingID string) (models.BookingStatus, error) {
	rec, err := s.load(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if rec.Status != models.StatusPending {
		return rec.Status, nil
	}
	if err := s.Scheduler.ScheduleReconcile(ctx, rec.ID, tasks.TriggerAbandoned); err != nil {
		return rec.Status, internalError("could not schedule payment check", err)
	}
	return rec.Status, nil
}

func (s *DefaultBookingService) reconcile(ctx context.Context, rec *models.BookingRecord) (models.BookingStatus, error) {
	if rec.Payment.GatewayOrderID == "" && rec.Status == models.StatusPending {
		// Nothing can ever be paid against it; give the slot back.
		updated, err := s.releaseOrderless(ctx, rec)
		if err != nil {
			return rec.Status, err
		}
		return updated.Status, nil
	}
	if rec.Payment.GatewayOrderID == "" || alreadySettled(rec) {
		return rec.Status, nil
	}
	if rec.Status != models.StatusPending && rec.Status != models.StatusCancelled {
		return rec.Status, nil
	}

	status, err := s.Gateway.GetOrderStatus(ctx, rec.Payment.GatewayOrderID)
	if err != nil {
		s.Logger.Warn("reconcile: gateway status unavailable, booking stays as is",
			zap.String("bookingId", rec.ID), zap.Error(err))
		return rec.Status, gatewayError("payment provider unreachable", err)
	}

	if status.Status != models.PaymentPaid {
		s.Logger.Info("reconcile: payment not settled",
			zap.String("bookingId", rec.ID),
			zap.String("gatewayStatus", string(status.Status)))
		return rec.Status, nil
	}

	if rec.Status == models.StatusCancelled {
		s.flagPaidWhileInactive(ctx, rec, status.PaymentID)
		return rec.Status, nil
	}

	return s.confirm(ctx, rec, bookingRepo.Patch{
		PaymentStatus:    models.PaymentPaid,
		GatewayPaymentID: status.PaymentID,
	})
}

// confirm performs Pending -> Confirmed. Only the caller that wins the compare-and-set notifies.
func (s *DefaultBookingService) confirm(ctx context.Context, rec *models.BookingRecord, patch bookingRepo.Patch) (models.BookingStatus, error) {
	updated, err := s.move(ctx, rec, EventPaymentVerified, patch)
	if err != nil {
		if CodeOf(err) != CodeInvalidTransition {
			return rec.Status, err
		}
		// Lost the race; report whatever the winner left behind.
		latest, lerr := s.load(ctx, rec.ID)
		if lerr != nil {
			return rec.Status, lerr
		}
		if alreadySettled(latest) {
			return latest.Status, nil
		}
		return latest.Status, err
	}

	s.notify(ctx, updated, "Booking confirmed",
		fmt.Sprintf("Your appointment on %s at %s is confirmed.", updated.SelectedDate, updated.SelectedTime))
	return updated.Status, nil
}

// flagPaidWhileInactive records money the gateway took for a booking that no longer holds a slot.
func (s *DefaultBookingService) flagPaidWhileInactive(ctx context.Context, rec *models.BookingRecord, paymentID string) {
	if rec.ReviewRequired {
		return
	}
	s.Logger.Error("gateway reports payment for inactive booking; manual refund review required",
		zap.String("bookingId", rec.ID),
		zap.String("status", string(rec.Status)),
		zap.String("orderId", rec.Payment.GatewayOrderID),
		zap.String("paymentId", paymentID))
	note := fmt.Sprintf("gateway payment %s settled while booking was %s", paymentID, rec.Status)
	if err := s.Repo.FlagForReview(ctx, rec.ID, note); err != nil {
		s.Logger.Error("could not flag booking for review", zap.String("bookingId", rec.ID), zap.Error(err))
	}
}

// alreadySettled is true once payment has been recorded as paid and the booking moved on from Pending.
func alreadySettled(rec *models.BookingRecord) bool {
	if rec.Payment.Status == models.PaymentRefunded {
		return true
	}
	return rec.Payment.Status == models.PaymentPaid && rec.Status != models.StatusPending
}
