package booking

import (
	"context"
	"fmt"

	bookingRepo "petcare/database/repository/booking"
	"petcare/models"

	"go.uber.org/zap"
)

// CancelBooking refunds a paid booking before cancelling it. If the refund fails the
// booking keeps its status so a charged customer is never shown as cancelled.
func (s *DefaultBookingService) CancelBooking(ctx context.Context, bookingID, reason string) (models.BookingStatus, error) {
	rec, err := s.load(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if _, err := Transition(rec.Status, EventCancel); err != nil {
		return rec.Status, err
	}

	patch := bookingRepo.Patch{CancelReason: reason}
	if rec.Payment.Status == models.PaymentPaid {
		if rec.Payment.GatewayPaymentID == "" {
			return rec.Status, internalError("paid booking has no gateway payment id", nil)
		}
		refundID, err := s.Gateway.Refund(ctx, rec.Payment.GatewayPaymentID, rec.Payment.Amount, map[string]string{
			"bookingId": rec.ID,
			"reason":    reason,
		})
		if err != nil {
			s.Logger.Error("refund failed; booking left unchanged for support follow-up",
				zap.String("bookingId", rec.ID),
				zap.String("paymentId", rec.Payment.GatewayPaymentID),
				zap.Error(err))
			return rec.Status, gatewayError("refund failed, support will follow up", err)
		}
		patch.PaymentStatus = models.PaymentRefunded
		patch.RefundID = refundID
	}

	updated, err := s.move(ctx, rec, EventCancel, patch)
	if err != nil {
		if patch.RefundID != "" {
			s.flagRefundedButActive(ctx, rec, patch.RefundID)
		}
		return rec.Status, err
	}

	s.notify(ctx, updated, "Booking cancelled", cancelBody(updated))
	return updated.Status, nil
}

func (s *DefaultBookingService) flagRefundedButActive(ctx context.Context, rec *models.BookingRecord, refundID string) {
	s.Logger.Error("refund issued but booking could not be cancelled",
		zap.String("bookingId", rec.ID), zap.String("refundId", refundID))
	if err := s.Repo.FlagForReview(ctx, rec.ID, "refund "+refundID+" issued but cancellation did not persist"); err != nil {
		s.Logger.Error("could not flag booking for review", zap.String("bookingId", rec.ID), zap.Error(err))
	}
}

func cancelBody(rec *models.BookingRecord) string {
	if rec.Payment.Status == models.PaymentRefunded {
		return fmt.Sprintf("Your appointment on %s at %s was cancelled and a refund has been issued.", rec.SelectedDate, rec.SelectedTime)
	}
	return fmt.Sprintf("Your appointment on %s at %s was cancelled.", rec.SelectedDate, rec.SelectedTime)
}
