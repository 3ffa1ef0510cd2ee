package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"petcare/models"
	"petcare/services/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) create(t *testing.T, clock string) *models.BookingCreated {
	t.Helper()
	created, err := h.svc.CreateBooking(context.Background(), intentAt(clock))
	require.NoError(t, err)
	return created
}

func (h *harness) pay(t *testing.T, created *models.BookingCreated) {
	t.Helper()
	sig := h.signer.Sign(created.GatewayOrder.OrderID, "ch_"+created.BookingID)
	status, err := h.svc.ConfirmPayment(context.Background(), created.BookingID, "ch_"+created.BookingID, sig)
	require.NoError(t, err)
	require.Equal(t, models.StatusConfirmed, status)
}

func TestCreateBooking(t *testing.T) {
	h := newHarness(2)
	created := h.create(t, "09:30")

	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, "pi_"+created.BookingID, created.GatewayOrder.OrderID)
	assert.Equal(t, int64(50000), created.GatewayOrder.Amount)
	assert.Equal(t, []string{tasks.TriggerCreated}, h.scheduler.triggers[created.BookingID])

	rec, err := h.repo.FindByID(context.Background(), created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCreated, rec.Payment.Status)
	assert.Equal(t, created.GatewayOrder.OrderID, rec.Payment.GatewayOrderID)
	assert.Equal(t, int64(50000), rec.TotalPayableAmount)
}

func TestCreateBooking_Validation(t *testing.T) {
	h := newHarness(2)

	home := intentAt("09:30")
	home.LocationType = models.LocationHome
	home.ClinicRef = ""
	_, err := h.svc.CreateBooking(context.Background(), home)
	assert.Equal(t, CodeValidation, CodeOf(err))
	assert.Contains(t, err.Error(), "Address")

	missing := intentAt("09:30")
	missing.SubjectRef = ""
	_, err = h.svc.CreateBooking(context.Background(), missing)
	assert.Equal(t, CodeValidation, CodeOf(err))

	offGrid := intentAt("09:15")
	_, err = h.svc.CreateBooking(context.Background(), offGrid)
	assert.Equal(t, CodeValidation, CodeOf(err))

	assert.Equal(t, 0, h.gateway.orders)
}

func TestCreateBooking_CapacityExhausted(t *testing.T) {
	h := newHarness(2)
	h.create(t, "09:30")
	h.create(t, "09:30")

	_, err := h.svc.CreateBooking(context.Background(), intentAt("09:30"))
	var be *BookingError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, CodeSlotUnavailable, be.Code)
}

func TestCreateBooking_ConcurrentRequestsNeverOverbook(t *testing.T) {
	h := newHarness(3)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.svc.CreateBooking(context.Background(), intentAt("10:00")); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	recs, _ := h.repo.ListByCategoryDate(context.Background(), "consultation", "2025-03-03")
	assert.Len(t, recs, 3)
}

func TestCreateBooking_OrderFailureParksFacingError(t *testing.T) {
	h := newHarness(1)
	h.gateway.createErr = errors.New("gateway timeout")

	_, err := h.svc.CreateBooking(context.Background(), intentAt("10:30"))
	var be *BookingError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, CodeGateway, be.Code)
	assert.True(t, be.Retryable)

	recs, _ := h.repo.ListByCategoryDate(context.Background(), "consultation", "2025-03-03")
	require.Len(t, recs, 1)
	view, err := h.svc.GetBookingStatus(context.Background(), recs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFacingError, view.Status)
	assert.NotEqual(t, models.PaymentPaid, view.PaymentStatus)

	// The failed record no longer holds the single seat.
	h.gateway.createErr = nil
	h.create(t, "10:30")
}

func TestCreateBooking_StrandedAfterOrderFailureIsReleasedLater(t *testing.T) {
	h := newHarness(1)
	h.gateway.createErr = errors.New("gateway timeout")
	h.repo.transitionErr = errors.New("mongo: connection reset")

	_, err := h.svc.CreateBooking(context.Background(), intentAt("10:30"))
	assert.Equal(t, CodeGateway, CodeOf(err))

	recs, _ := h.repo.ListByCategoryDate(context.Background(), "consultation", "2025-03-03")
	require.Len(t, recs, 1)
	stranded := recs[0]
	assert.Equal(t, models.StatusPending, stranded.Status)
	assert.True(t, stranded.ReviewRequired)
	assert.Len(t, h.repo.notes[stranded.ID], 1)
	assert.Equal(t, []string{tasks.TriggerOrderFailed}, h.scheduler.triggers[stranded.ID])

	// The deferred check frees the seat once the store recovers.
	h.repo.transitionErr = nil
	h.gateway.createErr = nil
	status, err := h.svc.Reconcile(context.Background(), stranded.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFacingError, status)
	h.create(t, "10:30")
}

func TestConfirmPayment_IdempotentWithSingleNotification(t *testing.T) {
	h := newHarness(2)
	created := h.create(t, "09:00")
	sig := h.signer.Sign(created.GatewayOrder.OrderID, "ch_1")

	for i := 0; i < 2; i++ {
		status, err := h.svc.ConfirmPayment(context.Background(), created.BookingID, "ch_1", sig)
		require.NoError(t, err)
		assert.Equal(t, models.StatusConfirmed, status)
	}
	assert.Equal(t, 1, h.notifier.count("Booking confirmed"))

	rec, _ := h.repo.FindByID(context.Background(), created.BookingID)
	assert.Equal(t, models.PaymentPaid, rec.Payment.Status)
	assert.Equal(t, "ch_1", rec.Payment.GatewayPaymentID)
}

func TestConfirmPayment_SignatureMismatch(t *testing.T) {
	h := newHarness(2)
	created := h.create(t, "09:00")

	status, err := h.svc.ConfirmPayment(context.Background(), created.BookingID, "ch_1", "deadbeef")
	assert.Equal(t, CodeVerificationFailed, CodeOf(err))
	assert.Equal(t, models.StatusPending, status)

	rec, _ := h.repo.FindByID(context.Background(), created.BookingID)
	assert.Equal(t, models.StatusPending, rec.Status)
	assert.Zero(t, h.notifier.count("Booking confirmed"))
}

func TestConfirmPayment_GatewayOutageKeepsPending(t *testing.T) {
	h := newHarness(2)
	created := h.create(t, "09:00")
	h.gateway.verifyErr = errors.New("payment gateway unavailable")

	status, err := h.svc.ConfirmPayment(context.Background(), created.BookingID, "ch_1", "")
	require.Error(t, err)
	assert.Equal(t, CodeGateway, CodeOf(err))
	assert.Equal(t, models.StatusPending, status)

	var be *BookingError
	require.True(t, errors.As(err, &be))
	assert.True(t, be.Retryable)
}

func TestConfirmPayment_RacesWithReconcile(t *testing.T) {
	h := newHarness(2)
	created := h.create(t, "09:00")
	h.gateway.statusFunc = func(orderID string) (*models.GatewayOrderStatus, error) {
		return &models.GatewayOrderStatus{OrderID: orderID, PaymentID: "ch_1", Status: models.PaymentPaid}, nil
	}
	sig := h.signer.Sign(created.GatewayOrder.OrderID, "ch_1")

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			status, err := h.svc.ConfirmPayment(context.Background(), created.BookingID, "ch_1", sig)
			assert.NoError(t, err)
			assert.Equal(t, models.StatusConfirmed, status)
		}()
		go func() {
			defer wg.Done()
			status, err := h.svc.Reconcile(context.Background(), created.BookingID)
			assert.NoError(t, err)
			assert.Equal(t, models.StatusConfirmed, status)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, h.notifier.count("Booking confirmed"))
}

func TestReconcile_ConfirmsWhenClientNeverReported(t *testing.T) {
	h := newHarness(2)
	created := h.create(t, "09:00")

	status, err := h.svc.Reconcile(context.Background(), created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, status)

	h.gateway.statusFunc = func(orderID string) (*models.GatewayOrderStatus, error) {
		return &models.GatewayOrderStatus{OrderID: orderID, PaymentID: "ch_9", Status: models.PaymentPaid}, nil
	}
	status, err = h.svc.ReconcileOrder(context.Background(), created.GatewayOrder.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, status)

	rec, _ := h.repo.FindByID(context.Background(), created.BookingID)
	assert.Equal(t, "ch_9", rec.Payment.GatewayPaymentID)
}

func TestReconcile_GatewayDownLeavesPending(t *testing.T) {
	h := newHarness(2)
	created := h.create(t, "09:00")
	h.gateway.statusFunc = func(orderID string) (*models.GatewayOrderStatus, error) {
		return nil, errors.New("connection reset")
	}

	status, err := h.svc.Reconcile(context.Background(), created.BookingID)
	assert.Equal(t, CodeGateway, CodeOf(err))
	assert.Equal(t, models.StatusPending, status)
}

func TestReportPaymentAbandoned_StillSchedulesCheck(t *testing.T) {
	h := newHarness(2)
	created := h.create(t, "09:00")

	status, err := h.svc.ReportPaymentAbandoned(context.Background(), created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, status)
	assert.Equal(t, []string{tasks.TriggerCreated, tasks.TriggerAbandoned}, h.scheduler.triggers[created.BookingID])

	// The gateway later reports success: its status wins over the client's report.
	h.gateway.statusFunc = func(orderID string) (*models.GatewayOrderStatus, error) {
		return &models.GatewayOrderStatus{OrderID: orderID, PaymentID: "ch_2", Status: models.PaymentPaid}, nil
	}
	status, err = h.svc.Reconcile(context.Background(), created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, status)
}

func TestCancelBooking_UnpaidSkipsRefund(t *testing.T) {
	h := newHarness(1)
	created := h.create(t, "09:30")

	status, err := h.svc.CancelBooking(context.Background(), created.BookingID, "changed plans")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, status)
	assert.Empty(t, h.gateway.refundCalls)

	rec, _ := h.repo.FindByID(context.Background(), created.BookingID)
	assert.Equal(t, int64(50000), rec.TotalPayableAmount)

	// The seat is free again.
	h.create(t, "09:30")
}

func TestCancelBooking_PaidRefundsOnce(t *testing.T) {
	h := newHarness(2)
	created := h.create(t, "09:30")
	h.pay(t, created)

	status, err := h.svc.CancelBooking(context.Background(), created.BookingID, "pet unwell")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, status)

	require.Len(t, h.gateway.refundCalls, 1)
	call := h.gateway.refundCalls[0]
	assert.Equal(t, "ch_"+created.BookingID, call.paymentID)
	assert.Equal(t, int64(50000), call.amount)
	assert.Equal(t, created.BookingID, call.metadata["bookingId"])
	assert.Equal(t, "pet unwell", call.metadata["reason"])

	rec, _ := h.repo.FindByID(context.Background(), created.BookingID)
	assert.Equal(t, models.PaymentRefunded, rec.Payment.Status)
	assert.Equal(t, "re_1", rec.Payment.RefundID)

	_, err = h.svc.CancelBooking(context.Background(), created.BookingID, "again")
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))
	assert.Len(t, h.gateway.refundCalls, 1)
}

func TestCancelBooking_RefundFailureKeepsState(t *testing.T) {
	h := newHarness(2)
	created := h.create(t, "09:30")
	h.pay(t, created)
	h.gateway.refundErr = errors.New("insufficient balance")

	status, err := h.svc.CancelBooking(context.Background(), created.BookingID, "pet unwell")
	assert.Equal(t, CodeGateway, CodeOf(err))
	assert.Equal(t, models.StatusConfirmed, status)

	rec, _ := h.repo.FindByID(context.Background(), created.BookingID)
	assert.Equal(t, models.StatusConfirmed, rec.Status)
	assert.Equal(t, models.PaymentPaid, rec.Payment.Status)
}

func TestCancelBooking_RejectsTerminal(t *testing.T) {
	h := newHarness(2)
	created := h.create(t, "09:30")
	h.pay(t, created)
	_, err := h.svc.CompleteBooking(context.Background(), created.BookingID, "report-1")
	require.NoError(t, err)

	_, err = h.svc.CancelBooking(context.Background(), created.BookingID, "late")
	assert.Equal(t, CodeInvalidTransition, CodeOf(err))
	assert.Empty(t, h.gateway.refundCalls)
}

func TestReconcile_PaidAfterCancelFlagsReview(t *testing.T) {
	h := newHarness(2)
	created := h.create(t, "09:30")
	_, err := h.svc.CancelBooking(context.Background(), created.BookingID, "")
	require.NoError(t, err)

	h.gateway.statusFunc = func(orderID string) (*models.GatewayOrderStatus, error) {
		return &models.GatewayOrderStatus{OrderID: orderID, PaymentID: "ch_late", Status: models.PaymentPaid}, nil
	}
	status, err := h.svc.Reconcile(context.Background(), created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, status)

	rec, _ := h.repo.FindByID(context.Background(), created.BookingID)
	assert.True(t, rec.ReviewRequired)
	assert.Len(t, h.repo.notes[created.BookingID], 1)
}

func TestRescheduleBooking(t *testing.T) {
	h := newHarness(1)
	created := h.create(t, "09:00")

	_, err := h.svc.RescheduleBooking(context.Background(), created.BookingID, "2025-03-03", "10:00")
	assert.Equal(t, CodeInvalidTransition, CodeOf(err), "pending bookings cannot be rescheduled")

	h.pay(t, created)
	status, err := h.svc.RescheduleBooking(context.Background(), created.BookingID, "2025-03-03", "10:00")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRescheduled, status)

	// Old seat released, new seat taken.
	h.create(t, "09:00")
	_, err = h.svc.CreateBooking(context.Background(), intentAt("10:00"))
	assert.Equal(t, CodeSlotUnavailable, CodeOf(err))

	status, err = h.svc.ReconfirmBooking(context.Background(), created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, status)
}

func TestRescheduleBooking_Rejections(t *testing.T) {
	h := newHarness(1)
	created := h.create(t, "09:00")
	h.pay(t, created)
	other := h.create(t, "10:30")
	_ = other

	_, err := h.svc.RescheduleBooking(context.Background(), created.BookingID, "2025-03-03", "10:30")
	assert.Equal(t, CodeSlotUnavailable, CodeOf(err))

	_, err = h.svc.RescheduleBooking(context.Background(), created.BookingID, "2025-03-03", "09:00")
	assert.Equal(t, CodeValidation, CodeOf(err))

	_, err = h.svc.RescheduleBooking(context.Background(), created.BookingID, "03/03/2025", "10:00")
	assert.Equal(t, CodeValidation, CodeOf(err))

	rec, _ := h.repo.FindByID(context.Background(), created.BookingID)
	assert.Equal(t, models.StatusConfirmed, rec.Status)
	assert.Equal(t, "09:00", rec.SelectedTime)
}

func TestRescheduleBooking_RequiresPaidPayment(t *testing.T) {
	h := newHarness(2)
	created := h.create(t, "09:00")
	h.pay(t, created)
	h.repo.records[created.BookingID].Payment.Status = models.PaymentCreated

	_, err := h.svc.RescheduleBooking(context.Background(), created.BookingID, "2025-03-03", "10:00")
	assert.Equal(t, CodePaymentOutstanding, CodeOf(err))
}

func TestCompleteBooking(t *testing.T) {
	h := newHarness(2)
	created := h.create(t, "09:00")

	_, err := h.svc.CompleteBooking(context.Background(), created.BookingID, "")
	assert.Equal(t, CodeInvalidTransition, CodeOf(err), "pending cannot complete")

	h.pay(t, created)
	status, err := h.svc.CompleteBooking(context.Background(), created.BookingID, "lab-report-9")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, status)

	rec, _ := h.repo.FindByID(context.Background(), created.BookingID)
	assert.Equal(t, "lab-report-9", rec.ReportRef)
}

func TestGetBookingStatus(t *testing.T) {
	h := newHarness(2)
	created := h.create(t, "09:00")

	view, err := h.svc.GetBookingStatus(context.Background(), created.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, view.Status)
	assert.Equal(t, processingMessage, view.Message)

	_, err = h.svc.GetBookingStatus(context.Background(), "missing")
	assert.Equal(t, CodeNotFound, CodeOf(err))
}
