// File: handlers/bundle.go
package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Availability endpoints
	GetAvailability gin.HandlerFunc

	// Booking endpoints
	CreateBooking     gin.HandlerFunc
	GetBookingStatus  gin.HandlerFunc
	VerifyPayment     gin.HandlerFunc
	AbandonPayment    gin.HandlerFunc
	CancelBooking     gin.HandlerFunc
	RescheduleBooking gin.HandlerFunc
	ReconfirmBooking  gin.HandlerFunc
	CompleteBooking   gin.HandlerFunc

	// Gateway push
	PaymentWebhook gin.HandlerFunc

	Health gin.HandlerFunc
}

// NewHandlerBundle wires handler methods into the bundle.
func NewHandlerBundle(bh *BookingHandler, wh *PaymentWebhookHandler) *HandlerBundle {
	return &HandlerBundle{
		GetAvailability:   bh.GetAvailability,
		CreateBooking:     bh.CreateBooking,
		GetBookingStatus:  bh.GetBookingStatus,
		VerifyPayment:     bh.VerifyPayment,
		AbandonPayment:    bh.AbandonPayment,
		CancelBooking:     bh.CancelBooking,
		RescheduleBooking: bh.RescheduleBooking,
		ReconfirmBooking:  bh.ReconfirmBooking,
		CompleteBooking:   bh.CompleteBooking,
		PaymentWebhook:    wh.HandleWebhook,
		Health:            HealthHandler,
	}
}
