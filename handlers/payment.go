package handlers

import (
	"io"
	"net/http"

	"petcare/services/booking"
	"petcare/services/payment"
	"petcare/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBytes = int64(65536)

type PaymentWebhookHandler struct {
	Service booking.BookingService
	Secret  string
}

func NewPaymentWebhookHandler(svc booking.BookingService, secret string) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{Service: svc, Secret: secret}
}

// HandleWebhook accepts gateway pushes. Settled intents run the same reconcile path as the deferred check.
func (h *PaymentWebhookHandler) HandleWebhook(c *gin.Context) {
	logger := getLogger(c)

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Could not read webhook body", err.Error())
		return
	}

	event, err := payment.ParseWebhook(payload, c.GetHeader("Stripe-Signature"), h.Secret)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid webhook signature", err.Error())
		return
	}

	if !event.Settles() || event.OrderID == "" {
		logger.Debug("webhook ignored", zap.String("eventId", event.ID), zap.String("type", event.Type))
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	status, err := h.Service.ReconcileOrder(c.Request.Context(), event.OrderID)
	if err != nil {
		// Unknown orders are acknowledged so the gateway stops retrying them.
		if booking.CodeOf(err) == booking.CodeNotFound {
			logger.Warn("webhook for unknown order", zap.String("orderId", event.OrderID))
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		respondError(c, err)
		return
	}

	logger.Info("webhook reconciled", zap.String("eventId", event.ID), zap.String("orderId", event.OrderID), zap.String("status", string(status)))
	c.JSON(http.StatusOK, gin.H{"received": true, "status": status})
}
