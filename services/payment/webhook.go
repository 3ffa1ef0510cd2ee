package payment

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	eventIntentSucceeded = "payment_intent.succeeded"
	eventIntentFailed    = "payment_intent.payment_failed"
	eventIntentCanceled  = "payment_intent.canceled"
)

// WebhookEvent is the part of a gateway push the booking core acts on.
type WebhookEvent struct {
	ID      string
	Type    string
	OrderID string
}

// Settles reports whether the event may move a booking towards Confirmed.
func (e *WebhookEvent) Settles() bool {
	return e.Type == eventIntentSucceeded
}

// ParseWebhook verifies the Stripe-Signature header and extracts the PaymentIntent id.
func ParseWebhook(payload []byte, header, secret string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, header, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("webhook signature: %w", err)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	switch event.Type {
	case eventIntentSucceeded, eventIntentFailed, eventIntentCanceled:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("webhook payload: %w", err)
		}
		out.OrderID = pi.ID
	}
	return out, nil
}
