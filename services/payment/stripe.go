package payment

import (
	"context"
	"errors"
	"fmt"

	"petcare/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// StripeGateway maps orders onto PaymentIntents and payments onto their latest Charge.
type StripeGateway struct {
	api    *client.API
	signer *Signer
	logger *zap.Logger
}

func NewStripeGateway(secretKey string, signer *Signer, logger *zap.Logger) *StripeGateway {
	return newStripeGateway(client.New(secretKey, nil), signer, logger)
}

func newStripeGateway(api *client.API, signer *Signer, logger *zap.Logger) *StripeGateway {
	return &StripeGateway{api: api, signer: signer, logger: logger}
}

func (g *StripeGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, metadata map[string]string) (*models.GatewayOrder, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey("order-" + receipt)
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.AddMetadata("receipt", receipt)

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return nil, wrapStripeError("create payment intent", err)
	}

	g.logger.Info("stripe: payment intent created", zap.String("orderId", pi.ID), zap.String("receipt", receipt))
	return &models.GatewayOrder{
		OrderID:      pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

// VerifyPayment accepts a callback signed with the shared secret. Otherwise Stripe is asked
// whether the intent succeeded with paymentID as its latest charge.
func (g *StripeGateway) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (bool, error) {
	if orderID == "" || paymentID == "" {
		return false, nil
	}
	if signature != "" && g.signer != nil && g.signer.Verify(orderID, paymentID, signature) {
		return true, nil
	}

	status, err := g.GetOrderStatus(ctx, orderID)
	if errors.Is(err, ErrGatewayUnavailable) {
		return false, err
	}
	if err != nil {
		g.logger.Warn("stripe: verify lookup rejected", zap.String("orderId", orderID), zap.Error(err))
		return false, nil
	}
	return status.Status == models.PaymentPaid && status.PaymentID == paymentID, nil
}

func (g *StripeGateway) GetOrderStatus(ctx context.Context, orderID string) (*models.GatewayOrderStatus, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.api.PaymentIntents.Get(orderID, params)
	if err != nil {
		return nil, wrapStripeError("get payment intent", err)
	}
	return intentStatus(pi), nil
}

func (g *StripeGateway) Refund(ctx context.Context, paymentID string, amount int64, metadata map[string]string) (string, error) {
	params := &stripe.RefundParams{
		Charge: stripe.String(paymentID),
		Amount: stripe.Int64(amount),
		Reason: stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	if id := metadata["bookingId"]; id != "" {
		params.SetIdempotencyKey("refund-" + id)
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	r, err := g.api.Refunds.New(params)
	if err != nil {
		return "", wrapStripeError("create refund", err)
	}
	if r.Status == "failed" || r.Status == "canceled" {
		return "", fmt.Errorf("refund %s ended in status %s", r.ID, r.Status)
	}

	g.logger.Info("stripe: refund issued", zap.String("refundId", r.ID), zap.String("charge", paymentID), zap.Int64("amount", amount))
	return r.ID, nil
}

// intentStatus folds Stripe's PaymentIntent lifecycle into created/paid/failed.
func intentStatus(pi *stripe.PaymentIntent) *models.GatewayOrderStatus {
	status := &models.GatewayOrderStatus{OrderID: pi.ID, Status: models.PaymentCreated}
	if pi.LatestCharge != nil {
		status.PaymentID = pi.LatestCharge.ID
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		status.Status = models.PaymentPaid
	case stripe.PaymentIntentStatusCanceled:
		status.Status = models.PaymentFailed
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		if pi.LastPaymentError != nil {
			status.Status = models.PaymentFailed
		}
	}
	return status
}

// wrapStripeError marks connectivity and 5xx failures as ErrGatewayUnavailable.
func wrapStripeError(op string, err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		if se.HTTPStatusCode >= 500 || se.Type == stripe.ErrorTypeAPI {
			return fmt.Errorf("%s: %w: %s", op, ErrGatewayUnavailable, se.Msg)
		}
		return fmt.Errorf("%s: %s (%s)", op, se.Msg, se.Code)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrGatewayUnavailable, err)
}
