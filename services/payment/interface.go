package payment

import (
	"context"
	"errors"

	"petcare/models"
)

// ErrGatewayUnavailable wraps transport-level failures talking to the gateway.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Gateway is the booking core's view of the payment provider. The provider's status is authoritative.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, metadata map[string]string) (*models.GatewayOrder, error)
	// VerifyPayment confirms that paymentID settled orderID. signature is optional for gateways
	// that can be asked directly.
	VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (bool, error)
	GetOrderStatus(ctx context.Context, orderID string) (*models.GatewayOrderStatus, error)
	Refund(ctx context.Context, paymentID string, amount int64, metadata map[string]string) (string, error)
}
