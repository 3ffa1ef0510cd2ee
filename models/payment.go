package models

type PaymentStatus string

const (
	PaymentCreated  PaymentStatus = "created"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentRef mirrors the gateway's view of a booking's payment. The gateway stays authoritative.
type PaymentRef struct {
	GatewayOrderID   string        `json:"gatewayOrderId,omitempty" bson:"gatewayOrderId,omitempty"`
	GatewayPaymentID string        `json:"gatewayPaymentId,omitempty" bson:"gatewayPaymentId,omitempty"`
	Amount           int64         `json:"amount" bson:"amount"`
	Currency         string        `json:"currency" bson:"currency"`
	Status           PaymentStatus `json:"status" bson:"status"`
	Signature        string        `json:"signature,omitempty" bson:"signature,omitempty"`
	RefundID         string        `json:"refundId,omitempty" bson:"refundId,omitempty"`
}

// GatewayOrder is the client-facing handle for an order created at the gateway.
type GatewayOrder struct {
	OrderID      string `json:"orderId"`
	ClientSecret string `json:"clientSecret,omitempty"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// GatewayOrderStatus is the gateway's authoritative status for an order.
type GatewayOrderStatus struct {
	OrderID   string
	PaymentID string
	Status    PaymentStatus
}

type PaymentVerification struct {
	PaymentID string `json:"paymentId" binding:"required"`
	Signature string `json:"signature"`
}

// ReconcilePayload is the queued task body for the deferred status check.
type ReconcilePayload struct {
	BookingID string `json:"bookingId"`
	Trigger   string `json:"trigger"`
}
