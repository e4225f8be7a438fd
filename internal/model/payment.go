package model

// OrderStatus is the gateway-reported status of an order.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusAttempted OrderStatus = "attempted"
	OrderStatusPaid      OrderStatus = "paid"
)

// Order is a gateway order. Amount is in minor currency units (paise for INR).
// Orders are not persisted locally.
type Order struct {
	ID       string      `json:"id"`
	Amount   int64       `json:"amount"`
	Currency string      `json:"currency"`
	Status   OrderStatus `json:"status"`
	Receipt  string      `json:"-"`
	// KeyID is the gateway's public key id, needed by the checkout widget.
	KeyID string `json:"key"`
}

// PaymentVerification carries the fields the checkout widget returns after payment.
type PaymentVerification struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// VerificationStatus is the binary outcome of a signature check.
type VerificationStatus string

const (
	VerificationVerified VerificationStatus = "verified"
	VerificationFailed   VerificationStatus = "failed"
)
