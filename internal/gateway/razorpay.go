// Package gateway adapts the Razorpay API to order creation and payment
// signature verification. Amounts are always in minor units (paise for INR).
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/razorpay/razorpay-go/utils"

	"payauth/internal/config"
	apperrors "payauth/internal/errors"
	"payauth/internal/model"
)

// PaymentGateway creates orders and verifies checkout signatures.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, receipt string) (*model.Order, error)
	VerifyPayment(ctx context.Context, payload model.PaymentVerification) error
}

// OrderCreator is the subset of the Razorpay order resource used here.
type OrderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayGateway implements PaymentGateway on top of razorpay-go.
type RazorpayGateway struct {
	orders    OrderCreator
	keyID     string
	keySecret string
	currency  string
}

var _ PaymentGateway = (*RazorpayGateway)(nil)

// NewRazorpayGateway builds a gateway client from configuration.
func NewRazorpayGateway(cfg config.Razorpay) *RazorpayGateway {
	client := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	return NewRazorpayGatewayWithOrders(client.Order, cfg)
}

// NewRazorpayGatewayWithOrders builds a gateway over a custom order resource.
func NewRazorpayGatewayWithOrders(orders OrderCreator, cfg config.Razorpay) *RazorpayGateway {
	currency := cfg.Currency
	if currency == "" {
		currency = "INR"
	}
	return &RazorpayGateway{
		orders:    orders,
		keyID:     cfg.KeyID,
		keySecret: cfg.KeySecret,
		currency:  currency,
	}
}

// CreateOrder creates an auto-capture order. Provider failures are not retried.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, receipt string) (*model.Order, error) {
	if amount <= 0 {
		return nil, apperrors.Validation("amount must be a positive integer in minor units")
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Gateway(err)
	}

	data := map[string]interface{}{
		"amount":          amount,
		"currency":        g.currency,
		"payment_capture": 1,
	}
	if receipt != "" {
		data["receipt"] = receipt
	}

	body, err := g.orders.Create(data, nil)
	if err != nil {
		return nil, apperrors.Gateway(err)
	}

	order, err := decodeOrder(body)
	if err != nil {
		return nil, apperrors.Gateway(err)
	}
	order.KeyID = g.keyID
	return order, nil
}

// VerifyPayment checks the checkout signature over order_id|payment_id.
func (g *RazorpayGateway) VerifyPayment(ctx context.Context, payload model.PaymentVerification) error {
	if payload.OrderID == "" || payload.PaymentID == "" || payload.Signature == "" {
		return apperrors.Validation("order_id, payment_id and signature are required")
	}

	params := map[string]interface{}{
		"razorpay_order_id":   payload.OrderID,
		"razorpay_payment_id": payload.PaymentID,
	}
	if !utils.VerifyPaymentSignature(params, payload.Signature, g.keySecret) {
		return apperrors.Verification("payment signature mismatch")
	}
	return nil
}

func decodeOrder(body map[string]interface{}) (*model.Order, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, errors.New("gateway response has no order id")
	}
	amount, err := toInt64(body["amount"])
	if err != nil {
		return nil, fmt.Errorf("gateway response amount: %w", err)
	}
	currency, _ := body["currency"].(string)
	status, _ := body["status"].(string)
	receipt, _ := body["receipt"].(string)

	return &model.Order{
		ID:       id,
		Amount:   amount,
		Currency: currency,
		Status:   model.OrderStatus(status),
		Receipt:  receipt,
	}, nil
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("non-integer %v", n)
		}
		return int64(n), nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case json.Number:
		return n.Int64()
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
