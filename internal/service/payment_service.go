package service

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	apperrors "payauth/internal/errors"
	"payauth/internal/gateway"
	"payauth/internal/model"
)

var maxAmount = decimal.NewFromInt(math.MaxInt64)

// PaymentService creates gateway orders and verifies completed payments.
// Nothing is persisted locally.
type PaymentService interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal) (*model.Order, error)
	VerifyPayment(ctx context.Context, payload model.PaymentVerification) error
}

type paymentService struct {
	gateway gateway.PaymentGateway
	log     logrus.FieldLogger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(gw gateway.PaymentGateway, log logrus.FieldLogger) PaymentService {
	return &paymentService{gateway: gw, log: log}
}

// ValidateAmount checks that amount is a positive whole number of minor units.
func ValidateAmount(amount decimal.Decimal) (int64, error) {
	if !amount.IsInteger() {
		return 0, apperrors.Validation("amount must be a whole number of minor currency units")
	}
	if amount.Sign() <= 0 {
		return 0, apperrors.Validation("amount must be positive")
	}
	if amount.GreaterThan(maxAmount) {
		return 0, apperrors.Validation("amount is too large")
	}
	return amount.IntPart(), nil
}

func (s *paymentService) CreateOrder(ctx context.Context, amount decimal.Decimal) (*model.Order, error) {
	minor, err := ValidateAmount(amount)
	if err != nil {
		return nil, err
	}

	receipt := "rcpt_" + uuid.NewString()
	order, err := s.gateway.CreateOrder(ctx, minor, receipt)
	if err != nil {
		s.log.WithError(err).WithField("receipt", receipt).Error("create order failed")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"amount":   order.Amount,
		"currency": order.Currency,
	}).Info("order created")
	return order, nil
}

func (s *paymentService) VerifyPayment(ctx context.Context, payload model.PaymentVerification) error {
	entry := s.log.WithFields(logrus.Fields{
		"order_id":   payload.OrderID,
		"payment_id": payload.PaymentID,
	})

	if err := s.gateway.VerifyPayment(ctx, payload); err != nil {
		if errors.Is(err, apperrors.ErrVerification) || errors.Is(err, apperrors.ErrValidation) {
			entry.WithError(err).Warn("payment verification failed")
		} else {
			entry.WithError(err).Error("payment verification error")
		}
		return err
	}

	entry.Info("payment verified")
	return nil
}
