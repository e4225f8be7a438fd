package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"payauth/internal/errors"
	"payauth/internal/model"
	"payauth/internal/service"
)

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreateOrderRequest carries the amount in minor currency units (paise for INR).
type CreateOrderRequest struct {
	Amount json.Number `json:"amount" swaggertype:"integer"`
}

// VerifyPaymentResponse reports the verification outcome.
type VerifyPaymentResponse struct {
	Status  model.VerificationStatus `json:"status"`
	Message string                   `json:"message,omitempty"`
}

// CreateOrder godoc
// @Summary Create a payment order
// @Description Amount is an integer in minor currency units (e.g. paise).
// @Tags payments
// @Accept json
// @Produce json
// @Param request body CreateOrderRequest true "Order amount"
// @Success 200 {object} model.Order
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /create-order [post]
func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(errors.Validation("amount must be an integer number of minor currency units"))
	}
	if req.Amount == "" {
		return errorResponse(errors.Validation("amount is required"))
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		return errorResponse(errors.Validation("amount must be a number"))
	}

	order, err := h.paymentService.CreateOrder(c.Request().Context(), amount)
	if err != nil {
		return errorResponse(err)
	}
	return c.JSON(http.StatusOK, order)
}

// VerifyPayment godoc
// @Summary Verify a payment signature
// @Tags payments
// @Accept json
// @Produce json
// @Param request body model.PaymentVerification true "Checkout result"
// @Success 200 {object} VerifyPaymentResponse
// @Failure 400 {object} VerifyPaymentResponse
// @Router /verify-payment [post]
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	var req model.PaymentVerification
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, VerifyPaymentResponse{
			Status:  model.VerificationFailed,
			Message: "invalid request body",
		})
	}

	if err := h.paymentService.VerifyPayment(c.Request().Context(), req); err != nil {
		return c.JSON(http.StatusBadRequest, VerifyPaymentResponse{
			Status:  model.VerificationFailed,
			Message: errors.MapErrorToHTTP(err).Message,
		})
	}

	return c.JSON(http.StatusOK, VerifyPaymentResponse{Status: model.VerificationVerified})
}
