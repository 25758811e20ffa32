package controller

import (
	"net/http"

	"github.com/minsukang/paylink/internal/service"
)

// CheckoutController handles the payment confirmation and payment request
// lookup endpoints.
type CheckoutController struct {
	checkout *service.CheckoutService
}

// NewCheckoutController creates a new CheckoutController.
func NewCheckoutController(checkout *service.CheckoutService) *CheckoutController {
	return &CheckoutController{checkout: checkout}
}

// ConfirmPayment handles POST /confirm-payment
func (h *CheckoutController) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req ConfirmPaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.checkout.ConfirmPayment(r.Context(), service.ConfirmRequest{
		PaymentKey: req.PaymentKey,
		OrderID:    req.OrderID,
		Amount:     req.Amount,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ConfirmPaymentResponse{
		Success: true,
		Payment: result.Confirmation.Raw,
	})
}

// LookupPaymentRequest handles POST /payment-request-lookup
func (h *CheckoutController) LookupPaymentRequest(w http.ResponseWriter, r *http.Request) {
	var req LookupRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	bundle, err := h.checkout.LookupPaymentRequest(r.Context(), req.Token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromBundle(bundle))
}
