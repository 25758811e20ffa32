package controller

import (
	"encoding/json"
	"time"

	"github.com/minsukang/paylink/internal/domain/billing"
	"github.com/minsukang/paylink/internal/domain/lead"
)

// ConfirmPaymentRequest is the confirm-payment request body.
type ConfirmPaymentRequest struct {
	PaymentKey string `json:"paymentKey" validate:"required"`
	OrderID    string `json:"orderId" validate:"required"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
}

// ConfirmPaymentResponse echoes the gateway's canonical payment object.
type ConfirmPaymentResponse struct {
	Success bool            `json:"success"`
	Payment json.RawMessage `json:"payment"`
}

// LookupRequest is the payment-request-lookup request body.
type LookupRequest struct {
	Token string `json:"token" validate:"required"`
}

// LookupResponse carries the normalized bundle for the payment screen. Quote
// and Lead are single objects or null, never collections.
type LookupResponse struct {
	PaymentRequest PaymentRequestResponse `json:"payment_request"`
	Quote          *QuoteResponse         `json:"quote"`
	Lead           *LeadResponse          `json:"lead"`
}

// PaymentRequestResponse is the wire shape of a payment request.
type PaymentRequestResponse struct {
	ID        string    `json:"id"`
	QuoteID   string    `json:"quote_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// QuoteResponse is the wire shape of a quote.
type QuoteResponse struct {
	ID          string             `json:"id"`
	LeadID      string             `json:"lead_id"`
	TotalAmount int64              `json:"total_amount"`
	LineItems   []billing.LineItem `json:"line_items"`
	CreatedAt   time.Time          `json:"created_at"`
}

// LeadResponse is the wire shape of a lead.
type LeadResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Status  string `json:"status"`
}

// ErrorResponse is the error body for all failure responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// FromBundle converts a checkout bundle into its response shape.
func FromBundle(b *billing.CheckoutBundle) *LookupResponse {
	resp := &LookupResponse{
		PaymentRequest: PaymentRequestResponse{
			ID:        b.Request.ID.String(),
			QuoteID:   b.Request.QuoteID.String(),
			Token:     b.Request.Token,
			ExpiresAt: b.Request.ExpiresAt,
			CreatedAt: b.Request.CreatedAt,
		},
	}
	if b.Quote != nil {
		resp.Quote = fromQuote(b.Quote)
	}
	if b.Lead != nil {
		resp.Lead = fromLead(b.Lead)
	}
	return resp
}

func fromQuote(q *billing.Quote) *QuoteResponse {
	return &QuoteResponse{
		ID:          q.ID.String(),
		LeadID:      q.LeadID.String(),
		TotalAmount: q.TotalAmount,
		LineItems:   q.LineItems,
		CreatedAt:   q.CreatedAt,
	}
}

func fromLead(l *lead.Lead) *LeadResponse {
	return &LeadResponse{
		ID:      l.ID.String(),
		Name:    l.Name,
		Email:   l.Email,
		Phone:   l.Phone,
		Company: l.Company,
		Status:  string(l.Status),
	}
}
