package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/minsukang/paylink/internal/domain/billing"
	"github.com/minsukang/paylink/internal/domain/lead"
)

// NewLead returns a quoted lead with sensible defaults.
func NewLead() *lead.Lead {
	now := time.Now()
	return &lead.Lead{
		ID:        uuid.New(),
		Name:      "Kim Jiyoung",
		Email:     "kim@example.com",
		Phone:     "010-1234-5678",
		Company:   "Example Studio",
		Message:   "Need a brand refresh",
		Status:    lead.StatusQuoted,
		CreatedAt: now.Add(-72 * time.Hour),
		UpdatedAt: now.Add(-24 * time.Hour),
	}
}

// NewQuote returns a quote for the given lead.
func NewQuote(leadID uuid.UUID, total int64) *billing.Quote {
	return &billing.Quote{
		ID:          uuid.New(),
		LeadID:      leadID,
		TotalAmount: total,
		LineItems: []billing.LineItem{
			{Name: "Design subscription (monthly)", Quantity: 1, UnitPrice: total},
		},
		CreatedAt: time.Now().Add(-24 * time.Hour),
	}
}

// NewBundle assembles a full checkout bundle around a token.
func NewBundle(token string, total int64) *billing.CheckoutBundle {
	ld := NewLead()
	quote := NewQuote(ld.ID, total)
	return &billing.CheckoutBundle{
		Request: billing.PaymentRequest{
			ID:        uuid.New(),
			QuoteID:   quote.ID,
			Token:     token,
			ExpiresAt: time.Now().Add(72 * time.Hour),
			CreatedAt: time.Now().Add(-time.Hour),
		},
		Quote: quote,
		Lead:  ld,
	}
}
