package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/minsukang/paylink/internal/domain/lead"
)

// PaymentRequest is a tokenized invitation to pay a specific quote. The token
// is opaque and unguessable; it doubles as the gateway order id during
// confirmation.
type PaymentRequest struct {
	ID        uuid.UUID
	QuoteID   uuid.UUID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the request's pay-by deadline has passed.
func (r *PaymentRequest) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// CheckoutBundle is the normalized payment request joined to its quote and
// lead. Quote and Lead may be nil when the join produced no related row; the
// persistence layer is responsible for unwrapping one-element collections
// before handing the bundle out.
type CheckoutBundle struct {
	Request PaymentRequest
	Quote   *Quote
	Lead    *lead.Lead
}
