package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/minsukang/paylink/internal/domain/lead"
)

// PaymentRequestRepository defines the read interface over payment requests
// joined to their quote and lead.
type PaymentRequestRepository interface {
	// FindByToken retrieves the bundle for the given opaque token.
	// Absence is reported as errors.ErrPaymentRequestNotFound.
	FindByToken(ctx context.Context, token string) (*CheckoutBundle, error)

	// FindExpiring lists unpaid requests whose deadline falls within the
	// window from now, for reminder delivery.
	FindExpiring(ctx context.Context, window time.Duration) ([]*CheckoutBundle, error)
}

// PaymentRepository defines the interface for payment persistence.
type PaymentRepository interface {
	// Create inserts a new payment row.
	Create(ctx context.Context, payment *Payment) error

	// GetByRequestID retrieves the payment recorded for a payment request.
	GetByRequestID(ctx context.Context, requestID uuid.UUID) (*Payment, error)
}

// CheckoutStore commits the payment row and the lead status transition as a
// single unit of work. The underlying store must guarantee both writes land
// or neither does.
type CheckoutStore interface {
	RecordPayment(ctx context.Context, payment *Payment, leadID uuid.UUID, status lead.Status) error
}
