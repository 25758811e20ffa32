package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/minsukang/paylink/internal/domain/errors"
)

// PaymentStatus represents the state of a charge record.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment is the durable record of a completed charge. Exactly one row is
// written per successful gateway confirmation; declined or erroring
// confirmations never produce a row.
type Payment struct {
	ID               uuid.UUID
	QuoteID          uuid.UUID
	PaymentRequestID uuid.UUID
	UserID           *string
	Amount           int64
	Status           PaymentStatus
	Method           string
	GatewayTxnID     string
	PaidAt           *time.Time
	CreatedAt        time.Time
}

// NewCompletedPayment builds the payment row for a confirmation the gateway
// already accepted, echoing the gateway's method and transaction id.
func NewCompletedPayment(req *PaymentRequest, amount int64, method, gatewayTxnID string, now time.Time) (*Payment, error) {
	if req == nil {
		return nil, errors.ErrInvalidInput
	}
	if amount <= 0 {
		return nil, errors.NewValidationError("amount", "must be greater than 0")
	}
	if gatewayTxnID == "" {
		return nil, errors.NewValidationError("gateway_txn_id", "cannot be empty")
	}
	paidAt := now
	return &Payment{
		ID:               uuid.New(),
		QuoteID:          req.QuoteID,
		PaymentRequestID: req.ID,
		Amount:           amount,
		Status:           PaymentCompleted,
		Method:           method,
		GatewayTxnID:     gatewayTxnID,
		PaidAt:           &paidAt,
		CreatedAt:        now,
	}, nil
}
