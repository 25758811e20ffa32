package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minsukang/paylink/internal/domain/billing"
	"github.com/minsukang/paylink/internal/domain/lead"
)

// CheckoutStore commits the payment insert and the lead status transition in
// a single transaction. A crash between the two writes can therefore never
// leave a completed payment next to an unpaid lead.
type CheckoutStore struct {
	txManager *TxManager
	payments  *PaymentRepository
	leads     *LeadRepository
}

// NewCheckoutStore creates a new CheckoutStore.
func NewCheckoutStore(pool *pgxpool.Pool) *CheckoutStore {
	return &CheckoutStore{
		txManager: NewTxManager(pool),
		payments:  NewPaymentRepository(pool),
		leads:     NewLeadRepository(pool),
	}
}

// RecordPayment writes the payment row and moves the lead to the new status,
// committing both or neither.
func (s *CheckoutStore) RecordPayment(ctx context.Context, payment *billing.Payment, leadID uuid.UUID, status lead.Status) error {
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.payments.Create(txCtx, payment); err != nil {
			return err
		}
		return s.leads.UpdateStatus(txCtx, leadID, status)
	})
	if err != nil {
		return fmt.Errorf("record payment: %w", err)
	}
	return nil
}
