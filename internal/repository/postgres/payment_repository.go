package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minsukang/paylink/internal/domain/billing"
	domainErrors "github.com/minsukang/paylink/internal/domain/errors"
)

// PaymentRepository implements billing.PaymentRepository using PostgreSQL.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// Create inserts a new payment row.
func (r *PaymentRepository) Create(ctx context.Context, p *billing.Payment) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO payments
		 (id, quote_id, payment_request_id, user_id, amount, status, method, gateway_txn_id, paid_at, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.QuoteID, p.PaymentRequestID, p.UserID, p.Amount,
		string(p.Status), p.Method, p.GatewayTxnID, p.PaidAt, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByRequestID retrieves the payment recorded for a payment request.
func (r *PaymentRepository) GetByRequestID(ctx context.Context, requestID uuid.UUID) (*billing.Payment, error) {
	p := &billing.Payment{}
	var status string
	err := r.db(ctx).QueryRow(ctx,
		`SELECT id, quote_id, payment_request_id, user_id, amount, status, method, gateway_txn_id, paid_at, created_at
		 FROM payments WHERE payment_request_id = $1
		 ORDER BY created_at DESC LIMIT 1`, requestID,
	).Scan(&p.ID, &p.QuoteID, &p.PaymentRequestID, &p.UserID, &p.Amount,
		&status, &p.Method, &p.GatewayTxnID, &p.PaidAt, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	p.Status = billing.PaymentStatus(status)
	return p, nil
}
