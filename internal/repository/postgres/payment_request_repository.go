package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minsukang/paylink/internal/domain/billing"
	domainErrors "github.com/minsukang/paylink/internal/domain/errors"
	"github.com/minsukang/paylink/internal/domain/lead"
	"github.com/minsukang/paylink/pkg/jsonx"
)

// bundleQuery joins a payment request to its quote and lead, aggregating the
// related rows as JSON. json_agg over a LEFT JOIN yields a one-element array,
// or [null] when nothing matched; the scan below normalizes both shapes to a
// single object before the bundle leaves this package.
const bundleQuery = `
	SELECT pr.id, pr.quote_id, pr.token, pr.expires_at, pr.created_at,
	       json_agg(q.*) AS quote,
	       json_agg(l.*) AS lead
	FROM payment_requests pr
	LEFT JOIN quotes q ON q.id = pr.quote_id
	LEFT JOIN leads  l ON l.id = q.lead_id`

// PaymentRequestRepository implements billing.PaymentRequestRepository using
// PostgreSQL.
type PaymentRequestRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRequestRepository creates a new PaymentRequestRepository.
func NewPaymentRequestRepository(pool *pgxpool.Pool) *PaymentRequestRepository {
	return &PaymentRequestRepository{pool: pool}
}

func (r *PaymentRequestRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// FindByToken retrieves the payment request bundle for an opaque token.
func (r *PaymentRequestRepository) FindByToken(ctx context.Context, token string) (*billing.CheckoutBundle, error) {
	row := r.db(ctx).QueryRow(ctx,
		bundleQuery+` WHERE pr.token = $1 GROUP BY pr.id`, token)

	bundle, err := scanBundle(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrPaymentRequestNotFound
		}
		return nil, err
	}
	return bundle, nil
}

// FindExpiring lists unpaid requests whose deadline falls within the window
// from now.
func (r *PaymentRequestRepository) FindExpiring(ctx context.Context, window time.Duration) ([]*billing.CheckoutBundle, error) {
	rows, err := r.db(ctx).Query(ctx,
		bundleQuery+`
		 WHERE pr.expires_at > NOW()
		   AND pr.expires_at <= NOW() + make_interval(secs => $1)
		   AND NOT EXISTS (
		     SELECT 1 FROM payments p
		     WHERE p.payment_request_id = pr.id AND p.status = 'completed'
		   )
		 GROUP BY pr.id
		 ORDER BY pr.expires_at ASC`, window.Seconds())
	if err != nil {
		return nil, fmt.Errorf("list expiring payment requests: %w", err)
	}
	defer rows.Close()

	var bundles []*billing.CheckoutBundle
	for rows.Next() {
		bundle, err := scanBundle(rows)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, bundle)
	}
	return bundles, rows.Err()
}

// --- scanning helpers ---

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// quoteRow mirrors the quotes table as emitted by json_agg.
type quoteRow struct {
	ID          uuid.UUID       `json:"id"`
	LeadID      uuid.UUID       `json:"lead_id"`
	TotalAmount int64           `json:"total_amount"`
	LineItems   json.RawMessage `json:"line_items"`
	CreatedAt   time.Time       `json:"created_at"`
}

// leadRow mirrors the leads table as emitted by json_agg.
type leadRow struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Company   string    `json:"company"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func scanBundle(s scanner) (*billing.CheckoutBundle, error) {
	bundle := &billing.CheckoutBundle{}
	var quoteJSON, leadJSON []byte

	err := s.Scan(
		&bundle.Request.ID, &bundle.Request.QuoteID, &bundle.Request.Token,
		&bundle.Request.ExpiresAt, &bundle.Request.CreatedAt,
		&quoteJSON, &leadJSON,
	)
	if err != nil {
		return nil, err
	}

	quote, err := unwrapQuote(quoteJSON)
	if err != nil {
		return nil, err
	}
	bundle.Quote = quote

	ld, err := unwrapLead(leadJSON)
	if err != nil {
		return nil, err
	}
	bundle.Lead = ld

	return bundle, nil
}

func unwrapQuote(data []byte) (*billing.Quote, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var oom jsonx.OneOrMany[quoteRow]
	if err := json.Unmarshal(data, &oom); err != nil {
		return nil, fmt.Errorf("decode quote join: %w", err)
	}
	row, ok := oom.First()
	if !ok {
		return nil, nil
	}

	quote := &billing.Quote{
		ID:          row.ID,
		LeadID:      row.LeadID,
		TotalAmount: row.TotalAmount,
		CreatedAt:   row.CreatedAt,
	}
	if len(row.LineItems) > 0 {
		if err := json.Unmarshal(row.LineItems, &quote.LineItems); err != nil {
			return nil, fmt.Errorf("decode quote line items: %w", err)
		}
	}
	return quote, nil
}

func unwrapLead(data []byte) (*lead.Lead, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var oom jsonx.OneOrMany[leadRow]
	if err := json.Unmarshal(data, &oom); err != nil {
		return nil, fmt.Errorf("decode lead join: %w", err)
	}
	row, ok := oom.First()
	if !ok {
		return nil, nil
	}

	return &lead.Lead{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Phone:     row.Phone,
		Company:   row.Company,
		Message:   row.Message,
		Status:    lead.Status(row.Status),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
