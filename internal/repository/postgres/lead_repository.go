package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	domainErrors "github.com/minsukang/paylink/internal/domain/errors"
	"github.com/minsukang/paylink/internal/domain/lead"
)

// LeadRepository implements lead.Repository using PostgreSQL.
type LeadRepository struct {
	pool *pgxpool.Pool
}

// NewLeadRepository creates a new LeadRepository.
func NewLeadRepository(pool *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{pool: pool}
}

func (r *LeadRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// GetByID retrieves a lead by its ID.
func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*lead.Lead, error) {
	l := &lead.Lead{}
	var status string
	err := r.db(ctx).QueryRow(ctx,
		`SELECT id, name, email, phone, company, message, status, created_at, updated_at
		 FROM leads WHERE id = $1`, id,
	).Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Company, &l.Message, &status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrLeadNotFound
		}
		return nil, fmt.Errorf("get lead: %w", err)
	}
	l.Status = lead.Status(status)
	return l, nil
}

// UpdateStatus overwrites the lead's status. There is no optimistic
// concurrency check; the last writer wins.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status lead.Status) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE leads SET status = $1, updated_at = NOW() WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrLeadNotFound
	}
	return nil
}
