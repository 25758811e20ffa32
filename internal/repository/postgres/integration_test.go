//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minsukang/paylink/internal/domain/billing"
	domainErrors "github.com/minsukang/paylink/internal/domain/errors"
	"github.com/minsukang/paylink/internal/domain/lead"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("paylink_test"),
		tcpostgres.WithUsername("paylink"),
		tcpostgres.WithPassword("paylink"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, container)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := migrate.New("file://../../../migrations", dsn)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	m.Close()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

// seedRequest inserts a lead, quote and payment request and returns them.
func seedRequest(t *testing.T, pool *pgxpool.Pool, token string, expiresAt time.Time) (uuid.UUID, uuid.UUID, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	leadID := uuid.New()
	_, err := pool.Exec(ctx,
		`INSERT INTO leads (id, name, email, phone, status) VALUES ($1, 'Kim Jiyoung', 'kim@example.com', '010-1234-5678', 'quoted')`,
		leadID)
	require.NoError(t, err)

	quoteID := uuid.New()
	_, err = pool.Exec(ctx,
		`INSERT INTO quotes (id, lead_id, total_amount, line_items)
		 VALUES ($1, $2, 150000, '[{"name":"Design subscription (monthly)","quantity":1,"unit_price":150000}]')`,
		quoteID, leadID)
	require.NoError(t, err)

	requestID := uuid.New()
	_, err = pool.Exec(ctx,
		`INSERT INTO payment_requests (id, quote_id, token, expires_at) VALUES ($1, $2, $3, $4)`,
		requestID, quoteID, token, expiresAt)
	require.NoError(t, err)

	return leadID, quoteID, requestID
}

func TestPaymentRequestRepository_FindByToken_Integration(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	leadID, quoteID, requestID := seedRequest(t, pool, "tok_integration", time.Now().Add(24*time.Hour))

	repo := NewPaymentRequestRepository(pool)
	bundle, err := repo.FindByToken(ctx, "tok_integration")

	require.NoError(t, err)
	assert.Equal(t, requestID, bundle.Request.ID)
	require.NotNil(t, bundle.Quote)
	assert.Equal(t, quoteID, bundle.Quote.ID)
	assert.Equal(t, int64(150000), bundle.Quote.TotalAmount)
	require.Len(t, bundle.Quote.LineItems, 1)
	require.NotNil(t, bundle.Lead)
	assert.Equal(t, leadID, bundle.Lead.ID)
	assert.Equal(t, "kim@example.com", bundle.Lead.Email)
}

func TestPaymentRequestRepository_FindByToken_NotFound_Integration(t *testing.T) {
	pool := setupTestDB(t)

	repo := NewPaymentRequestRepository(pool)
	_, err := repo.FindByToken(context.Background(), "tok_missing")

	assert.ErrorIs(t, err, domainErrors.ErrPaymentRequestNotFound)
}

func TestCheckoutStore_RecordPayment_Integration(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	leadID, _, _ := seedRequest(t, pool, "tok_record", time.Now().Add(24*time.Hour))

	repo := NewPaymentRequestRepository(pool)
	bundle, err := repo.FindByToken(ctx, "tok_record")
	require.NoError(t, err)

	payment, err := billing.NewCompletedPayment(&bundle.Request, 150000, "card", "gw_int_1", time.Now())
	require.NoError(t, err)

	store := NewCheckoutStore(pool)
	require.NoError(t, store.RecordPayment(ctx, payment, leadID, lead.StatusPaid))

	got, err := NewPaymentRepository(pool).GetByRequestID(ctx, bundle.Request.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.PaymentCompleted, got.Status)
	assert.Equal(t, "gw_int_1", got.GatewayTxnID)

	updated, err := NewLeadRepository(pool).GetByID(ctx, leadID)
	require.NoError(t, err)
	assert.Equal(t, lead.StatusPaid, updated.Status)
}

func TestCheckoutStore_RecordPayment_RollsBackOnUnknownLead_Integration(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	_, _, _ = seedRequest(t, pool, "tok_rollback", time.Now().Add(24*time.Hour))

	repo := NewPaymentRequestRepository(pool)
	bundle, err := repo.FindByToken(ctx, "tok_rollback")
	require.NoError(t, err)

	payment, err := billing.NewCompletedPayment(&bundle.Request, 150000, "card", "gw_int_2", time.Now())
	require.NoError(t, err)

	store := NewCheckoutStore(pool)
	err = store.RecordPayment(ctx, payment, uuid.New(), lead.StatusPaid)
	require.Error(t, err)

	// The payment insert must have rolled back with the failed lead update.
	_, err = NewPaymentRepository(pool).GetByRequestID(ctx, bundle.Request.ID)
	assert.ErrorIs(t, err, domainErrors.ErrPaymentNotFound)
}

func TestPaymentRequestRepository_FindExpiring_Integration(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()

	seedRequest(t, pool, "tok_soon", time.Now().Add(2*time.Hour))
	seedRequest(t, pool, "tok_later", time.Now().Add(72*time.Hour))

	repo := NewPaymentRequestRepository(pool)
	bundles, err := repo.FindExpiring(ctx, 24*time.Hour)

	require.NoError(t, err)
	require.Len(t, bundles, 1)
	assert.Equal(t, "tok_soon", bundles[0].Request.Token)
	require.NotNil(t, bundles[0].Lead)
}
