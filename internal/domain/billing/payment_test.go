package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	domainErrors "github.com/minsukang/paylink/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest(expiresAt time.Time) *PaymentRequest {
	return &PaymentRequest{
		ID:        uuid.New(),
		QuoteID:   uuid.New(),
		Token:     "tok_test",
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
}

func TestNewCompletedPayment(t *testing.T) {
	now := time.Now()
	req := testRequest(now.Add(24 * time.Hour))

	p, err := NewCompletedPayment(req, 50000, "card", "gw_1", now)

	require.NoError(t, err)
	assert.Equal(t, req.QuoteID, p.QuoteID)
	assert.Equal(t, req.ID, p.PaymentRequestID)
	assert.Equal(t, int64(50000), p.Amount)
	assert.Equal(t, PaymentCompleted, p.Status)
	assert.Equal(t, "card", p.Method)
	assert.Equal(t, "gw_1", p.GatewayTxnID)
	require.NotNil(t, p.PaidAt)
	assert.True(t, p.PaidAt.Equal(now))
	assert.NotEqual(t, uuid.Nil, p.ID)
}

func TestNewCompletedPayment_Validation(t *testing.T) {
	now := time.Now()
	req := testRequest(now.Add(24 * time.Hour))

	tests := []struct {
		name         string
		req          *PaymentRequest
		amount       int64
		gatewayTxnID string
	}{
		{"nil request", nil, 50000, "gw_1"},
		{"zero amount", req, 0, "gw_1"},
		{"negative amount", req, -100, "gw_1"},
		{"empty transaction id", req, 50000, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewCompletedPayment(tt.req, tt.amount, "card", tt.gatewayTxnID, now)
			require.Error(t, err)
			assert.Nil(t, p)
		})
	}
}

func TestNewCompletedPayment_ValidationErrorType(t *testing.T) {
	now := time.Now()
	req := testRequest(now.Add(24 * time.Hour))

	_, err := NewCompletedPayment(req, 0, "card", "gw_1", now)

	var ve *domainErrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "amount", ve.Field)
}

func TestPaymentRequest_Expired(t *testing.T) {
	now := time.Now()

	live := testRequest(now.Add(time.Hour))
	assert.False(t, live.Expired(now))

	dead := testRequest(now.Add(-time.Hour))
	assert.True(t, dead.Expired(now))
}
