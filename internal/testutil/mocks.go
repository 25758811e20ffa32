package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/minsukang/paylink/internal/domain/billing"
	domainErrors "github.com/minsukang/paylink/internal/domain/errors"
	"github.com/minsukang/paylink/internal/domain/lead"
	"github.com/minsukang/paylink/internal/gateway/toss"
	"github.com/minsukang/paylink/internal/notify"
)

// --- Payment Request Repository Mock ---

// MockPaymentRequestRepository is a mock implementation of
// billing.PaymentRequestRepository.
type MockPaymentRequestRepository struct {
	mu      sync.Mutex
	byToken map[string]*billing.CheckoutBundle

	FindByTokenFunc  func(ctx context.Context, token string) (*billing.CheckoutBundle, error)
	FindExpiringFunc func(ctx context.Context, window time.Duration) ([]*billing.CheckoutBundle, error)
}

func NewMockPaymentRequestRepository() *MockPaymentRequestRepository {
	return &MockPaymentRequestRepository{
		byToken: make(map[string]*billing.CheckoutBundle),
	}
}

// AddBundle pre-populates the mock with a bundle keyed by its token.
func (m *MockPaymentRequestRepository) AddBundle(bundle *billing.CheckoutBundle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byToken[bundle.Request.Token] = bundle
}

func (m *MockPaymentRequestRepository) FindByToken(ctx context.Context, token string) (*billing.CheckoutBundle, error) {
	if m.FindByTokenFunc != nil {
		return m.FindByTokenFunc(ctx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bundle, ok := m.byToken[token]
	if !ok {
		return nil, domainErrors.ErrPaymentRequestNotFound
	}
	return bundle, nil
}

func (m *MockPaymentRequestRepository) FindExpiring(ctx context.Context, window time.Duration) ([]*billing.CheckoutBundle, error) {
	if m.FindExpiringFunc != nil {
		return m.FindExpiringFunc(ctx, window)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var bundles []*billing.CheckoutBundle
	now := time.Now()
	for _, b := range m.byToken {
		if b.Request.ExpiresAt.After(now) && b.Request.ExpiresAt.Before(now.Add(window)) {
			bundles = append(bundles, b)
		}
	}
	return bundles, nil
}

// --- Checkout Store Mock ---

// RecordedPayment is one RecordPayment call captured by the mock store.
type RecordedPayment struct {
	Payment *billing.Payment
	LeadID  uuid.UUID
	Status  lead.Status
}

// MockCheckoutStore is a mock implementation of billing.CheckoutStore.
type MockCheckoutStore struct {
	mu       sync.Mutex
	recorded []RecordedPayment

	RecordPaymentFunc func(ctx context.Context, payment *billing.Payment, leadID uuid.UUID, status lead.Status) error
}

func (m *MockCheckoutStore) RecordPayment(ctx context.Context, payment *billing.Payment, leadID uuid.UUID, status lead.Status) error {
	if m.RecordPaymentFunc != nil {
		return m.RecordPaymentFunc(ctx, payment, leadID, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recorded = append(m.recorded, RecordedPayment{Payment: payment, LeadID: leadID, Status: status})
	return nil
}

// Recorded returns the captured RecordPayment calls.
func (m *MockCheckoutStore) Recorded() []RecordedPayment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RecordedPayment, len(m.recorded))
	copy(out, m.recorded)
	return out
}

// --- Gateway Mock ---

// MockGateway is a mock implementation of the gateway client.
type MockGateway struct {
	mu    sync.Mutex
	calls []toss.ConfirmRequest

	ConfiguredVal bool
	ConfirmFunc   func(ctx context.Context, req toss.ConfirmRequest) (*toss.Confirmation, error)
}

func NewMockGateway() *MockGateway {
	return &MockGateway{ConfiguredVal: true}
}

func (m *MockGateway) Configured() bool {
	return m.ConfiguredVal
}

func (m *MockGateway) Confirm(ctx context.Context, req toss.ConfirmRequest) (*toss.Confirmation, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, req)
	}
	return &toss.Confirmation{
		TransactionID: "gw_mock",
		OrderID:       req.OrderID,
		Method:        "card",
		Amount:        req.Amount,
		Status:        "DONE",
		Raw:           []byte(`{"id":"gw_mock","status":"DONE"}`),
	}, nil
}

// Calls returns the confirm requests seen so far.
func (m *MockGateway) Calls() []toss.ConfirmRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]toss.ConfirmRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// --- Notifier Mock ---

// MockNotifier is a mock implementation of the email notifier. The zero
// value behaves as an enabled sender that records every message.
type MockNotifier struct {
	mu        sync.Mutex
	receipts  []notify.Receipt
	reminders []notify.Reminder

	Disabled         bool
	SendReceiptFunc  func(ctx context.Context, r notify.Receipt) error
	SendReminderFunc func(ctx context.Context, r notify.Reminder) error
}

func (m *MockNotifier) Enabled() bool {
	return !m.Disabled
}

func (m *MockNotifier) SendReceipt(ctx context.Context, r notify.Receipt) error {
	if m.SendReceiptFunc != nil {
		return m.SendReceiptFunc(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts = append(m.receipts, r)
	return nil
}

func (m *MockNotifier) SendReminder(ctx context.Context, r notify.Reminder) error {
	if m.SendReminderFunc != nil {
		return m.SendReminderFunc(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminders = append(m.reminders, r)
	return nil
}

// Receipts returns the receipts sent so far.
func (m *MockNotifier) Receipts() []notify.Receipt {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notify.Receipt, len(m.receipts))
	copy(out, m.receipts)
	return out
}

// Reminders returns the reminders sent so far.
func (m *MockNotifier) Reminders() []notify.Reminder {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]notify.Reminder, len(m.reminders))
	copy(out, m.reminders)
	return out
}

// --- Locker Mock ---

// MockLocker is an in-memory single-instance lock.
type MockLocker struct {
	mu       sync.Mutex
	held     bool
	acquires int

	AcquireFunc func(ctx context.Context) (bool, error)
}

func (m *MockLocker) Acquire(ctx context.Context) (bool, error) {
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acquires++
	if m.held {
		return false, nil
	}
	m.held = true
	return true, nil
}

func (m *MockLocker) Release(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.held = false
	return nil
}

// Acquires returns how many times Acquire was called.
func (m *MockLocker) Acquires() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acquires
}

// --- Marker Mock ---

// MockMarker is an in-memory one-shot marker.
type MockMarker struct {
	mu   sync.Mutex
	seen map[string]bool

	MarkOnceFunc func(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

func NewMockMarker() *MockMarker {
	return &MockMarker{seen: make(map[string]bool)}
}

func (m *MockMarker) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if m.MarkOnceFunc != nil {
		return m.MarkOnceFunc(ctx, key, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}
