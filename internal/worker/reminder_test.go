package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minsukang/paylink/internal/domain/billing"
	"github.com/minsukang/paylink/internal/notify"
	"github.com/minsukang/paylink/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSweeper(
	requests *testutil.MockPaymentRequestRepository,
	marker *testutil.MockMarker,
	lock *testutil.MockLocker,
	notifier *testutil.MockNotifier,
) *ReminderSweeper {
	return NewReminderSweeper(requests, marker, lock, notifier, nil, zerolog.Nop(), SweeperConfig{
		Interval: time.Minute,
		Window:   24 * time.Hour,
	})
}

func TestReminderSweeper_Sweep_SendsReminderForExpiringRequest(t *testing.T) {
	requests := testutil.NewMockPaymentRequestRepository()
	bundle := testutil.NewBundle("tok_abc", 150000)
	bundle.Request.ExpiresAt = time.Now().Add(2 * time.Hour)
	requests.AddBundle(bundle)

	notifier := &testutil.MockNotifier{}
	sweeper := newTestSweeper(requests, testutil.NewMockMarker(), &testutil.MockLocker{}, notifier)

	err := sweeper.Sweep(context.Background())

	require.NoError(t, err)
	reminders := notifier.Reminders()
	require.Len(t, reminders, 1)
	assert.Equal(t, bundle.Lead.Email, reminders[0].To)
	assert.Equal(t, "tok_abc", reminders[0].Token)
	assert.Equal(t, int64(150000), reminders[0].Amount)
}

func TestReminderSweeper_Sweep_RemindsEachRequestOnlyOnce(t *testing.T) {
	requests := testutil.NewMockPaymentRequestRepository()
	bundle := testutil.NewBundle("tok_once", 90000)
	bundle.Request.ExpiresAt = time.Now().Add(2 * time.Hour)
	requests.AddBundle(bundle)

	notifier := &testutil.MockNotifier{}
	sweeper := newTestSweeper(requests, testutil.NewMockMarker(), &testutil.MockLocker{}, notifier)

	require.NoError(t, sweeper.Sweep(context.Background()))
	require.NoError(t, sweeper.Sweep(context.Background()))

	assert.Len(t, notifier.Reminders(), 1)
}

func TestReminderSweeper_Sweep_SkipsWhenLockHeldElsewhere(t *testing.T) {
	requests := testutil.NewMockPaymentRequestRepository()
	bundle := testutil.NewBundle("tok_locked", 50000)
	bundle.Request.ExpiresAt = time.Now().Add(2 * time.Hour)
	requests.AddBundle(bundle)

	lock := &testutil.MockLocker{
		AcquireFunc: func(ctx context.Context) (bool, error) { return false, nil },
	}
	notifier := &testutil.MockNotifier{}
	sweeper := newTestSweeper(requests, testutil.NewMockMarker(), lock, notifier)

	err := sweeper.Sweep(context.Background())

	require.NoError(t, err)
	assert.Empty(t, notifier.Reminders())
}

func TestReminderSweeper_Sweep_NoopWhenNotifierDisabled(t *testing.T) {
	requests := testutil.NewMockPaymentRequestRepository()
	bundle := testutil.NewBundle("tok_disabled", 50000)
	bundle.Request.ExpiresAt = time.Now().Add(2 * time.Hour)
	requests.AddBundle(bundle)

	lock := &testutil.MockLocker{}
	notifier := &testutil.MockNotifier{Disabled: true}
	sweeper := newTestSweeper(requests, testutil.NewMockMarker(), lock, notifier)

	err := sweeper.Sweep(context.Background())

	require.NoError(t, err)
	assert.Empty(t, notifier.Reminders())
	assert.Zero(t, lock.Acquires())
}

func TestReminderSweeper_Sweep_SkipsBundleWithoutLead(t *testing.T) {
	requests := testutil.NewMockPaymentRequestRepository()
	bundle := testutil.NewBundle("tok_orphan", 50000)
	bundle.Request.ExpiresAt = time.Now().Add(2 * time.Hour)
	bundle.Lead = nil
	requests.AddBundle(bundle)

	notifier := &testutil.MockNotifier{}
	sweeper := newTestSweeper(requests, testutil.NewMockMarker(), &testutil.MockLocker{}, notifier)

	err := sweeper.Sweep(context.Background())

	require.NoError(t, err)
	assert.Empty(t, notifier.Reminders())
}

func TestReminderSweeper_Sweep_SendFailureDoesNotAbortSweep(t *testing.T) {
	requests := testutil.NewMockPaymentRequestRepository()
	first := testutil.NewBundle("tok_fail", 50000)
	first.Request.ExpiresAt = time.Now().Add(2 * time.Hour)
	second := testutil.NewBundle("tok_ok", 70000)
	second.Request.ExpiresAt = time.Now().Add(3 * time.Hour)
	requests.AddBundle(first)
	requests.AddBundle(second)

	var attempted []string
	notifier := &testutil.MockNotifier{
		SendReminderFunc: func(ctx context.Context, r notify.Reminder) error {
			attempted = append(attempted, r.Token)
			if r.Token == "tok_fail" {
				return errors.New("smtp unavailable")
			}
			return nil
		},
	}

	sweeper := newTestSweeper(requests, testutil.NewMockMarker(), &testutil.MockLocker{}, notifier)
	err := sweeper.Sweep(context.Background())

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"tok_fail", "tok_ok"}, attempted)
}

func TestReminderSweeper_Sweep_PropagatesRepositoryError(t *testing.T) {
	requests := testutil.NewMockPaymentRequestRepository()
	requests.FindExpiringFunc = func(ctx context.Context, window time.Duration) ([]*billing.CheckoutBundle, error) {
		return nil, errors.New("connection refused")
	}

	sweeper := newTestSweeper(requests, testutil.NewMockMarker(), &testutil.MockLocker{}, &testutil.MockNotifier{})

	err := sweeper.Sweep(context.Background())
	require.Error(t, err)
}
