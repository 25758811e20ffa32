package worker

import (
	"context"
	"time"

	"github.com/minsukang/paylink/internal/domain/billing"
	"github.com/minsukang/paylink/internal/notify"
	"github.com/minsukang/paylink/internal/observability"
	"github.com/rs/zerolog"
)

// Marker records that a reminder went out so repeated sweeps (or other
// instances) don't mail the same lead twice.
type Marker interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Locker serializes sweeps across instances.
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Notifier is the subset of the email sender the sweeper needs.
type Notifier interface {
	Enabled() bool
	SendReminder(ctx context.Context, r notify.Reminder) error
}

// ReminderSweeper periodically scans for unpaid payment requests nearing
// their deadline and emails the lead a reminder. Each request is reminded
// at most once per expiry window.
type ReminderSweeper struct {
	requests billing.PaymentRequestRepository
	marker   Marker
	lock     Locker
	notifier Notifier
	metrics  *observability.Metrics
	logger   zerolog.Logger

	interval time.Duration
	window   time.Duration
}

type SweeperConfig struct {
	Interval time.Duration
	Window   time.Duration
}

func NewReminderSweeper(
	requests billing.PaymentRequestRepository,
	marker Marker,
	lock Locker,
	notifier Notifier,
	metrics *observability.Metrics,
	logger zerolog.Logger,
	cfg SweeperConfig,
) *ReminderSweeper {
	return &ReminderSweeper{
		requests: requests,
		marker:   marker,
		lock:     lock,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger.With().Str("component", "reminder_sweeper").Logger(),
		interval: cfg.Interval,
		window:   cfg.Window,
	}
}

// Run sweeps on a fixed interval until ctx is cancelled.
func (s *ReminderSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().
		Dur("interval", s.interval).
		Dur("window", s.window).
		Msg("Reminder sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Reminder sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Sweep failed")
			}
		}
	}
}

// Sweep runs a single pass. It holds a distributed lock for the duration so
// that only one instance mails reminders at a time.
func (s *ReminderSweeper) Sweep(ctx context.Context) error {
	if !s.notifier.Enabled() {
		return nil
	}

	acquired, err := s.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		s.logger.Debug().Msg("Another instance is sweeping, skipping")
		return nil
	}
	defer s.lock.Release(ctx)

	bundles, err := s.requests.FindExpiring(ctx, s.window)
	if err != nil {
		return err
	}

	for _, bundle := range bundles {
		if err := s.remind(ctx, bundle); err != nil {
			s.logger.Error().
				Err(err).
				Str("token", bundle.Request.Token).
				Msg("Failed to send reminder")
		}
	}
	return nil
}

func (s *ReminderSweeper) remind(ctx context.Context, bundle *billing.CheckoutBundle) error {
	if bundle.Lead == nil || bundle.Quote == nil {
		s.logger.Warn().
			Str("token", bundle.Request.Token).
			Msg("Expiring request has no quote or lead attached, skipping")
		return nil
	}

	// The mark lives slightly longer than the window so a request is never
	// reminded twice even when sweeps overlap its expiry.
	first, err := s.marker.MarkOnce(ctx, "reminder:"+bundle.Request.Token, 2*s.window)
	if err != nil {
		return err
	}
	if !first {
		return nil
	}

	err = s.notifier.SendReminder(ctx, notify.Reminder{
		To:        bundle.Lead.Email,
		Name:      bundle.Lead.Name,
		Token:     bundle.Request.Token,
		Amount:    bundle.Quote.TotalAmount,
		ExpiresAt: bundle.Request.ExpiresAt,
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.EmailSendFailures.Inc()
		}
		return err
	}

	if s.metrics != nil {
		s.metrics.RemindersSent.Inc()
	}
	s.logger.Info().
		Str("token", bundle.Request.Token).
		Str("email", bundle.Lead.Email).
		Msg("Reminder sent")
	return nil
}
