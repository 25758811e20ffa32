package service

import (
	"context"
	"errors"
	"time"

	"github.com/minsukang/paylink/internal/domain/billing"
	domainErrors "github.com/minsukang/paylink/internal/domain/errors"
	"github.com/minsukang/paylink/internal/domain/lead"
	"github.com/minsukang/paylink/internal/gateway/toss"
	"github.com/minsukang/paylink/internal/notify"
	"github.com/minsukang/paylink/internal/observability"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("paylink/service")

// Gateway is the slice of the payment gateway client the service needs.
type Gateway interface {
	Configured() bool
	Confirm(ctx context.Context, req toss.ConfirmRequest) (*toss.Confirmation, error)
}

// Notifier delivers transactional email. May be nil when email is disabled.
type Notifier interface {
	SendReceipt(ctx context.Context, r notify.Receipt) error
}

// CheckoutService orchestrates the payment confirmation and payment request
// lookup flows.
type CheckoutService struct {
	gateway  Gateway
	requests billing.PaymentRequestRepository
	store    billing.CheckoutStore
	notifier Notifier
	metrics  *observability.Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(
	gateway Gateway,
	requests billing.PaymentRequestRepository,
	store billing.CheckoutStore,
	notifier Notifier,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *CheckoutService {
	return &CheckoutService{
		gateway:  gateway,
		requests: requests,
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// ConfirmRequest holds the input for confirming a payment. OrderID is the
// payment request's token, reused as the gateway's order identifier.
type ConfirmRequest struct {
	PaymentKey string
	OrderID    string
	Amount     int64
}

// ConfirmResult holds the outcome of a confirmation. Recorded is false when
// the gateway accepted the charge but no matching payment request existed
// locally, so nothing was written.
type ConfirmResult struct {
	Confirmation *toss.Confirmation
	Recorded     bool
}

// ConfirmPayment runs the full confirmation flow: validate, confirm with the
// gateway, then persist the payment row and the lead's paid transition in one
// transaction.
//
// The flow is deliberately not idempotent: a repeat call with the same
// OrderID goes back to the gateway, which is the authority on whether the
// charge already settled.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, req ConfirmRequest) (*ConfirmResult, error) {
	ctx, span := tracer.Start(ctx, "checkout.confirm_payment",
		trace.WithAttributes(attribute.String("order_id", req.OrderID)))
	defer span.End()

	start := s.now()

	if !s.gateway.Configured() {
		return nil, domainErrors.ErrGatewayNotConfigured
	}
	if req.PaymentKey == "" {
		return nil, domainErrors.NewValidationError("paymentKey", "cannot be empty")
	}
	if req.OrderID == "" {
		return nil, domainErrors.NewValidationError("orderId", "cannot be empty")
	}
	if req.Amount <= 0 {
		return nil, domainErrors.NewValidationError("amount", "must be greater than 0")
	}

	conf, err := s.gateway.Confirm(ctx, toss.ConfirmRequest{
		PaymentKey: req.PaymentKey,
		OrderID:    req.OrderID,
		Amount:     req.Amount,
	})
	if err != nil {
		// No local writes on gateway failure: a declined or erroring
		// confirmation must never leave a payment row behind.
		s.observeConfirmation("gateway_rejected", start)
		return nil, err
	}

	result := &ConfirmResult{Confirmation: conf}

	bundle, err := s.requests.FindByToken(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrPaymentRequestNotFound) {
			// The charge already settled at the gateway, so the caller
			// still gets a success. The missing local record is an
			// operator problem, not the buyer's.
			s.logger.Warn().
				Str("order_id", req.OrderID).
				Str("gateway_txn_id", conf.TransactionID).
				Msg("payment confirmed at gateway but no payment request found locally")
			s.observeConfirmation("orphaned", start)
			return result, nil
		}
		s.observeConfirmation("persistence_error", start)
		return nil, err
	}

	if bundle.Lead == nil {
		s.logger.Warn().
			Str("order_id", req.OrderID).
			Str("gateway_txn_id", conf.TransactionID).
			Msg("payment request has no joined lead, skipping local writes")
		s.observeConfirmation("orphaned", start)
		return result, nil
	}

	payment, err := billing.NewCompletedPayment(&bundle.Request, req.Amount, conf.Method, conf.TransactionID, s.now())
	if err != nil {
		s.observeConfirmation("persistence_error", start)
		return nil, err
	}

	if err := s.store.RecordPayment(ctx, payment, bundle.Lead.ID, lead.StatusPaid); err != nil {
		// The money has moved but the local record has not. Surfacing a
		// failure here is deliberate; the gap needs out-of-band
		// reconciliation either way.
		s.logger.Error().Err(err).
			Str("order_id", req.OrderID).
			Str("gateway_txn_id", conf.TransactionID).
			Msg("gateway charge succeeded but local persistence failed")
		s.observeConfirmation("persistence_error", start)
		return nil, err
	}
	result.Recorded = true
	if s.metrics != nil {
		s.metrics.PaymentsRecorded.Inc()
	}

	s.sendReceipt(ctx, bundle, payment, req.OrderID)

	s.observeConfirmation("success", start)
	s.logger.Info().
		Str("order_id", req.OrderID).
		Str("gateway_txn_id", conf.TransactionID).
		Int64("amount", payment.Amount).
		Msg("payment confirmed and recorded")
	return result, nil
}

// LookupPaymentRequest fetches the normalized bundle for a token. Read-only
// and safe to call repeatedly.
func (s *CheckoutService) LookupPaymentRequest(ctx context.Context, token string) (*billing.CheckoutBundle, error) {
	ctx, span := tracer.Start(ctx, "checkout.lookup_payment_request")
	defer span.End()

	if token == "" {
		return nil, domainErrors.NewValidationError("token", "cannot be empty")
	}

	bundle, err := s.requests.FindByToken(ctx, token)
	if err != nil {
		if s.metrics != nil {
			if errors.Is(err, domainErrors.ErrPaymentRequestNotFound) {
				s.metrics.LookupsTotal.WithLabelValues("not_found").Inc()
			} else {
				s.metrics.LookupsTotal.WithLabelValues("error").Inc()
			}
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.LookupsTotal.WithLabelValues("found").Inc()
	}
	return bundle, nil
}

// sendReceipt is best-effort: receipt delivery never fails a confirmed
// payment.
func (s *CheckoutService) sendReceipt(ctx context.Context, bundle *billing.CheckoutBundle, payment *billing.Payment, orderID string) {
	if s.notifier == nil || bundle.Lead == nil || bundle.Lead.Email == "" {
		return
	}

	err := s.notifier.SendReceipt(ctx, notify.Receipt{
		To:      bundle.Lead.Email,
		Name:    bundle.Lead.Name,
		OrderID: orderID,
		Amount:  payment.Amount,
		Method:  payment.Method,
		PaidAt:  *payment.PaidAt,
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.EmailSendFailures.Inc()
		}
		s.logger.Warn().Err(err).Str("order_id", orderID).Msg("failed to send payment receipt")
	}
}

func (s *CheckoutService) observeConfirmation(result string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.ConfirmationsTotal.WithLabelValues(result).Inc()
	s.metrics.ConfirmationDuration.Observe(s.now().Sub(start).Seconds())
}
