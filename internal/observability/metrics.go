package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Confirmation metrics
	ConfirmationsTotal   *prometheus.CounterVec
	ConfirmationDuration prometheus.Histogram
	PaymentsRecorded     prometheus.Counter

	// Lookup metrics
	LookupsTotal *prometheus.CounterVec

	// Gateway metrics
	GatewayRequestsTotal *prometheus.CounterVec
	CircuitBreakerState  *prometheus.GaugeVec

	// Notification metrics
	RemindersSent     prometheus.Counter
	EmailSendFailures prometheus.Counter

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics against the given registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := prometheus.WrapRegistererWith(nil, reg)

	m := &Metrics{
		ConfirmationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "confirmations_total",
				Help:      "Total number of payment confirmation attempts by result",
			},
			[]string{"result"},
		),
		ConfirmationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "confirmation_duration_seconds",
				Help:      "End-to-end confirmation duration in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		),
		PaymentsRecorded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_recorded_total",
				Help:      "Total number of payment rows written",
			},
		),
		LookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_request_lookups_total",
				Help:      "Total number of payment request lookups by result",
			},
			[]string{"result"},
		),
		GatewayRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gateway_requests_total",
				Help:      "Total number of gateway confirm requests by outcome",
			},
			[]string{"outcome"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),
		RemindersSent: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reminders_sent_total",
				Help:      "Total number of payment reminder emails sent",
			},
		),
		EmailSendFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "email_send_failures_total",
				Help:      "Total number of transactional email sends that failed after retries",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	factory.MustRegister(
		m.ConfirmationsTotal,
		m.ConfirmationDuration,
		m.PaymentsRecorded,
		m.LookupsTotal,
		m.GatewayRequestsTotal,
		m.CircuitBreakerState,
		m.RemindersSent,
		m.EmailSendFailures,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)

	return m
}
