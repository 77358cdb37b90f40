package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records payment and onboarding outcomes.
type PaymentMetrics struct {
	attempts       *prometheus.CounterVec
	intentDuration *prometheus.HistogramVec
	onboarding     *prometheus.CounterVec
	outboxLag      prometheus.Gauge
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_attempts_total",
		Help: "Payment submissions by terminal outcome.",
	}, []string{"outcome"})
	intentDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "payment_intent_duration_seconds",
		Help:    "Duration of processor intent calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	onboarding := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "partner_onboarding_total",
		Help: "Partner onboarding operations by result.",
	}, []string{"result"})
	outboxLag := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "outbox_unpublished_events",
		Help: "Outbox rows awaiting publication.",
	})
	reg.MustRegister(attempts, intentDuration, onboarding, outboxLag)
	return &PaymentMetrics{
		attempts:       attempts,
		intentDuration: intentDuration,
		onboarding:     onboarding,
		outboxLag:      outboxLag,
	}
}

// IncAttempt counts a payment submission by outcome
// (succeeded, requires_action, declined, failed, rejected).
func (m *PaymentMetrics) IncAttempt(outcome string) {
	if m == nil || m.attempts == nil {
		return
	}
	m.attempts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveIntentDuration records how long a processor intent call took.
func (m *PaymentMetrics) ObserveIntentDuration(operation string, duration time.Duration) {
	if m == nil || m.intentDuration == nil {
		return
	}
	m.intentDuration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncOnboarding counts an onboarding operation by result
// (created, reused, verified, pending, disconnected, error).
func (m *PaymentMetrics) IncOnboarding(result string) {
	if m == nil || m.onboarding == nil {
		return
	}
	m.onboarding.WithLabelValues(normalizeLabel(result)).Inc()
}

// SetOutboxLag reports the current unpublished outbox backlog.
func (m *PaymentMetrics) SetOutboxLag(count float64) {
	if m == nil || m.outboxLag == nil {
		return
	}
	m.outboxLag.Set(count)
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
