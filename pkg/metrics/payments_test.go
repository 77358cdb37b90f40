package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPaymentMetricsRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPaymentMetrics(reg)

	m.IncAttempt("succeeded")
	m.IncAttempt("succeeded")
	m.IncAttempt("declined")
	m.IncAttempt("")

	if got := testutil.ToFloat64(m.attempts.WithLabelValues("succeeded")); got != 2 {
		t.Fatalf("expected 2 succeeded attempts, got %v", got)
	}
	if got := testutil.ToFloat64(m.attempts.WithLabelValues("declined")); got != 1 {
		t.Fatalf("expected 1 declined attempt, got %v", got)
	}
	if got := testutil.ToFloat64(m.attempts.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("empty outcome should normalize to unknown, got %v", got)
	}
}

func TestPaymentMetricsOnboardingAndLag(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPaymentMetrics(reg)

	m.IncOnboarding("reused")
	m.SetOutboxLag(7)
	m.ObserveIntentDuration("create", 150*time.Millisecond)

	if got := testutil.ToFloat64(m.onboarding.WithLabelValues("reused")); got != 1 {
		t.Fatalf("expected 1 reused onboarding, got %v", got)
	}
	if got := testutil.ToFloat64(m.outboxLag); got != 7 {
		t.Fatalf("expected lag gauge 7, got %v", got)
	}
}

func TestPaymentMetricsNilSafe(t *testing.T) {
	var m *PaymentMetrics
	m.IncAttempt("succeeded")
	m.IncOnboarding("created")
	m.SetOutboxLag(1)
	m.ObserveIntentDuration("create", time.Second)

	empty := NewPaymentMetrics(nil)
	empty.IncAttempt("succeeded")
}
