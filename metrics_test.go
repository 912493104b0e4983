package claimd

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"pkt.systems/claimd/internal/lock/memory"
)

func TestGateCountsDecisions(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	provider := memory.New()
	gate := NewGate(Config{InstanceName: "home", Provider: "mem", IsLockMaster: true}, provider,
		WithGateMetrics(metrics))
	ctx := context.Background()

	if _, err := gate.Admit(ctx, "bad name"); err != nil {
		t.Fatalf("admit: %v", err)
	}
	if _, err := gate.Admit(ctx, "Steve"); err != nil {
		t.Fatalf("admit: %v", err)
	}
	if _, err := gate.Admit(ctx, "Steve"); err != nil {
		t.Fatalf("admit: %v", err)
	}

	if got := testutil.ToFloat64(metrics.joinDecisions.WithLabelValues(OutcomeDenyName)); got != 1 {
		t.Fatalf("deny_invalid_name = %v want 1", got)
	}
	if got := testutil.ToFloat64(metrics.joinDecisions.WithLabelValues(OutcomeAllowClaimed)); got != 1 {
		t.Fatalf("allow_claimed = %v want 1", got)
	}
	if got := testutil.ToFloat64(metrics.joinDecisions.WithLabelValues(OutcomeAllow)); got != 1 {
		t.Fatalf("allow = %v want 1", got)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.joinDecision(OutcomeAllow)
	m.transfer(OutcomeError)
}
