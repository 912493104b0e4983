package claimd

import (
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pkt.systems/claimd/internal/svcfields"
	"pkt.systems/pslog"
)

// Join-admission and transfer outcome labels.
const (
	OutcomeAllow         = "allow"
	OutcomeAllowClaimed  = "allow_claimed"
	OutcomeDenyName      = "deny_invalid_name"
	OutcomeDenyOwner     = "deny_wrong_instance"
	OutcomeDenyTransient = "deny_transient"
	OutcomeDenyUnclaimed = "deny_unclaimed"
	OutcomeError         = "error"
)

// Metrics aggregates the decision counters exposed by Gate and Transfer.
type Metrics struct {
	joinDecisions *prometheus.CounterVec
	transfers     *prometheus.CounterVec
}

// NewMetrics registers the claimd counters with reg. Pass
// prometheus.DefaultRegisterer to publish on the host's default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		joinDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "claimd",
			Name:      "join_decisions_total",
			Help:      "Join admission decisions by outcome.",
		}, []string{"outcome"}),
		transfers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "claimd",
			Name:      "transfers_total",
			Help:      "Ownership transfers by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) joinDecision(outcome string) {
	if m == nil {
		return
	}
	m.joinDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) transfer(outcome string) {
	if m == nil {
		return
	}
	m.transfers.WithLabelValues(outcome).Inc()
}

// StartMetricsServer exposes gatherer on addr under /metrics and returns the
// server alongside its listener. Callers own shutdown.
func StartMetricsServer(addr string, gatherer prometheus.Gatherer, logger pslog.Logger) (*http.Server, net.Listener, error) {
	logger = svcfields.WithSubsystem(logger, "metrics")
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, err
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server terminated", "error", err)
		}
	}()
	logger.Info("metrics listening", "address", ln.Addr().String())
	return srv, ln, nil
}
