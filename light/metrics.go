package light

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

// MetricsSubsystem is a subsystem shared by all metrics exposed by this
// package.
const MetricsSubsystem = "light"

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Height of the latest trusted header.
	TrustedHeight metrics.Gauge
	// Number of light blocks verified and stored.
	UpdatesAccepted metrics.Counter
	// Number of light blocks that failed verification.
	UpdatesRejected metrics.Counter
	// Number of packets proven against a trusted app hash.
	PacketsVerified metrics.Counter
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
func PrometheusMetrics(namespace string) *Metrics {
	return &Metrics{
		TrustedHeight: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "trusted_height",
			Help:      "Height of the latest trusted header.",
		}, []string{}),
		UpdatesAccepted: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "updates_accepted",
			Help:      "Number of light blocks verified and stored.",
		}, []string{}),
		UpdatesRejected: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "updates_rejected",
			Help:      "Number of light blocks that failed verification.",
		}, []string{}),
		PacketsVerified: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      "packets_verified",
			Help:      "Number of packets proven against a trusted app hash.",
		}, []string{}),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		TrustedHeight:   discard.NewGauge(),
		UpdatesAccepted: discard.NewCounter(),
		UpdatesRejected: discard.NewCounter(),
		PacketsVerified: discard.NewCounter(),
	}
}
