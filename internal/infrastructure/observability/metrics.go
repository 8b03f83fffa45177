package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry                *prometheus.Registry
	TransactionsTotal       *prometheus.CounterVec
	InflightRequests        prometheus.Gauge
	ForwardErrorsTotal      prometheus.Counter
	DecompressFallbackTotal prometheus.Counter
	FixturesWrittenTotal    prometheus.Counter
}

func NewMetrics() *Metrics {
	r := prometheus.NewRegistry()
	m := &Metrics{
		registry: r,
		TransactionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "drydock",
			Name:      "transactions_total",
			Help:      "Total transactions received by the recording proxy",
		}, []string{"method"}),
		InflightRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "drydock",
			Name:      "inflight_requests",
			Help:      "Number of requests currently being forwarded",
		}),
		ForwardErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "drydock",
			Name:      "forward_errors_total",
			Help:      "Total requests that could not be forwarded upstream",
		}),
		DecompressFallbackTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "drydock",
			Name:      "decompress_fallbacks_total",
			Help:      "Total response bodies kept raw because decompression failed",
		}),
		FixturesWrittenTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "drydock",
			Name:      "fixtures_written_total",
			Help:      "Total fixture files written by the mock synthesizer",
		}),
	}
	r.MustRegister(m.TransactionsTotal, m.InflightRequests, m.ForwardErrorsTotal, m.DecompressFallbackTotal, m.FixturesWrittenTotal)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
