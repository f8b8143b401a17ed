// Package metrics expone collectors de Prometheus para el scan y la ejecución.
// Todos los métodos aceptan receptor nil: los componentes funcionan sin métricas.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "atomicswipe"

// Metrics agrupa los collectors sobre un registry propio.
type Metrics struct {
	registry *prometheus.Registry

	quoteRequests *prometheus.CounterVec
	pairs         prometheus.Counter
	opportunities prometheus.Counter
	scans         *prometheus.CounterVec
	scanDuration  prometheus.Histogram
	executions    *prometheus.CounterVec
	deckSize      prometheus.Gauge
}

// New registra todos los collectors en un registry nuevo.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		quoteRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_requests_total",
			Help:      "Quote requests by result (ok, no_route)",
		}, []string{"result"}),
		pairs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairs_evaluated_total",
			Help:      "Candidate pairs with both legs quoted",
		}),
		opportunities: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opportunities_found_total",
			Help:      "Opportunities that passed the inclusion gate",
		}),
		scans: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Scans by outcome",
		}, []string{"outcome"}),
		scanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Wall time of completed scans",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		executions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "executions_total",
			Help:      "Accepted cycle executions by result",
		}, []string{"result"}),
		deckSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "deck_size",
			Help:      "Cards currently in the deck",
		}),
	}
}

// Handler sirve el registry en el formato de texto de Prometheus.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry devuelve el registry subyacente.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) QuoteRequested(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "no_route"
	}
	m.quoteRequests.WithLabelValues(result).Inc()
}

func (m *Metrics) PairEvaluated() {
	if m == nil {
		return
	}
	m.pairs.Inc()
}

func (m *Metrics) OpportunityFound() {
	if m == nil {
		return
	}
	m.opportunities.Inc()
}

// ScanFinished cuenta el outcome; la duración solo se observa en scans completados.
func (m *Metrics) ScanFinished(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.scans.WithLabelValues(outcome).Inc()
	if outcome == "completed" {
		m.scanDuration.Observe(d.Seconds())
	}
}

func (m *Metrics) Executed(result string) {
	if m == nil {
		return
	}
	m.executions.WithLabelValues(result).Inc()
}

func (m *Metrics) DeckSize(n int) {
	if m == nil {
		return
	}
	m.deckSize.Set(float64(n))
}
