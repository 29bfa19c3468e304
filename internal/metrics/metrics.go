// Package metrics exposes Prometheus counters for the external calls the tool makes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

var (
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "competitor_search_requests_total",
			Help: "Search API requests by outcome",
		},
		[]string{"outcome"},
	)

	FetchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "competitor_fetch_requests_total",
			Help: "Changelog page fetches by outcome",
		},
		[]string{"outcome"},
	)

	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "competitor_llm_generations_total",
			Help: "Language model generations by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "competitor_llm_generation_duration_seconds",
			Help:    "Duration of language model calls in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider"},
	)

	EvidenceItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "competitor_discovery_evidence_items",
			Help:    "Evidence items returned per discovery",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
		},
	)

	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "competitor_email_deliveries_total",
			Help: "Email deliveries by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordSearch counts one search call.
func RecordSearch(results int, err error) {
	SearchRequestsTotal.WithLabelValues(outcome(results, err)).Inc()
}

// RecordFetch counts one page fetch.
func RecordFetch(err error) {
	FetchRequestsTotal.WithLabelValues(outcome(1, err)).Inc()
}

// RecordGeneration counts one model call and its latency.
func RecordGeneration(provider string, elapsed time.Duration, err error) {
	GenerationsTotal.WithLabelValues(provider, outcome(1, err)).Inc()
	GenerationDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// RecordDiscovery records how many evidence items a discovery produced.
func RecordDiscovery(items int) {
	EvidenceItems.Observe(float64(items))
}

// RecordDelivery counts one email delivery attempt.
func RecordDelivery(sent bool) {
	if sent {
		DeliveriesTotal.WithLabelValues(OutcomeOK).Inc()
		return
	}
	DeliveriesTotal.WithLabelValues(OutcomeError).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func outcome(n int, err error) string {
	switch {
	case err != nil:
		return OutcomeError
	case n == 0:
		return OutcomeEmpty
	default:
		return OutcomeOK
	}
}
