// Package metrics exposes Prometheus counters for the wellness pipeline.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ReportsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vivabem_reports_generated_total",
		Help: "Daily reports generated, by outcome.",
	}, []string{"outcome"})

	UpstreamCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vivabem_upstream_calls_total",
		Help: "Calls to the generative model API, by outcome.",
	}, []string{"outcome"})

	ParseFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vivabem_report_parse_fallbacks_total",
		Help: "Model replies that could not be decoded and fell back to raw text.",
	})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vivabem_caregiver_notifications_total",
		Help: "Caregiver e-mail notifications, by outcome.",
	}, []string{"outcome"})

	OccurrencesMaterialized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vivabem_medication_occurrences_total",
		Help: "Medication occurrences materialized by schedule expansion.",
	})
)

// Serve starts the Prometheus endpoint on its own port
func Serve(port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
