package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Failure reasons for EnrichmentFailed.
const (
	ReasonBadRequest   = "bad_request"
	ReasonNotFound     = "not_found"
	ReasonConfig       = "config"
	ReasonUpstream     = "upstream"
	ReasonParse        = "parse"
	ReasonStoreRead    = "store_read"
	ReasonCanceled     = "canceled"
	ReasonUnclassified = "other"
)

// Job outcomes for EnrichmentJobs.
const (
	JobQueued    = "queued"
	JobReceived  = "received"
	JobCompleted = "completed"
	JobFailed    = "failed"
	JobDiscarded = "discarded"
)

var (
	EnrichmentStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrichment_started_total",
		Help: "Total enrichment requests started",
	})

	EnrichmentCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrichment_completed_total",
		Help: "Total enrichment requests that produced a parsed result",
	})

	EnrichmentFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_failed_total",
			Help: "Total enrichment requests that failed, by reason",
		},
		[]string{"reason"},
	)

	EnrichmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "enrichment_duration_seconds",
		Help:    "Duration of enrichment requests in seconds",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})

	SchemaViolations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrichment_schema_violations_total",
		Help: "Parsed model outputs that did not match the recommendation schema",
	})

	PersistenceFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "enrichment_persistence_failures_total",
		Help: "Best-effort record writes that failed after a successful enrichment",
	})

	EnrichmentJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_jobs_total",
			Help: "Queued enrichment jobs, by outcome",
		},
		[]string{"outcome"},
	)

	TranslationsExported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "translations_exported_total",
			Help: "Translation bundles written, by locale",
		},
		[]string{"locale"},
	)
)

// ObserveEnrichment records the duration since start.
func ObserveEnrichment(start time.Time) {
	EnrichmentDuration.Observe(time.Since(start).Seconds())
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
