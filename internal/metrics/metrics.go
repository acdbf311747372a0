package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PipelineOutcomes counts finished requests by outcome
	// (clean, rewritten, fallback, error, cancelled).
	PipelineOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arc_pipeline_outcomes_total",
		Help: "Rewrite pipeline requests by terminal outcome",
	}, []string{"outcome"})

	// DominantFindings counts the dominant finding type chosen per request.
	DominantFindings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arc_dominant_findings_total",
		Help: "Dominant finding type selected per request",
	}, []string{"finding_type"})

	// UnrecognizedFindings counts validator results mapped to TOO_COMPLEX
	// because their tag was not recognized.
	UnrecognizedFindings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arc_unrecognized_findings_total",
		Help: "Validator findings with an unrecognized result tag",
	}, []string{"raw_result"})

	// GenerationAttempts counts calls to the generation model by result.
	GenerationAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arc_generation_attempts_total",
		Help: "Generation model calls by result (success, transient, permanent)",
	}, []string{"result"})

	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arc_generation_duration_seconds",
		Help:    "Wall time of one rewrite generation including retries",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
	})

	ValidationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "arc_validation_duration_seconds",
		Help:    "Wall time of one guardrail validation including retries",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
	})
)
