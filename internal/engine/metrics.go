package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sectionParseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "narrative_section_parse_total",
			Help: "Section parse results by the strategy that produced them.",
		},
		[]string{"strategy"},
	)
	actorFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "narrative_actor_type_fallback_total",
			Help: "Times the selective critic reply carried no recognizable actor type.",
		},
	)
	workflowRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "narrative_workflow_runs_total",
			Help: "Workflow runs by variant and result.",
		},
		[]string{"workflow", "result"},
	)
	workflowRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "narrative_workflow_run_duration_seconds",
			Help:    "Histogram of full workflow run durations.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
		[]string{"workflow"},
	)
)
