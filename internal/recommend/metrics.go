package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Total recommendation requests served
	RequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eventoracle_recommend_requests_total",
		Help: "Total number of recommendation requests",
	})

	// Requests that returned fewer events than asked for after reaching the ceiling
	ShortResultsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "eventoracle_recommend_short_results_total",
		Help: "Recommendation requests that returned fewer events than the limit",
	})

	ExpansionPasses = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "eventoracle_recommend_expansion_passes",
		Help:    "Number of scoring passes run per recommendation request",
		Buckets: prometheus.LinearBuckets(1, 2, 12),
	})

	RecommendLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "eventoracle_recommend_latency_seconds",
		Help:    "Latency of a single recommendation request",
		Buckets: prometheus.DefBuckets,
	})

	ScoredCandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventoracle_scored_candidates_total",
			Help: "Count of scored candidates by weighting policy.",
		},
		[]string{"policy"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		ShortResultsTotal,
		ExpansionPasses,
		RecommendLatency,
		ScoredCandidatesTotal,
	)
}

func observe(res *Result, limit int) {
	RequestsTotal.Inc()
	if len(res.Events) < limit {
		ShortResultsTotal.Inc()
	}
	ExpansionPasses.Observe(float64(res.Passes))
	RecommendLatency.Observe(res.Duration.Seconds())
	for _, c := range res.Scored {
		ScoredCandidatesTotal.WithLabelValues(c.Policy.String()).Inc()
	}
}
