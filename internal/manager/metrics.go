package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	modelsLoaded = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "llmserver",
			Subsystem: "models",
			Name:      "loaded",
			Help:      "Model handles resident in memory",
		},
		[]string{"class"},
	)

	loadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmserver",
			Subsystem: "models",
			Name:      "loads_total",
			Help:      "Model handle constructions by result",
		},
		[]string{"class", "result"},
	)

	loadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "llmserver",
			Subsystem: "models",
			Name:      "load_duration_seconds",
			Help:      "Duration of successful model loads",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		},
		[]string{"class"},
	)

	unloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmserver",
			Subsystem: "models",
			Name:      "unloads_total",
			Help:      "Model handles released",
		},
		[]string{"class"},
	)

	inflightRequests = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "llmserver",
			Subsystem: "models",
			Name:      "inflight_requests",
			Help:      "Requests currently holding a model handle",
		},
		[]string{"class"},
	)
)

func init() {
	prometheus.MustRegister(modelsLoaded, loadsTotal, loadDuration, unloadsTotal, inflightRequests)
}
