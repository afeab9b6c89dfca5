package download

import "github.com/prometheus/client_golang/prometheus"

var (
	downloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "llmserver",
			Subsystem: "download",
			Name:      "total",
			Help:      "Finished model downloads by result",
		},
		[]string{"class", "result"},
	)

	downloadsInflight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "llmserver",
			Subsystem: "download",
			Name:      "inflight",
			Help:      "Accepted downloads that have not finished",
		},
		[]string{"class"},
	)

	downloadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "llmserver",
			Subsystem: "download",
			Name:      "duration_seconds",
			Help:      "Duration of successful downloads",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"class"},
	)

	downloadBytes = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "llmserver",
			Subsystem: "download",
			Name:      "bytes_total",
			Help:      "Bytes written by the Hugging Face fetcher",
		},
	)
)

func init() {
	prometheus.MustRegister(downloadsTotal, downloadsInflight, downloadDuration, downloadBytes)
}
