package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gamescribe",
		Name:      "requests_total",
		Help:      "Transcript requests by outcome.",
	}, []string{"outcome"})

	metricInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gamescribe",
		Name:      "pages_in_flight",
		Help:      "Transcript requests currently being processed.",
	})

	metricDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gamescribe",
		Name:      "request_seconds",
		Help:      "Transcript request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)
