package shiprocket

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "craftkart",
		Subsystem: "catalog_push",
		Name:      "queue_depth",
		Help:      "Number of outbound catalog pushes waiting in the retry queue.",
	})

	pushAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "craftkart",
		Subsystem: "catalog_push",
		Name:      "attempts_total",
		Help:      "Total catalog push attempts, successful or not.",
	}, []string{"kind"})

	pushDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "craftkart",
		Subsystem: "catalog_push",
		Name:      "drops_total",
		Help:      "Catalog pushes dropped after exhausting the retry budget.",
	}, []string{"kind"})
)
