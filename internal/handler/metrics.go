package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	webhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "craftkart",
		Subsystem: "webhook",
		Name:      "received_total",
		Help:      "Inbound provider webhooks by classified event kind.",
	}, []string{"kind"})

	webhooksRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "craftkart",
		Subsystem: "webhook",
		Name:      "rejected_total",
		Help:      "Webhooks rejected before processing (bad signature or body).",
	})

	webhooksFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "craftkart",
		Subsystem: "webhook",
		Name:      "failed_total",
		Help:      "Webhooks whose processing returned an error.",
	}, []string{"kind"})

	webhookDuplicates = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "craftkart",
		Subsystem: "webhook",
		Name:      "duplicates_total",
		Help:      "Success webhooks that matched an already reconciled order.",
	})

	stockConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "craftkart",
		Subsystem: "webhook",
		Name:      "stock_conflicts_total",
		Help:      "Order creations aborted by the stock guard.",
	})

	webhookDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "craftkart",
		Subsystem: "webhook",
		Name:      "processing_duration_seconds",
		Help:      "Webhook processing latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	})
)
