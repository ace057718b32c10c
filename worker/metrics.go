package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "iap",
			Subsystem: "worker",
			Name:      "jobs_processed_total",
			Help:      "Jobs taken off the queue, by type and outcome.",
		},
		[]string{"type", "outcome"},
	)
	txTracked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "iap",
			Subsystem: "tracker",
			Name:      "tx_tracked_total",
			Help:      "Tracked transactions, by resulting tx status name.",
		},
		[]string{"status"},
	)
	reportSections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "iap",
			Subsystem: "monitor",
			Name:      "report_items",
			Help:      "Items found by the last status monitor run, by check.",
		},
		[]string{"check"},
	)
)
