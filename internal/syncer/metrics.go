package syncer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	remoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habits_remote_requests_total",
			Help: "Requests sent to the remote store, by action and result",
		},
		[]string{"action", "result"},
	)

	remoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habits_remote_request_duration_seconds",
			Help:    "Remote store request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)

	snapshotFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habits_snapshot_fetches_total",
			Help: "Snapshot fetches, by result",
		},
		[]string{"result"},
	)

	ledgerWrites = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "habits_pending_writes",
			Help: "Optimistic writes tracked by the ledger, by status",
		},
		[]string{"status"},
	)
)

func observeRequest(action string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	remoteRequests.WithLabelValues(action, result).Inc()
	remoteDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
}

func observeLedger(counts map[WriteStatus]int) {
	for _, s := range []WriteStatus{StatusPending, StatusConfirmed, StatusFailed} {
		ledgerWrites.WithLabelValues(string(s)).Set(float64(counts[s]))
	}
}
