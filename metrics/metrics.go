// Package metrics exposes Prometheus collectors for pipeline and replay
// activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TxBroadcasts counts envelopes accepted by the gateway.
	TxBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bounty_tx_broadcasts_total",
		Help: "Transaction envelopes accepted by the ledger gateway.",
	})

	// TxBroadcastFailures counts gateway rejections.
	TxBroadcastFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bounty_tx_broadcast_failures_total",
		Help: "Transaction broadcasts the ledger gateway rejected.",
	})

	// TxPoolSize tracks the pending pool occupancy.
	TxPoolSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bounty_tx_pool_size",
		Help: "Locally tracked pending transactions.",
	})

	// OpsApplied counts contract operations applied by the replay driver.
	OpsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bounty_ops_applied_total",
		Help: "Contract operations applied successfully, by type.",
	}, []string{"op"})

	// OpsRejected counts contract operations deterministically rejected.
	OpsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bounty_ops_rejected_total",
		Help: "Contract operations rejected by the state machine, by type.",
	}, []string{"op"})
)
