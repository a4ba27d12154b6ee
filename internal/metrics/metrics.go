package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Connections tracks live websocket connections.
	Connections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hubbub_connections",
		Help: "Number of live websocket connections.",
	})

	// MessagesTotal counts messages appended to the shared log, by kind.
	MessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hubbub_messages_total",
		Help: "Messages appended to the shared log.",
	}, []string{"kind"})

	// BroadcastsTotal counts fan-out broadcasts emitted by the router.
	BroadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hubbub_broadcasts_total",
		Help: "Broadcast events fanned out to all connections.",
	})

	// HistoryEvictions counts messages evicted by FIFO retention.
	HistoryEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hubbub_history_evictions_total",
		Help: "Messages evicted from the log by retention.",
	})
)
