package ws

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Connections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections",
			Help: "Open observer connections",
		},
	)
	DroppedClients = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_dropped_clients_total",
			Help: "Observers disconnected because their send buffer was full",
		},
	)
	RelayMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_relay_messages_total",
			Help: "Game updates relayed through redis",
		},
		[]string{"direction"},
	)
)

func init() {
	prometheus.MustRegister(Connections)
	prometheus.MustRegister(DroppedClients)
	prometheus.MustRegister(RelayMessages)
}
