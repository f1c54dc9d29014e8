package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK       = "ok"
	resultRejected = "rejected"
	resultError    = "error"
)

var GameOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bowling_game_operations_total",
		Help: "Game operations by kind and outcome",
	},
	[]string{"op", "result"},
)

func init() {
	prometheus.MustRegister(GameOps)
}
