package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatTurns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "railsathi_chat_turns_total",
		Help: "Chat turns processed, labeled by the stage reached.",
	}, []string{"stage"})

	resets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railsathi_resets_total",
		Help: "Sessions dropped through the reset endpoint.",
	})
)
