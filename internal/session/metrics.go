package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railsathi_sessions_created_total",
		Help: "Sessions created by the store.",
	})

	// Counts LRU evictions and explicit deletes; the cache fires the
	// same callback for both.
	sessionsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "railsathi_sessions_evicted_total",
		Help: "Sessions removed from the store.",
	})
)
