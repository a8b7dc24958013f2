package llm

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// callsTotal counts extraction calls by outcome.
// Labels: result (ok, error)
var callsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "railsathi",
	Subsystem: "llm",
	Name:      "calls_total",
	Help:      "Total LLM extraction calls by result",
}, []string{"result"})

func observeCall(err error) {
	if err != nil {
		callsTotal.WithLabelValues("error").Inc()
		return
	}
	callsTotal.WithLabelValues("ok").Inc()
}
