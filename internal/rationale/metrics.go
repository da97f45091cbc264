package rationale

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK          = "ok"
	outcomeCached      = "cached"
	outcomeError       = "error"
	outcomeEmpty       = "empty"
	outcomeTimeout     = "timeout"
	outcomeBreakerOpen = "breaker_open"
)

var (
	rationaleTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "matchmaker_rationale_total",
		Help: "Rationales produced, by tier and outcome of the external attempt.",
	}, []string{"provider", "tier", "outcome"})

	rationaleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "matchmaker_rationale_duration_seconds",
		Help:    "Latency of external rationale calls.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 6, 8},
	}, []string{"provider"})
)
