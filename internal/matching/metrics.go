package matching

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindProfile    = "profile"
	kindTop        = "top"
	kindNonObvious = "non_obvious"
	kindExplain    = "explain"
)

var pairsScored = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "matchmaker_pairs_scored_total",
	Help: "Pair rows produced by the ranking engine.",
}, []string{"kind"})
