package scoring

import (
	"fmt"
	"math"
)

// WeightSet defines the relative importance of each scoring factor.
// All weights must sum to 1.0 (±0.001 tolerance).
type WeightSet struct {
	Fit             float64 `json:"fit" yaml:"fit"`
	Complementarity float64 `json:"complementarity" yaml:"complementarity"`
	Readiness       float64 `json:"readiness" yaml:"readiness"`
}

// DefaultWeights returns the standard 40/35/25 blend.
func DefaultWeights() WeightSet {
	return WeightSet{
		Fit:             0.40,
		Complementarity: 0.35,
		Readiness:       0.25,
	}
}

// Sum returns the total of all weights.
func (w WeightSet) Sum() float64 {
	return w.Fit + w.Complementarity + w.Readiness
}

// Validate checks that weights sum to 1.0 and none are negative.
func (w WeightSet) Validate() error {
	if math.Abs(w.Sum()-1.0) > 0.001 {
		return fmt.Errorf("weights sum to %.4f, must sum to 1.0", w.Sum())
	}
	for _, v := range w.asList() {
		if v < 0 {
			return fmt.Errorf("negative weight: %f", v)
		}
	}
	return nil
}

func (w WeightSet) asList() []float64 {
	return []float64{w.Fit, w.Complementarity, w.Readiness}
}
