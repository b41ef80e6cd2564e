package pricing

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// D1 computes the d1 term of the Black-Scholes formula. Callers must ensure
// sigma > 0 and t > 0.
func D1(s, k, t, r, sigma float64) float64 {
	return (math.Log(s/k) + (r+0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
}

// Greeks holds the first- and second-order price sensitivities used by the
// hedging module.
type Greeks struct {
	DeltaCall float64
	DeltaPut  float64
	Gamma     float64
}

// GreeksFromD1 derives call/put delta and gamma from a precomputed d1.
func GreeksFromD1(d1, s, t, sigma float64) Greeks {
	norm := distuv.UnitNormal

	deltaCall := norm.CDF(d1)
	return Greeks{
		DeltaCall: deltaCall,
		DeltaPut:  deltaCall - 1.0,
		Gamma:     norm.Prob(d1) / (s * sigma * math.Sqrt(t)),
	}
}

// Delta returns the Black-Scholes delta for the given option kind.
func Delta(kind OptionKind, s, k, t, r, sigma float64) (float64, error) {
	if err := validate(s, k, t, sigma); err != nil {
		return 0, err
	}
	if t == 0 || sigma == 0 {
		// Degenerate surface: delta collapses to a moneyness indicator.
		intrinsicLong := s > k
		if kind == Call {
			if intrinsicLong {
				return 1, nil
			}
			return 0, nil
		}
		if intrinsicLong {
			return 0, nil
		}
		return -1, nil
	}

	g := GreeksFromD1(D1(s, k, t, r, sigma), s, t, sigma)
	if kind == Put {
		return g.DeltaPut, nil
	}
	return g.DeltaCall, nil
}
