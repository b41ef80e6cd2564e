package pricing

import "math"

// EstimateStatePrices builds a recombining binomial tree over [0, t] and
// returns the terminal asset prices together with their risk-neutral
// probabilities. Prices are ordered from the highest state (all up moves)
// down to the lowest. Probabilities sum to 1 up to floating error.
func EstimateStatePrices(s0, r, sigma, t float64, steps int) ([]float64, []float64) {
	dt := t / float64(steps)
	u := math.Exp(sigma * math.Sqrt(dt))
	d := 1.0 / u
	p := (math.Exp(r*dt) - d) / (u - d)
	p = math.Min(math.Max(p, 0), 1)

	prices := make([]float64, steps+1)
	probs := make([]float64, steps+1)
	for i := 0; i <= steps; i++ {
		prices[i] = s0 * math.Pow(u, float64(steps-i)) * math.Pow(d, float64(i))
		probs[i] = binomialCoefficient(steps, i) * math.Pow(p, float64(i)) * math.Pow(1-p, float64(steps-i))
	}
	return prices, probs
}

func binomialCoefficient(n, k int) float64 {
	if k > n {
		return 0
	}
	if k == 0 || k == n {
		return 1
	}
	if k > n-k {
		k = n - k // symmetry
	}
	result := 1.0
	for i := 1; i <= k; i++ {
		result *= float64(n-k+i) / float64(i)
	}
	return result
}
