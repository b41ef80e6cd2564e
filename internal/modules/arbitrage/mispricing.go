package arbitrage

import (
	"math"

	"github.com/stratolab/strato-go/internal/pricing"
)

// theoreticalPrices computes the fair value of every instrument, applying
// the risk-averse pricing kernel when configured. Errors from the pricing
// layer are wrapped with the offending instrument name.
func (c *Constructor) theoreticalPrices(instruments []Instrument) ([]float64, error) {
	prices := make([]float64, len(instruments))
	for i, inst := range instruments {
		price, err := pricing.Price(inst.Kind, inst.S, inst.K, inst.T, inst.R, inst.Sigma)
		if err != nil {
			return nil, &InvalidInstrumentError{Name: inst.Name, Err: err}
		}
		if c.cfg.RiskAversion > 0 {
			price = pricingKernel(price, c.cfg.RiskAversion)
		}
		prices[i] = price
	}
	return prices, nil
}

// pricingKernel discounts a value under risk-averse utility: higher
// risk aversion shrinks large payoffs harder.
func pricingKernel(value, riskAversion float64) float64 {
	return value * math.Exp(-riskAversion*value)
}

// mispricingSignals returns theoretical minus market price per instrument.
// Positive = underpriced in the market, negative = overpriced.
func mispricingSignals(theoretical []float64, instruments []Instrument) []float64 {
	signals := make([]float64, len(instruments))
	for i, inst := range instruments {
		signals[i] = theoretical[i] - inst.MarketPrice
	}
	return signals
}

// profitEdges nets transaction costs out of the mispricing signals. These
// are the per-unit profit coefficients used by both the objective and the
// dominance constraints.
func profitEdges(signals, transactionCosts []float64) []float64 {
	edges := make([]float64, len(signals))
	for i := range signals {
		edges[i] = signals[i] - transactionCosts[i]
	}
	return edges
}
