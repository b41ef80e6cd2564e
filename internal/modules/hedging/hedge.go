// Package hedging provides delta-hedge sizing arithmetic for options
// positions hedged with perpetual futures.
package hedging

import (
	"math"

	"github.com/stratolab/strato-go/internal/pricing"
)

// Plan describes the futures trade that brings an options position to its
// target delta, with the margin and fees it implies.
type Plan struct {
	// PerpsNeeded is the number of perpetual contracts to buy (positive)
	// or sell (negative).
	PerpsNeeded float64 `json:"perps_needed"`
	// RequiredMargin is the margin consumed at the given leverage.
	RequiredMargin float64 `json:"required_margin"`
	// Fees is the transaction cost of the hedge trade.
	Fees float64 `json:"fees"`
}

// TotalDelta is the aggregate delta of a position of identical options.
func TotalDelta(delta, numContracts float64) float64 {
	return delta * numContracts
}

// NotionalValue is the futures notional needed to move the given delta.
func NotionalValue(totalDelta, underlyingPrice float64) float64 {
	return totalDelta * underlyingPrice
}

// RequiredMargin is the margin consumed by a futures notional at the
// given leverage ratio (e.g. 10 for 10x).
func RequiredMargin(notional, leverage float64) float64 {
	return notional / leverage
}

// Fees is the transaction cost of trading the given notional at the
// given fee rate (e.g. 0.001 for 0.1%).
func Fees(notional, feeRate float64) float64 {
	return notional * feeRate
}

// PerpsNeeded is the signed number of futures contracts (delta 1 each)
// that moves the position from its current to its target total delta.
func PerpsNeeded(currentTotalDelta, targetTotalDelta float64) float64 {
	return targetTotalDelta - currentTotalDelta
}

// BuildPlan sizes the perpetual-futures hedge for an options position.
// targetTotalDelta is typically zero for a delta-neutral book.
func BuildPlan(currentPrice, currentDelta, numContracts, targetTotalDelta, leverage, feeRate float64) Plan {
	currentTotal := TotalDelta(currentDelta, numContracts)
	perps := PerpsNeeded(currentTotal, targetTotalDelta)
	notional := NotionalValue(math.Abs(perps), currentPrice)
	return Plan{
		PerpsNeeded:    perps,
		RequiredMargin: RequiredMargin(notional, leverage),
		Fees:           Fees(notional, feeRate),
	}
}

// FuturesToHedge computes the futures position neutralizing the delta of
// a European option position, using the Black-Scholes delta.
func FuturesToHedge(kind pricing.OptionKind, numContracts int, s, k, t, r, sigma float64) (float64, error) {
	delta, err := pricing.Delta(kind, s, k, t, r, sigma)
	if err != nil {
		return 0, err
	}
	// Futures delta is 1, so the hedge is minus the total option delta.
	return -TotalDelta(delta, float64(numContracts)), nil
}
