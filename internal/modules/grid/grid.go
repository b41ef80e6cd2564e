// Package grid implements a mean-reversion grid strategy: a moving
// average of the source price is banded by a volatility offset, entries
// fire below the discount band and exits above the premium band.
package grid

import (
	"math"

	"github.com/markcheno/go-talib"

	"github.com/stratolab/strato-go/internal/marketdata"
)

// MAType selects the smoothing applied to the source price.
type MAType string

const (
	// MARma is Wilder's smoothing (TradingView ta.rma).
	MARma MAType = "rma"
	// MASma is a simple moving average.
	MASma MAType = "sma"
)

// BandLogic selects how the band offset around the moving average is sized.
type BandLogic string

const (
	// BandATR sizes the offset from the average true range.
	BandATR BandLogic = "atr"
	// BandPercent sizes the offset as a percentage of the moving average.
	BandPercent BandLogic = "percent"
)

// Params configures the grid strategy.
type Params struct {
	MALen     int       `json:"ma_len"`
	MAType    MAType    `json:"ma_type"`
	BandLogic BandLogic `json:"band_logic"`
	// BandMult multiplies the ATR (or the percentage) to place the bands.
	BandMult float64 `json:"band_mult"`
	ATRLen   int     `json:"atr_len"`
}

// DefaultParams returns the stock configuration: a 100-period RMA banded
// by 2.5x the 14-period ATR.
func DefaultParams() Params {
	return Params{
		MALen:     100,
		MAType:    MARma,
		BandLogic: BandATR,
		BandMult:  2.5,
		ATRLen:    14,
	}
}

// Levels holds the per-candle band levels of the grid.
type Levels struct {
	Premium  []float64
	Discount []float64
}

// rma is Wilder's smoothing with alpha 1/length. The first value seeds
// from the simple average of the first length samples (or of all of them
// when the series is shorter), then the recurrence takes over.
func rma(src []float64, length int) []float64 {
	if len(src) == 0 {
		return nil
	}
	alpha := 1.0 / float64(length)
	out := make([]float64, len(src))

	seedLen := length
	if len(src) < length {
		seedLen = len(src)
	}
	var sum float64
	for _, v := range src[:seedLen] {
		sum += v
	}
	out[0] = sum / float64(seedLen)

	for i := 1; i < len(src); i++ {
		out[i] = alpha*src[i] + (1.0-alpha)*out[i-1]
	}
	return out
}

// trueRange returns the per-candle true range. The first candle has no
// previous close, so its true range is zero.
func trueRange(candles []marketdata.Candle) []float64 {
	tr := make([]float64, len(candles))
	for i := 1; i < len(candles); i++ {
		highLow := candles[i].High - candles[i].Low
		highClose := math.Abs(candles[i].High - candles[i-1].Close)
		lowClose := math.Abs(candles[i].Low - candles[i-1].Close)
		tr[i] = math.Max(highLow, math.Max(highClose, lowClose))
	}
	return tr
}

// atr is the Wilder-smoothed true range.
func atr(candles []marketdata.Candle, length int) []float64 {
	return rma(trueRange(candles), length)
}

// movingAverage smooths the source series per the configured type.
func movingAverage(src []float64, p Params) []float64 {
	switch p.MAType {
	case MASma:
		return talib.Sma(src, p.MALen)
	default:
		return rma(src, p.MALen)
	}
}

// GenerateLevels computes the premium and discount bands for each candle.
func GenerateLevels(candles []marketdata.Candle, p Params) Levels {
	src := marketdata.SourcePrices(candles)
	ma := movingAverage(src, p)

	offsets := make([]float64, len(ma))
	switch p.BandLogic {
	case BandPercent:
		for i, m := range ma {
			offsets[i] = m * p.BandMult / 100.0
		}
	default:
		for i, a := range atr(candles, p.ATRLen) {
			offsets[i] = a * p.BandMult
		}
	}

	levels := Levels{
		Premium:  make([]float64, len(ma)),
		Discount: make([]float64, len(ma)),
	}
	for i := range ma {
		levels.Premium[i] = ma[i] + offsets[i]
		levels.Discount[i] = ma[i] - offsets[i]
	}
	return levels
}

// EntryConditions flags candles whose low pierces the discount band.
func EntryConditions(candles []marketdata.Candle, discount []float64) []bool {
	entries := make([]bool, len(candles))
	for i := range candles {
		entries[i] = candles[i].Low < discount[i]
	}
	return entries
}

// ExitConditions flags candles whose high pierces the premium band.
func ExitConditions(candles []marketdata.Candle, premium []float64) []bool {
	exits := make([]bool, len(candles))
	for i := range candles {
		exits[i] = candles[i].High > premium[i]
	}
	return exits
}

// ManageGrids computes entry and exit flags for the whole series.
func ManageGrids(candles []marketdata.Candle, p Params) (entries, exits []bool) {
	levels := GenerateLevels(candles, p)
	return EntryConditions(candles, levels.Discount), ExitConditions(candles, levels.Premium)
}
