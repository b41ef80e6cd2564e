// Package marketdata provides shared market-data types and synthetic
// generators used by demos and tests.
package marketdata

// Candle is one OHLC bar.
type Candle struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// SourcePrices returns the (open+high+low+close)/4 price per candle, the
// source series the grid strategy smooths.
func SourcePrices(candles []Candle) []float64 {
	src := make([]float64, len(candles))
	for i, c := range candles {
		src[i] = (c.Open + c.High + c.Low + c.Close) / 4.0
	}
	return src
}
