package marketdata

import (
	"math/rand"
	"strconv"

	"github.com/stratolab/strato-go/internal/modules/arbitrage"
	"github.com/stratolab/strato-go/internal/pricing"
)

// GeneratorConfig bounds the synthetic random walk.
type GeneratorConfig struct {
	// MaxChange is the maximum fractional close-to-close move per candle.
	MaxChange float64
	// MinPrice and MaxPrice clamp the walk; hitting either bound flips
	// the trend direction.
	MinPrice float64
	MaxPrice float64
}

// DefaultGeneratorConfig mirrors the demo driver: 5% moves inside
// [100, 500].
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{MaxChange: 0.05, MinPrice: 100, MaxPrice: 500}
}

// CandleGenerator produces a bounded random-walk candle series. Not safe
// for concurrent use; each goroutine should own its generator.
type CandleGenerator struct {
	cfg       GeneratorConfig
	rng       *rand.Rand
	price     float64
	direction bool // true while trending up
}

// NewCandleGenerator creates a generator starting at the given price.
// The rand source is injected so tests can run deterministically.
func NewCandleGenerator(cfg GeneratorConfig, start float64, rng *rand.Rand) *CandleGenerator {
	return &CandleGenerator{cfg: cfg, rng: rng, price: start, direction: true}
}

// Next produces the following candle of the walk.
func (g *CandleGenerator) Next() Candle {
	open := g.price

	var close float64
	if g.direction {
		close = open * (1.0 + g.rng.Float64()*g.cfg.MaxChange)
	} else {
		close = open * (1.0 - g.rng.Float64()*g.cfg.MaxChange)
	}
	close = clamp(close, g.cfg.MinPrice, g.cfg.MaxPrice)

	high := clamp(maxOf(open, close)*(1.0+g.rng.Float64()*0.02), g.cfg.MinPrice, g.cfg.MaxPrice)
	low := clamp(minOf(open, close)*(1.0-g.rng.Float64()*0.02), g.cfg.MinPrice, g.cfg.MaxPrice)

	// Reverse the trend at the walk boundaries.
	if close >= g.cfg.MaxPrice {
		g.direction = false
	} else if close <= g.cfg.MinPrice {
		g.direction = true
	}

	g.price = close
	return Candle{Open: open, High: high, Low: low, Close: close}
}

// Series produces n consecutive candles.
func (g *CandleGenerator) Series(n int) []Candle {
	candles := make([]Candle, n)
	for i := range candles {
		candles[i] = g.Next()
	}
	return candles
}

// GenerateOptionChain builds a synthetic option chain around the given
// spot price. Market prices are jittered around the Black-Scholes value
// so some instruments are mispriced in each direction.
func GenerateOptionChain(rng *rand.Rand, n int, spot, r float64) []arbitrage.Instrument {
	instruments := make([]arbitrage.Instrument, 0, n)
	for i := 0; i < n; i++ {
		kind := pricing.Call
		name := "CALL-"
		if i%2 == 1 {
			kind = pricing.Put
			name = "PUT-"
		}

		strike := spot * (0.8 + 0.4*rng.Float64())
		maturity := 0.1 + rng.Float64()*1.9
		sigma := 0.1 + rng.Float64()*0.4

		fair, err := pricing.Price(kind, spot, strike, maturity, r, sigma)
		if err != nil {
			continue // generated inputs are always valid; belt and braces
		}

		instruments = append(instruments, arbitrage.Instrument{
			Name:        name + strconv.Itoa(i),
			S:           spot,
			K:           strike,
			T:           maturity,
			R:           r,
			Sigma:       sigma,
			Kind:        kind,
			MarketPrice: fair * (0.9 + 0.2*rng.Float64()),
		})
	}
	return instruments
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxOf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minOf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
