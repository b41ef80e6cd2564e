package marketdata

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourcePrices(t *testing.T) {
	candles := []Candle{
		{Open: 100, High: 110, Low: 90, Close: 105},
		{Open: 105, High: 115, Low: 95, Close: 100},
	}
	assert.Equal(t, []float64{101.25, 103.75}, SourcePrices(candles))
}

func TestCandleGeneratorStaysBounded(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	gen := NewCandleGenerator(cfg, 100, rand.New(rand.NewSource(1)))

	candles := gen.Series(1440)
	require.Len(t, candles, 1440)

	prev := 100.0
	for i, c := range candles {
		assert.Equal(t, prev, c.Open, "candle %d must open at the previous close", i)
		assert.GreaterOrEqual(t, c.High, c.Close)
		assert.GreaterOrEqual(t, c.High, c.Open-1e-9)
		assert.LessOrEqual(t, c.Low, c.Close)
		assert.GreaterOrEqual(t, c.Close, cfg.MinPrice)
		assert.LessOrEqual(t, c.Close, cfg.MaxPrice)
		prev = c.Close
	}
}

func TestCandleGeneratorDeterministicPerSeed(t *testing.T) {
	a := NewCandleGenerator(DefaultGeneratorConfig(), 100, rand.New(rand.NewSource(7))).Series(50)
	b := NewCandleGenerator(DefaultGeneratorConfig(), 100, rand.New(rand.NewSource(7))).Series(50)
	assert.Equal(t, a, b)
}

func TestGenerateOptionChain(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	chain := GenerateOptionChain(rng, 10, 100.0, 0.05)

	require.Len(t, chain, 10)
	seen := make(map[string]bool, len(chain))
	for _, inst := range chain {
		assert.False(t, seen[inst.Name], "duplicate instrument name %s", inst.Name)
		seen[inst.Name] = true

		assert.Equal(t, 100.0, inst.S)
		assert.Greater(t, inst.K, 0.0)
		assert.Greater(t, inst.T, 0.0)
		assert.Greater(t, inst.Sigma, 0.0)
		assert.Greater(t, inst.MarketPrice, 0.0)
	}
}
