package grid

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratolab/strato-go/internal/marketdata"
)

func testCandles() []marketdata.Candle {
	return []marketdata.Candle{
		{Open: 100, High: 110, Low: 90, Close: 105},
		{Open: 105, High: 115, Low: 95, Close: 100},
	}
}

func TestRmaSeedsWithSimpleAverage(t *testing.T) {
	src := []float64{10, 20, 30, 40}

	out := rma(src, 2)
	require.Len(t, out, 4)
	// Seed is the mean of the first two samples, then alpha 0.5 recurrence.
	assert.InDelta(t, 15.0, out[0], 1e-12)
	assert.InDelta(t, 17.5, out[1], 1e-12)
	assert.InDelta(t, 23.75, out[2], 1e-12)

	// Shorter series than the window seeds from the whole series.
	short := rma([]float64{10, 20}, 5)
	assert.InDelta(t, 15.0, short[0], 1e-12)
}

func TestTrueRange(t *testing.T) {
	tr := trueRange(testCandles())
	require.Len(t, tr, 2)
	assert.Zero(t, tr[0])
	// max(115-95, |115-105|, |95-105|) = 20
	assert.InDelta(t, 20.0, tr[1], 1e-12)
}

func TestGenerateLevelsATR(t *testing.T) {
	candles := testCandles()
	levels := GenerateLevels(candles, DefaultParams())

	require.Len(t, levels.Premium, len(candles))
	require.Len(t, levels.Discount, len(candles))
	for i := range candles {
		assert.Greater(t, levels.Premium[i], levels.Discount[i])
	}
}

func TestGenerateLevelsPercent(t *testing.T) {
	p := DefaultParams()
	p.BandLogic = BandPercent
	p.BandMult = 10 // 10% bands
	p.MALen = 1

	candles := testCandles()
	levels := GenerateLevels(candles, p)

	src := marketdata.SourcePrices(candles)
	// With a 1-period RMA the moving average tracks the source exactly.
	assert.InDelta(t, src[1]*1.10, levels.Premium[1], 1e-9)
	assert.InDelta(t, src[1]*0.90, levels.Discount[1], 1e-9)
}

func TestEntryExitConditions(t *testing.T) {
	candles := testCandles()
	entries := EntryConditions(candles, []float64{95, 80})
	exits := ExitConditions(candles, []float64{105, 120})

	assert.Equal(t, []bool{true, false}, entries)
	assert.Equal(t, []bool{true, false}, exits)
}

func TestBacktestPairsEntriesWithNextExit(t *testing.T) {
	candles := []marketdata.Candle{
		{Open: 100, High: 101, Low: 99, Close: 100},
		{Open: 100, High: 111, Low: 99, Close: 110},
	}
	// Hand-built flags: enter at the first close, exit at the second.
	entries := []bool{true, false}
	exits := []bool{false, true}

	balance := Replay(candles, entries, exits, 1000)
	assert.InDelta(t, 1100.0, balance, 1e-9)
}

func TestBacktestReport(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	gen := marketdata.NewCandleGenerator(marketdata.DefaultGeneratorConfig(), 100, rng)
	candles := gen.Series(1440)

	report := Backtest(candles, DefaultParams(), 100, 0.0005)

	assert.Equal(t, report.TotalTrades, report.WinningTrades+report.LosingTrades)
	assert.GreaterOrEqual(t, report.MaxDrawdown, 0.0)
	assert.LessOrEqual(t, report.MaxDrawdown, 1.0)
	if report.TotalTrades > 0 {
		assert.InDelta(t, float64(report.WinningTrades)/float64(report.TotalTrades), report.WinRate, 1e-12)
	}
}

func TestBacktestNoTrades(t *testing.T) {
	flat := make([]marketdata.Candle, 200)
	for i := range flat {
		flat[i] = marketdata.Candle{Open: 100, High: 100, Low: 100, Close: 100}
	}

	report := Backtest(flat, DefaultParams(), 100, 0.0005)
	assert.Zero(t, report.TotalTrades)
	assert.Equal(t, 100.0, report.FinalBalance)
	assert.Zero(t, report.WinRate)
}
