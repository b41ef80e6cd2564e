package arbitrage

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratolab/strato-go/internal/lp"
	"github.com/stratolab/strato-go/internal/pricing"
)

// fixtureRequest is the known two-instrument scenario: an underpriced call
// and an overpriced put.
func fixtureRequest() Request {
	return Request{
		Instruments: []Instrument{
			{Name: "Call1", S: 100, K: 90, T: 0.5, R: 0.05, Sigma: 0.2, Kind: pricing.Call, MarketPrice: 8.0},
			{Name: "Put1", S: 100, K: 110, T: 0.5, R: 0.05, Sigma: 0.2, Kind: pricing.Put, MarketPrice: 12.0},
		},
		Capital:          10000,
		RiskLevels:       []float64{0.01, 0.1, 0.5},
		BenchmarkPayoffs: []float64{1.5, 0.5, 0.2},
		TransactionCosts: []float64{0.01, 0.01},
		LiquidityLimits:  []float64{50, 50},
	}
}

func newTestConstructor() *Constructor {
	return NewConstructor(DefaultConfig(), zerolog.Nop())
}

func TestConstructFixtureScenario(t *testing.T) {
	result, err := newTestConstructor().Construct(fixtureRequest())
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, result.Status)

	require.Len(t, result.Portfolio.Holdings, 2)
	assert.Equal(t, "Call1", result.Portfolio.Holdings[0].Name)
	assert.Equal(t, "Put1", result.Portfolio.Holdings[1].Name)

	for _, h := range result.Portfolio.Holdings {
		assert.LessOrEqual(t, math.Abs(h.Position), 50.0+1e-6, "position exceeds liquidity for %s", h.Name)
	}

	// The call trades below fair value, the put above it.
	assert.Greater(t, result.Portfolio.Holdings[0].Position, 0.0, "underpriced call should be held long")
	assert.Less(t, result.Portfolio.Holdings[1].Position, 0.0, "overpriced put should be held short")
	assert.Greater(t, result.Objective, 0.0)
}

func TestConstructPreservesOrderAndReportsZeros(t *testing.T) {
	req := fixtureRequest()
	// Fairly priced third instrument: expired call quoted at intrinsic.
	req.Instruments = append(req.Instruments, Instrument{
		Name: "Fair1", S: 100, K: 90, T: 0, R: 0.05, Sigma: 0.2, Kind: pricing.Call, MarketPrice: 10.0,
	})
	req.TransactionCosts = append(req.TransactionCosts, 0.0)
	req.LiquidityLimits = append(req.LiquidityLimits, 0.0)

	result, err := newTestConstructor().Construct(req)
	require.NoError(t, err)
	require.Len(t, result.Portfolio.Holdings, 3)
	assert.Equal(t, []string{"Call1", "Put1", "Fair1"}, []string{
		result.Portfolio.Holdings[0].Name,
		result.Portfolio.Holdings[1].Name,
		result.Portfolio.Holdings[2].Name,
	})
	assert.InDelta(t, 0.0, result.Portfolio.Holdings[2].Position, 1e-9)
}

func TestConstructNoSignalIdempotence(t *testing.T) {
	// Expired options quoted exactly at intrinsic value: zero mispricing
	// everywhere must classify as no-arbitrage with an all-zero book.
	req := Request{
		Instruments: []Instrument{
			{Name: "C", S: 100, K: 90, T: 0, R: 0.05, Sigma: 0.2, Kind: pricing.Call, MarketPrice: 10.0},
			{Name: "P", S: 100, K: 110, T: 0, R: 0.05, Sigma: 0.2, Kind: pricing.Put, MarketPrice: 10.0},
		},
		Capital:          10000,
		RiskLevels:       []float64{0.1, 0.5},
		BenchmarkPayoffs: []float64{0.0},
		TransactionCosts: []float64{0, 0},
		LiquidityLimits:  []float64{50, 50},
	}

	result, err := newTestConstructor().Construct(req)
	require.NoError(t, err)
	assert.Equal(t, StatusNoArbitrage, result.Status)
	require.Len(t, result.Portfolio.Holdings, 2)
	for _, h := range result.Portfolio.Holdings {
		assert.Zero(t, h.Position)
	}
}

func TestConstructInfeasibleDominance(t *testing.T) {
	// The benchmark demands more edge-weighted return than the liquidity
	// caps allow; the system of constraints has no solution.
	req := fixtureRequest()
	req.BenchmarkPayoffs = []float64{1e9}

	_, err := newTestConstructor().Construct(req)
	assert.ErrorIs(t, err, lp.ErrInfeasible)
}

func TestConstructInvalidInstrument(t *testing.T) {
	req := fixtureRequest()
	req.Instruments[1].Sigma = -0.2

	_, err := newTestConstructor().Construct(req)
	var instErr *InvalidInstrumentError
	require.ErrorAs(t, err, &instErr)
	assert.Equal(t, "Put1", instErr.Name)
}

func TestConstructDimensionMismatch(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{"no instruments", func(r *Request) { r.Instruments = nil }, "instruments"},
		{"short costs", func(r *Request) { r.TransactionCosts = r.TransactionCosts[:1] }, "transaction_costs"},
		{"long liquidity", func(r *Request) { r.LiquidityLimits = append(r.LiquidityLimits, 1) }, "liquidity_limits"},
		{"no risk levels", func(r *Request) { r.RiskLevels = nil }, "risk_levels"},
		{"no benchmark payoffs", func(r *Request) { r.BenchmarkPayoffs = nil }, "benchmark_payoffs"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := fixtureRequest()
			tc.mutate(&req)
			_, err := newTestConstructor().Construct(req)
			var dimErr *DimensionMismatchError
			require.ErrorAs(t, err, &dimErr)
			assert.Equal(t, tc.field, dimErr.Field)
		})
	}
}

func TestConstructInvalidContext(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Request)
	}{
		{"zero capital", func(r *Request) { r.Capital = 0 }},
		{"negative capital", func(r *Request) { r.Capital = -100 }},
		{"negative transaction cost", func(r *Request) { r.TransactionCosts[0] = -0.01 }},
		{"negative liquidity", func(r *Request) { r.LiquidityLimits[1] = -1 }},
		{"zero risk level", func(r *Request) { r.RiskLevels[0] = 0 }},
		{"duplicate instrument name", func(r *Request) { r.Instruments[1].Name = r.Instruments[0].Name }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := fixtureRequest()
			tc.mutate(&req)
			_, err := newTestConstructor().Construct(req)
			assert.ErrorIs(t, err, ErrInvalidContext)
		})
	}
}

// TestSolutionInvariants rebuilds the fixture program by hand and checks
// the invariants on the raw solution: the long/short equality, the bound
// on net positions, and capital accounting on gross exposure.
func TestSolutionInvariants(t *testing.T) {
	req := fixtureRequest()
	c := newTestConstructor()

	theoretical, err := c.theoreticalPrices(req.Instruments)
	require.NoError(t, err)
	edges := profitEdges(mispricingSignals(theoretical, req.Instruments), req.TransactionCosts)

	problem := lp.NewProblem()
	vars := buildPositionVariables(problem, req.LiquidityLimits)
	addCapitalConstraint(problem, vars, req.Instruments, req.TransactionCosts, req.Capital)
	addLiquidityConstraints(problem, vars, req.LiquidityLimits)
	addPositionLimitConstraints(problem, vars, req.Instruments, req.TransactionCosts, req.Capital)
	addDominanceConstraints(problem, vars, edges, req.RiskLevels, req.BenchmarkPayoffs)
	setObjective(problem, vars, edges)

	sol, err := problem.Solve()
	require.NoError(t, err)

	const tol = 1e-6
	var gross float64
	for i, v := range vars {
		net := sol.X[v.net]
		long := sol.X[v.long]
		short := sol.X[v.short]

		assert.InDelta(t, long-short, net, tol, "net = long - short for instrument %d", i)
		assert.GreaterOrEqual(t, long, -tol)
		assert.GreaterOrEqual(t, short, -tol)
		assert.LessOrEqual(t, math.Abs(net), req.LiquidityLimits[i]+tol)

		gross += (math.Abs(long) + math.Abs(short)) * (req.Instruments[i].MarketPrice + req.TransactionCosts[i])
	}
	assert.LessOrEqual(t, gross, req.Capital+tol)
}

func TestConstraintCountMatchesRiskStateGrid(t *testing.T) {
	req := fixtureRequest()
	c := newTestConstructor()
	theoretical, err := c.theoreticalPrices(req.Instruments)
	require.NoError(t, err)
	edges := profitEdges(mispricingSignals(theoretical, req.Instruments), req.TransactionCosts)

	problem := lp.NewProblem()
	vars := buildPositionVariables(problem, req.LiquidityLimits)
	before := problem.NumConstraints()
	addDominanceConstraints(problem, vars, edges, req.RiskLevels, req.BenchmarkPayoffs)

	assert.Equal(t, len(req.RiskLevels)*len(req.BenchmarkPayoffs), problem.NumConstraints()-before)
}

func TestPricingKernelTransform(t *testing.T) {
	// The kernel discounts values under risk aversion, harder for larger
	// payoffs, and leaves the zero point alone.
	assert.InDelta(t, 10*math.Exp(-0.1*10), pricingKernel(10, 0.1), 1e-12)
	assert.Zero(t, pricingKernel(0, 0.5))
	assert.Less(t, pricingKernel(100, 0.1), pricingKernel(100, 0.01))

	// A configured constructor applies the transform to fair values.
	plain := NewConstructor(DefaultConfig(), zerolog.Nop())
	cfg := DefaultConfig()
	cfg.RiskAversion = 0.1
	averse := NewConstructor(cfg, zerolog.Nop())

	instruments := fixtureRequest().Instruments
	plainPrices, err := plain.theoreticalPrices(instruments)
	require.NoError(t, err)
	aversePrices, err := averse.theoreticalPrices(instruments)
	require.NoError(t, err)

	for i := range instruments {
		assert.Less(t, aversePrices[i], plainPrices[i])
	}
}
