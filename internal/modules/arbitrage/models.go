// Package arbitrage constructs options-arbitrage portfolios. Given priced
// option instruments it computes theoretical fair values, measures
// mispricing against quoted market prices, and solves a linear program
// choosing long/short position sizes that maximize arbitrage profit under
// capital, liquidity, concentration and benchmark-dominance constraints.
package arbitrage

import "github.com/stratolab/strato-go/internal/pricing"

// Instrument is one priced option. Immutable once handed to Construct.
type Instrument struct {
	// Name identifies the instrument within a run; must be unique.
	Name string `json:"name"`
	// S is the underlying asset price.
	S float64 `json:"s"`
	// K is the strike price.
	K float64 `json:"k"`
	// T is the time to maturity in years (>= 0).
	T float64 `json:"t"`
	// R is the risk-free rate.
	R float64 `json:"r"`
	// Sigma is the volatility of the underlying (>= 0).
	Sigma float64 `json:"sigma"`
	// Kind is "call" or "put".
	Kind pricing.OptionKind `json:"kind"`
	// MarketPrice is the quoted market price of the option.
	MarketPrice float64 `json:"market_price"`
}

// Request is the full input contract for one portfolio construction.
// TransactionCosts and LiquidityLimits are aligned by index with
// Instruments; BenchmarkPayoffs carries one payoff per market state.
type Request struct {
	Instruments      []Instrument `json:"instruments"`
	Capital          float64      `json:"capital"`
	RiskLevels       []float64    `json:"risk_levels"`
	BenchmarkPayoffs []float64    `json:"benchmark_payoffs"`
	TransactionCosts []float64    `json:"transaction_costs"`
	LiquidityLimits  []float64    `json:"liquidity_limits"`
}

// Holding is one resolved position. Positive = long, negative = short,
// zero positions are still reported.
type Holding struct {
	Name     string  `json:"name"`
	Position float64 `json:"position"`
}

// Portfolio is the construction result, same cardinality and order as the
// request's instrument list.
type Portfolio struct {
	Holdings []Holding `json:"holdings"`
}

// Status classifies a completed solve.
type Status string

const (
	// StatusOptimal means the solver found a profitable optimum.
	StatusOptimal Status = "optimal"
	// StatusNoArbitrage means the problem was feasible but the optimal
	// objective did not clear the epsilon threshold; all positions are
	// reported as zero.
	StatusNoArbitrage Status = "no_arbitrage"
)

// Result is the outcome of a successful solve invocation.
type Result struct {
	Portfolio Portfolio `json:"portfolio"`
	Objective float64   `json:"objective"`
	Status    Status    `json:"status"`
}

// Config carries the tunables of the constructor. Passed in explicitly so
// concurrent configurations can coexist; there are no module-level knobs.
type Config struct {
	// NoArbEpsilon is the minimum objective improvement over the no-trade
	// baseline required to report an arbitrage portfolio.
	NoArbEpsilon float64
	// SolverTol is forwarded to the LP backend; zero selects its default.
	SolverTol float64
	// RiskAversion, when positive, applies a risk-averse pricing-kernel
	// transform to the theoretical prices before mispricing is measured.
	// Zero disables the transform and uses plain Black-Scholes values.
	RiskAversion float64
}

// DefaultConfig returns the canonical constructor configuration.
func DefaultConfig() Config {
	return Config{
		NoArbEpsilon: 1e-6,
	}
}
