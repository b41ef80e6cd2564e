package arbitrage

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stratolab/strato-go/internal/lp"
)

// Constructor runs single-shot portfolio constructions. It is stateless
// across calls; every Construct builds an independent variable and
// constraint set, so one Constructor may serve concurrent requests.
type Constructor struct {
	cfg Config
	log zerolog.Logger
}

// NewConstructor creates a portfolio constructor with the given
// configuration.
func NewConstructor(cfg Config, log zerolog.Logger) *Constructor {
	return &Constructor{
		cfg: cfg,
		log: log.With().Str("component", "arbitrage").Logger(),
	}
}

// Construct prices the instruments, measures mispricing, assembles the
// linear program and solves it. The call chain runs to completion
// synchronously; the only blocking step is the LP solve.
//
// Failures are returned as typed errors: InvalidInstrumentError,
// DimensionMismatchError, ErrInvalidContext before the solve, and
// lp.ErrInfeasible / lp.ErrUnbounded / lp.ErrNumerical from the backend.
// A feasible solve whose optimum does not beat the no-trade baseline by
// more than NoArbEpsilon yields StatusNoArbitrage with zero positions,
// not an error.
func (c *Constructor) Construct(req Request) (*Result, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	theoretical, err := c.theoreticalPrices(req.Instruments)
	if err != nil {
		return nil, err
	}
	signals := mispricingSignals(theoretical, req.Instruments)
	edges := profitEdges(signals, req.TransactionCosts)

	problem := lp.NewProblem()
	problem.SetBackend(lp.SimplexBackend{Tol: c.cfg.SolverTol})

	vars := buildPositionVariables(problem, req.LiquidityLimits)
	addCapitalConstraint(problem, vars, req.Instruments, req.TransactionCosts, req.Capital)
	addLiquidityConstraints(problem, vars, req.LiquidityLimits)
	addPositionLimitConstraints(problem, vars, req.Instruments, req.TransactionCosts, req.Capital)
	addDominanceConstraints(problem, vars, edges, req.RiskLevels, req.BenchmarkPayoffs)
	setObjective(problem, vars, edges)

	c.log.Debug().
		Int("instruments", len(req.Instruments)).
		Int("variables", problem.NumVariables()).
		Int("constraints", problem.NumConstraints()).
		Msg("Solving arbitrage program")

	solution, err := problem.Solve()
	if err != nil {
		return nil, err
	}

	// Caller-level policy: an optimum that does not meaningfully beat the
	// no-trade baseline is "no arbitrage opportunity found", a
	// distinguished outcome rather than a failure.
	if solution.Objective <= c.cfg.NoArbEpsilon {
		c.log.Debug().
			Float64("objective", solution.Objective).
			Msg("No arbitrage opportunity found")
		return &Result{
			Portfolio: zeroPortfolio(req.Instruments),
			Objective: solution.Objective,
			Status:    StatusNoArbitrage,
		}, nil
	}

	return &Result{
		Portfolio: assemblePortfolio(req.Instruments, vars, solution),
		Objective: solution.Objective,
		Status:    StatusOptimal,
	}, nil
}

// assemblePortfolio zips resolved net positions back onto instrument
// names, preserving input order. Zero positions are reported, never
// filtered.
func assemblePortfolio(instruments []Instrument, vars []positionVars, sol *lp.Solution) Portfolio {
	holdings := make([]Holding, len(instruments))
	for i, inst := range instruments {
		holdings[i] = Holding{Name: inst.Name, Position: sol.X[vars[i].net]}
	}
	return Portfolio{Holdings: holdings}
}

func zeroPortfolio(instruments []Instrument) Portfolio {
	holdings := make([]Holding, len(instruments))
	for i, inst := range instruments {
		holdings[i] = Holding{Name: inst.Name}
	}
	return Portfolio{Holdings: holdings}
}

// validateRequest checks the input contract before any pricing or
// constraint building: list shapes first, then context scalars.
func validateRequest(req Request) error {
	n := len(req.Instruments)
	if n == 0 {
		return &DimensionMismatchError{Field: "instruments", Want: 1, Got: 0}
	}
	if len(req.TransactionCosts) != n {
		return &DimensionMismatchError{Field: "transaction_costs", Want: n, Got: len(req.TransactionCosts)}
	}
	if len(req.LiquidityLimits) != n {
		return &DimensionMismatchError{Field: "liquidity_limits", Want: n, Got: len(req.LiquidityLimits)}
	}
	if len(req.RiskLevels) == 0 {
		return &DimensionMismatchError{Field: "risk_levels", Want: 1, Got: 0}
	}
	if len(req.BenchmarkPayoffs) == 0 {
		return &DimensionMismatchError{Field: "benchmark_payoffs", Want: 1, Got: 0}
	}

	if req.Capital <= 0 {
		return fmt.Errorf("%w: capital must be positive, got %g", ErrInvalidContext, req.Capital)
	}
	for i, cost := range req.TransactionCosts {
		if cost < 0 {
			return fmt.Errorf("%w: transaction cost [%d] must not be negative, got %g", ErrInvalidContext, i, cost)
		}
	}
	for i, liq := range req.LiquidityLimits {
		if liq < 0 {
			return fmt.Errorf("%w: liquidity limit [%d] must not be negative, got %g", ErrInvalidContext, i, liq)
		}
	}
	for i, risk := range req.RiskLevels {
		if risk <= 0 {
			return fmt.Errorf("%w: risk level [%d] must be positive, got %g", ErrInvalidContext, i, risk)
		}
	}

	seen := make(map[string]struct{}, n)
	for _, inst := range req.Instruments {
		if _, dup := seen[inst.Name]; dup {
			return fmt.Errorf("%w: duplicate instrument name %q", ErrInvalidContext, inst.Name)
		}
		seen[inst.Name] = struct{}{}
	}
	return nil
}
