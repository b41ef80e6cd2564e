package arbitrage

import "github.com/stratolab/strato-go/internal/lp"

// addCapitalConstraint limits gross exposure, not net exposure:
//
//	sum_i (long_i + short_i) * (market_price_i + cost_i) <= capital
//
// A hedged book with zero net position still ties up capital on both legs.
func addCapitalConstraint(p *lp.Problem, vars []positionVars, instruments []Instrument, costs []float64, capital float64) {
	terms := make([]lp.Term, 0, 2*len(vars))
	for i, v := range vars {
		unitCost := instruments[i].MarketPrice + costs[i]
		terms = append(terms,
			lp.Term{Var: v.long, Coeff: unitCost},
			lp.Term{Var: v.short, Coeff: unitCost},
		)
	}
	p.AddConstraint(terms, lp.LessEq, capital)
}

// addLiquidityConstraints caps each leg at the instrument's liquidity.
// Redundant with the variable bounds, but kept as explicit rows for solver
// compatibility and clearer infeasibility diagnostics.
func addLiquidityConstraints(p *lp.Problem, vars []positionVars, liquidity []float64) {
	for i, v := range vars {
		p.AddConstraint([]lp.Term{{Var: v.long, Coeff: 1}}, lp.LessEq, liquidity[i])
		p.AddConstraint([]lp.Term{{Var: v.short, Coeff: 1}}, lp.LessEq, liquidity[i])
	}
}

// addPositionLimitConstraints caps concentration per name: the capital at
// risk in any single instrument may not exceed an equal share of the
// budget, long or short.
//
//	-capital/n <= net_i * (market_price_i + cost_i) <= capital/n
func addPositionLimitConstraints(p *lp.Problem, vars []positionVars, instruments []Instrument, costs []float64, capital float64) {
	limit := capital / float64(len(vars))
	for i, v := range vars {
		unitCost := instruments[i].MarketPrice + costs[i]
		p.AddConstraint([]lp.Term{{Var: v.net, Coeff: unitCost}}, lp.LessEq, limit)
		p.AddConstraint([]lp.Term{{Var: v.net, Coeff: unitCost}}, lp.GreaterEq, -limit)
	}
}

// addDominanceConstraints forces the portfolio's risk-weighted payoff to
// be at least as good as the benchmark's at every declared (risk level,
// market state) pair, a linear proxy for second-order stochastic
// dominance:
//
//	(sum_i net_i * edge_i) * risk >= benchmark_state * risk
//
// Risk levels and states are independent dimensions; the number of rows
// generated is len(riskLevels) * len(benchmarkPayoffs).
func addDominanceConstraints(p *lp.Problem, vars []positionVars, edges, riskLevels, benchmarkPayoffs []float64) {
	for _, risk := range riskLevels {
		for _, benchmark := range benchmarkPayoffs {
			terms := make([]lp.Term, len(vars))
			for i, v := range vars {
				terms[i] = lp.Term{Var: v.net, Coeff: edges[i] * risk}
			}
			p.AddConstraint(terms, lp.GreaterEq, benchmark*risk)
		}
	}
}
