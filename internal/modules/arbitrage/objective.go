package arbitrage

import "github.com/stratolab/strato-go/internal/lp"

// setObjective maximizes total expected arbitrage profit:
//
//	sum_i net_i * (theoretical_i - market_price_i - cost_i)
//
// Only net positions carry profit; the long/short split matters for the
// capital accounting, not for the objective.
func setObjective(p *lp.Problem, vars []positionVars, edges []float64) {
	terms := make([]lp.Term, len(vars))
	for i, v := range vars {
		terms[i] = lp.Term{Var: v.net, Coeff: edges[i]}
	}
	p.Maximize(terms)
}
