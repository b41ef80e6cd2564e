package arbitrage

import "github.com/stratolab/strato-go/internal/lp"

// positionVars is the decision-variable triple for one instrument. The
// net position is decomposed into non-negative long and short parts so the
// capital and dominance constraints can reference gross exposure, which a
// net variable alone cannot express (long and short legs cancel to zero
// net while still consuming capital).
type positionVars struct {
	net   lp.Variable
	long  lp.Variable
	short lp.Variable
}

// buildPositionVariables declares the per-instrument variables and the
// net = long - short equality that ties the decomposition together.
//
// Bounds: net in [-liquidity, liquidity], long and short in [0, liquidity].
func buildPositionVariables(p *lp.Problem, liquidity []float64) []positionVars {
	vars := make([]positionVars, len(liquidity))
	for i, liq := range liquidity {
		v := positionVars{
			net:   p.AddVariable(-liq, liq),
			long:  p.AddVariable(0, liq),
			short: p.AddVariable(0, liq),
		}
		p.AddConstraint([]lp.Term{
			{Var: v.net, Coeff: 1},
			{Var: v.long, Coeff: -1},
			{Var: v.short, Coeff: 1},
		}, lp.Equal, 0)
		vars[i] = v
	}
	return vars
}
