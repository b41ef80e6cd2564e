package lp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const zeroRowTol = 1e-12

// SimplexBackend solves problems with gonum's two-phase simplex. The
// general form built by Problem (box bounds, mixed-sense rows, maximize)
// is converted to the standard form the simplex expects:
//
//	minimize c'y  subject to  Ay = b, y >= 0
//
// by shifting every variable by its lower bound, turning finite upper
// bounds into rows, adding a slack variable per inequality row, and
// negating the objective.
type SimplexBackend struct {
	// Tol is passed through to the simplex; zero selects gonum's default.
	Tol float64
}

type standardForm struct {
	c     []float64
	a     *mat.Dense
	b     []float64
	n     int       // original variable count
	lower []float64 // shift to undo when mapping back
}

// Solve implements the Backend interface.
func (s SimplexBackend) Solve(p *Problem) (*Solution, error) {
	std, err := toStandardForm(p)
	if err != nil {
		return nil, err
	}

	_, y, err := lp.Simplex(std.c, std.a, std.b, s.Tol, nil)
	if err != nil {
		return nil, translateSimplexErr(err)
	}

	x := make([]float64, std.n)
	for i := range x {
		x[i] = y[i] + std.lower[i]
	}

	// Recompute the objective from the original terms; cheaper than
	// untangling the negated, shifted standard-form value.
	var obj float64
	for _, t := range p.objective {
		obj += t.Coeff * x[t.Var]
	}
	return &Solution{X: x, Objective: obj}, nil
}

func toStandardForm(p *Problem) (*standardForm, error) {
	n := len(p.lower)

	type row struct {
		coeffs []float64
		sense  Sense
		rhs    float64
	}

	var rows []row
	addRow := func(coeffs []float64, sense Sense, rhs float64) error {
		// Rows with no effective coefficients cannot enter the basis;
		// check them directly instead of handing the simplex a zero row.
		allZero := true
		for _, c := range coeffs {
			if math.Abs(c) > zeroRowTol {
				allZero = false
				break
			}
		}
		if allZero {
			satisfied := true
			switch sense {
			case LessEq:
				satisfied = rhs >= -zeroRowTol
			case GreaterEq:
				satisfied = rhs <= zeroRowTol
			case Equal:
				satisfied = math.Abs(rhs) <= zeroRowTol
			}
			if !satisfied {
				return ErrInfeasible
			}
			return nil
		}
		rows = append(rows, row{coeffs: coeffs, sense: sense, rhs: rhs})
		return nil
	}

	// Constraint rows, shifted by the variable lower bounds.
	for _, con := range p.constraints {
		coeffs := make([]float64, n)
		shift := 0.0
		for _, t := range con.Terms {
			coeffs[t.Var] += t.Coeff
			shift += t.Coeff * p.lower[t.Var]
		}
		if err := addRow(coeffs, con.Sense, con.RHS-shift); err != nil {
			return nil, err
		}
	}

	// Finite upper bounds become y_i <= hi - lo rows.
	for i := range p.upper {
		if math.IsInf(p.upper[i], 1) {
			continue
		}
		coeffs := make([]float64, n)
		coeffs[i] = 1
		if err := addRow(coeffs, LessEq, p.upper[i]-p.lower[i]); err != nil {
			return nil, err
		}
	}

	// One slack variable per inequality row.
	nSlack := 0
	for _, r := range rows {
		if r.sense != Equal {
			nSlack++
		}
	}

	total := n + nSlack
	a := mat.NewDense(len(rows), total, nil)
	b := make([]float64, len(rows))
	slack := n
	for i, r := range rows {
		for j, c := range r.coeffs {
			a.Set(i, j, c)
		}
		switch r.sense {
		case LessEq:
			a.Set(i, slack, 1)
			slack++
		case GreaterEq:
			a.Set(i, slack, -1)
			slack++
		}
		b[i] = r.rhs
	}

	// Maximize c'x == minimize (-c)'y, constant shift dropped.
	c := make([]float64, total)
	for _, t := range p.objective {
		c[t.Var] -= t.Coeff
	}

	return &standardForm{c: c, a: a, b: b, n: n, lower: p.lower}, nil
}

// translateSimplexErr maps gonum's simplex errors onto the package
// taxonomy. Anything that is not a clean infeasible/unbounded verdict is a
// numerical failure and is surfaced, never retried.
func translateSimplexErr(err error) error {
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return ErrInfeasible
	case errors.Is(err, lp.ErrUnbounded):
		return ErrUnbounded
	default:
		return fmt.Errorf("%w: %v", ErrNumerical, err)
	}
}
