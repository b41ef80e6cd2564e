// Package lp provides a small linear-programming model builder with a
// pluggable backend. Variables carry box bounds, constraints are linear
// rows, and the objective is maximized. The default backend is gonum's
// simplex implementation (see simplex.go); any backend satisfying the
// Backend interface can be substituted.
package lp

import (
	"errors"
	"math"
)

// Typed solve failures. Backends translate their own error values into
// these so callers never depend on a specific solver library.
var (
	// ErrInfeasible means no assignment satisfies all constraints.
	ErrInfeasible = errors.New("lp: problem is infeasible")
	// ErrUnbounded means the objective can be driven arbitrarily high.
	ErrUnbounded = errors.New("lp: problem is unbounded")
	// ErrNumerical wraps backend-specific breakdowns (degeneracy,
	// precision loss, singular bases).
	ErrNumerical = errors.New("lp: numerical failure")
)

// Sense is the relation of a constraint row to its right-hand side.
type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

// Variable identifies a decision variable within a Problem.
type Variable int

// Term is a coefficient applied to a variable in a linear expression.
type Term struct {
	Var   Variable
	Coeff float64
}

// Constraint is one linear row: sum(Terms) Sense RHS.
type Constraint struct {
	Terms []Term
	Sense Sense
	RHS   float64
}

// Solution holds the resolved variable values and the objective at the
// optimum (in the original maximize orientation).
type Solution struct {
	X         []float64
	Objective float64
}

// Backend solves a fully assembled problem.
type Backend interface {
	Solve(p *Problem) (*Solution, error)
}

// Problem accumulates variables, constraints and an objective. The zero
// value is not usable; construct with NewProblem.
type Problem struct {
	lower, upper []float64
	constraints  []Constraint
	objective    []Term
	backend      Backend
}

// NewProblem creates an empty maximization problem using the gonum
// simplex backend.
func NewProblem() *Problem {
	return &Problem{backend: SimplexBackend{}}
}

// SetBackend replaces the solver backend.
func (p *Problem) SetBackend(b Backend) {
	p.backend = b
}

// AddVariable declares a decision variable bounded to [lo, hi] and returns
// its handle. Lower bounds must be finite; the standard-form conversion
// shifts variables by their lower bound.
func (p *Problem) AddVariable(lo, hi float64) Variable {
	p.lower = append(p.lower, lo)
	p.upper = append(p.upper, hi)
	return Variable(len(p.lower) - 1)
}

// AddConstraint appends a linear constraint row.
func (p *Problem) AddConstraint(terms []Term, sense Sense, rhs float64) {
	p.constraints = append(p.constraints, Constraint{Terms: terms, Sense: sense, RHS: rhs})
}

// Maximize sets the linear objective. Later calls replace earlier ones.
func (p *Problem) Maximize(terms []Term) {
	p.objective = terms
}

// NumVariables reports the number of declared variables.
func (p *Problem) NumVariables() int { return len(p.lower) }

// NumConstraints reports the number of constraint rows.
func (p *Problem) NumConstraints() int { return len(p.constraints) }

// Solve runs the configured backend. Bound sanity is checked here so every
// backend can assume lo <= hi and finite lower bounds.
func (p *Problem) Solve() (*Solution, error) {
	for i := range p.lower {
		if math.IsInf(p.lower[i], -1) || math.IsNaN(p.lower[i]) {
			return nil, ErrNumerical
		}
		if p.lower[i] > p.upper[i] {
			return nil, ErrInfeasible
		}
	}
	return p.backend.Solve(p)
}
