// Package pricing provides closed-form option pricing and related numerics.
package pricing

import (
	"fmt"
	"math"
)

// OptionKind distinguishes calls from puts.
type OptionKind string

const (
	Call OptionKind = "call"
	Put  OptionKind = "put"
)

// InputError reports malformed pricing inputs. Detected before any
// optimization work starts; the whole request is rejected.
type InputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("pricing: invalid %s=%g: %s", e.Field, e.Value, e.Reason)
}

// normCDF is the cumulative distribution function for the standard normal
// distribution, computed from the error function.
func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// validate rejects inputs the Black-Scholes formula is undefined for.
func validate(s, k, t, sigma float64) error {
	switch {
	case s <= 0:
		return &InputError{Field: "underlying_price", Value: s, Reason: "must be positive"}
	case k <= 0:
		return &InputError{Field: "strike", Value: k, Reason: "must be positive"}
	case t < 0:
		return &InputError{Field: "time_to_maturity", Value: t, Reason: "must not be negative"}
	case sigma < 0:
		return &InputError{Field: "volatility", Value: sigma, Reason: "must not be negative"}
	}
	return nil
}

// BlackScholesCall prices a European call option.
//
// Boundary cases: t == 0 returns the intrinsic value max(s-k, 0) exactly;
// sigma == 0 returns the discounted intrinsic value max(s - k*e^{-rt}, 0),
// the Black-Scholes limit, avoiding the 0/0 in d1.
func BlackScholesCall(s, k, t, r, sigma float64) (float64, error) {
	if err := validate(s, k, t, sigma); err != nil {
		return 0, err
	}
	if t == 0 {
		return math.Max(s-k, 0), nil
	}
	if sigma == 0 {
		return math.Max(s-k*math.Exp(-r*t), 0), nil
	}

	d1 := (math.Log(s/k) + (r+0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
	d2 := d1 - sigma*math.Sqrt(t)
	return s*normCDF(d1) - k*math.Exp(-r*t)*normCDF(d2), nil
}

// BlackScholesPut prices a European put option. Boundary handling mirrors
// BlackScholesCall.
func BlackScholesPut(s, k, t, r, sigma float64) (float64, error) {
	if err := validate(s, k, t, sigma); err != nil {
		return 0, err
	}
	if t == 0 {
		return math.Max(k-s, 0), nil
	}
	if sigma == 0 {
		return math.Max(k*math.Exp(-r*t)-s, 0), nil
	}

	d1 := (math.Log(s/k) + (r+0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
	d2 := d1 - sigma*math.Sqrt(t)
	return k*math.Exp(-r*t)*normCDF(-d2) - s*normCDF(-d1), nil
}

// Price dispatches on the option kind.
func Price(kind OptionKind, s, k, t, r, sigma float64) (float64, error) {
	switch kind {
	case Call:
		return BlackScholesCall(s, k, t, r, sigma)
	case Put:
		return BlackScholesPut(s, k, t, r, sigma)
	default:
		return 0, fmt.Errorf("pricing: unknown option kind %q", kind)
	}
}
