package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlackScholesCallPrice(t *testing.T) {
	// Reference value from a standard Black-Scholes calculator.
	price, err := BlackScholesCall(100, 100, 1.0, 0.05, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 10.45058, price, 1e-5)
}

func TestBlackScholesPutPrice(t *testing.T) {
	price, err := BlackScholesPut(100, 100, 1.0, 0.05, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 5.57352, price, 1e-5)
}

func TestBlackScholesDeepInTheMoneyCall(t *testing.T) {
	price, err := BlackScholesCall(150, 100, 1.0, 0.05, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 54.970140138, price, 1e-5)
}

func TestBlackScholesZeroTimeToMaturity(t *testing.T) {
	call, err := BlackScholesCall(100, 90, 0, 0.05, 0.2)
	require.NoError(t, err)
	assert.Equal(t, 10.0, call)

	put, err := BlackScholesPut(100, 110, 0, 0.05, 0.2)
	require.NoError(t, err)
	assert.Equal(t, 10.0, put)

	otmCall, err := BlackScholesCall(100, 110, 0, 0.05, 0.2)
	require.NoError(t, err)
	assert.Equal(t, 0.0, otmCall)
}

func TestBlackScholesZeroVolatility(t *testing.T) {
	s, k, tm, r := 100.0, 100.0, 1.0, 0.05

	call, err := BlackScholesCall(s, k, tm, r, 0)
	require.NoError(t, err)
	assert.InDelta(t, math.Max(s-k*math.Exp(-r*tm), 0), call, 1e-12)

	put, err := BlackScholesPut(s, k, tm, r, 0)
	require.NoError(t, err)
	assert.InDelta(t, math.Max(k*math.Exp(-r*tm)-s, 0), put, 1e-12)
}

func TestPutCallParity(t *testing.T) {
	cases := []struct {
		name             string
		s, k, t, r, sigma float64
	}{
		{"at the money", 100, 100, 1.0, 0.05, 0.2},
		{"in the money call", 120, 100, 0.5, 0.03, 0.3},
		{"out of the money call", 80, 100, 2.0, 0.01, 0.15},
		{"zero volatility", 100, 95, 1.0, 0.05, 0},
		{"short dated", 100, 100, 0.01, 0.05, 0.4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			call, err := BlackScholesCall(tc.s, tc.k, tc.t, tc.r, tc.sigma)
			require.NoError(t, err)
			put, err := BlackScholesPut(tc.s, tc.k, tc.t, tc.r, tc.sigma)
			require.NoError(t, err)

			forward := tc.s - tc.k*math.Exp(-tc.r*tc.t)
			assert.InDelta(t, forward, call-put, 1e-6)
		})
	}
}

func TestBlackScholesRejectsInvalidInputs(t *testing.T) {
	cases := []struct {
		name             string
		s, k, t, sigma float64
	}{
		{"non-positive underlying", 0, 100, 1, 0.2},
		{"negative underlying", -5, 100, 1, 0.2},
		{"non-positive strike", 100, 0, 1, 0.2},
		{"negative maturity", 100, 100, -0.1, 0.2},
		{"negative volatility", 100, 100, 1, -0.2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BlackScholesCall(tc.s, tc.k, tc.t, 0.05, tc.sigma)
			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)

			_, err = BlackScholesPut(tc.s, tc.k, tc.t, 0.05, tc.sigma)
			require.ErrorAs(t, err, &inputErr)
		})
	}
}

func TestPriceDispatch(t *testing.T) {
	call, err := Price(Call, 100, 100, 1.0, 0.05, 0.2)
	require.NoError(t, err)
	put, err := Price(Put, 100, 100, 1.0, 0.05, 0.2)
	require.NoError(t, err)
	assert.Greater(t, call, put)

	_, err = Price(OptionKind("straddle"), 100, 100, 1.0, 0.05, 0.2)
	assert.Error(t, err)
}

func TestEstimateStatePricesProbabilitiesSumToOne(t *testing.T) {
	prices, probs := EstimateStatePrices(100, 0.05, 0.2, 1.0, 5)
	require.Len(t, prices, 6)
	require.Len(t, probs, 6)

	var total float64
	for _, p := range probs {
		assert.GreaterOrEqual(t, p, 0.0)
		total += p
	}
	assert.InDelta(t, 1.0, total, 1e-9)

	// Prices ordered from all-up to all-down.
	for i := 1; i < len(prices); i++ {
		assert.Less(t, prices[i], prices[i-1])
	}
}

func TestDelta(t *testing.T) {
	callDelta, err := Delta(Call, 100, 100, 1.0, 0.05, 0.2)
	require.NoError(t, err)
	putDelta, err := Delta(Put, 100, 100, 1.0, 0.05, 0.2)
	require.NoError(t, err)

	assert.InDelta(t, callDelta-1.0, putDelta, 1e-12)
	assert.Greater(t, callDelta, 0.5) // ATM call with positive drift
	assert.Less(t, callDelta, 1.0)

	expiredITM, err := Delta(Call, 110, 100, 0, 0.05, 0.2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, expiredITM)
}
