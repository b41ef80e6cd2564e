package arbitrage

import (
	"errors"
	"fmt"
)

// ErrInvalidContext reports malformed market-context scalars: non-positive
// capital, negative transaction costs or liquidity limits, or non-positive
// risk levels.
var ErrInvalidContext = errors.New("arbitrage: invalid market context")

// InvalidInstrumentError reports an instrument whose pricing inputs are
// malformed. The whole request is rejected before any constraint building.
type InvalidInstrumentError struct {
	Name string
	Err  error
}

func (e *InvalidInstrumentError) Error() string {
	return fmt.Sprintf("arbitrage: invalid instrument %q: %v", e.Name, e.Err)
}

func (e *InvalidInstrumentError) Unwrap() error { return e.Err }

// DimensionMismatchError reports aligned input lists whose lengths
// disagree with the instrument count, or required lists that are empty.
type DimensionMismatchError struct {
	Field string
	Want  int
	Got   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("arbitrage: %s has length %d, want %d", e.Field, e.Got, e.Want)
}
