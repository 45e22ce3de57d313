package sarimax

import "fmt"

// EstimationError reports a numerical-estimation failure for a given order
// specification: insufficient data for the order, degenerate differencing,
// or a non-finite optimization objective. Candidates failing with this
// error are skipped by the order search rather than aborting it.
type EstimationError struct {
	Order    Order
	Seasonal SeasonalOrder
	Reason   string
}

func (e *EstimationError) Error() string {
	if e.Seasonal.Enabled() {
		return fmt.Sprintf("sarimax: estimation failed for %sx%s: %s", e.Order, e.Seasonal, e.Reason)
	}
	return fmt.Sprintf("sarimax: estimation failed for %s: %s", e.Order, e.Reason)
}

func estimationErr(order Order, seasonal SeasonalOrder, reason string) error {
	return &EstimationError{Order: order, Seasonal: seasonal, Reason: reason}
}
