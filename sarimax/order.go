package sarimax

import (
	"fmt"
	"strings"
)

// Order represents the non-seasonal model order (p, d, q).
type Order struct {
	P int // AR order (number of autoregressive terms)
	D int // Differencing order
	Q int // MA order (number of moving average terms)
}

// String formats the order as "(p,d,q)".
func (o Order) String() string {
	return fmt.Sprintf("(%d,%d,%d)", o.P, o.D, o.Q)
}

// SeasonalOrder represents the seasonal model order (P, D, Q) at a given
// period. The zero value means no seasonal component.
type SeasonalOrder struct {
	P      int // Seasonal AR order
	D      int // Seasonal differencing order
	Q      int // Seasonal MA order
	Period int // Seasonal period (e.g. 12 for monthly data with yearly cycle)
}

// Enabled reports whether the seasonal order contributes anything to the
// model. A seasonal order with all of P, D, Q zero is a no-op regardless
// of period.
func (so SeasonalOrder) Enabled() bool {
	return so.Period > 1 && (so.P > 0 || so.D > 0 || so.Q > 0)
}

// String formats the seasonal order as "(P,D,Q,s)".
func (so SeasonalOrder) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", so.P, so.D, so.Q, so.Period)
}

// Metric identifies the information criterion used to score fitted models.
// Lower is always better.
type Metric string

const (
	MetricAIC  Metric = "aic"
	MetricAICc Metric = "aicc"
	MetricBIC  Metric = "bic"
)

// ParseMetric converts a string into a Metric.
func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(s)) {
	case MetricAIC:
		return MetricAIC, nil
	case MetricAICc:
		return MetricAICc, nil
	case MetricBIC:
		return MetricBIC, nil
	default:
		return "", fmt.Errorf("sarimax: unknown metric %q", s)
	}
}
