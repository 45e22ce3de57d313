// Package evaluate computes forecast accuracy metrics.
package evaluate

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/modelforge/sarimax/timeseries"
)

// ErrShapeMismatch indicates misaligned sequences in an accuracy
// computation.
var ErrShapeMismatch = errors.New("evaluate: sequences have mismatched lengths")

// StaticRMSE computes the root-mean-square error of in-sample one-step
// predictions against the observed values, dropping the first skipLeading
// points of each sequence (they are undefined after differencing). The
// sequences must have equal length after the skip.
func StaticRMSE(truth, predicted []float64, skipLeading int) (float64, error) {
	if skipLeading < 0 {
		skipLeading = 0
	}
	if len(truth) != len(predicted) {
		return 0, fmt.Errorf("%w: truth %d vs predicted %d", ErrShapeMismatch, len(truth), len(predicted))
	}
	if skipLeading >= len(truth) {
		return 0, fmt.Errorf("%w: skip %d leaves no points of %d", ErrShapeMismatch, skipLeading, len(truth))
	}
	return rmse(truth[skipLeading:], predicted[skipLeading:]), nil
}

// DynamicRMSE computes the root-mean-square error of a multi-step forecast
// against the held-out test values, plus a normalized variant. The
// normalization divisor is the population standard deviation of the
// training series, which fixes the scale so the figure is comparable
// across series of different magnitudes.
func DynamicRMSE(test, forecast []float64, train *timeseries.Series) (rmseVal, normalized float64, err error) {
	if len(test) != len(forecast) {
		return 0, 0, fmt.Errorf("%w: test %d vs forecast %d", ErrShapeMismatch, len(test), len(forecast))
	}
	if len(test) == 0 {
		return 0, 0, fmt.Errorf("%w: empty forecast horizon", ErrShapeMismatch)
	}

	rmseVal = rmse(test, forecast)

	scale := train.Std()
	if scale == 0 {
		normalized = math.Inf(1)
		if rmseVal == 0 {
			normalized = 0
		}
		return rmseVal, normalized, nil
	}
	return rmseVal, rmseVal / scale, nil
}

// MAE computes the mean absolute error between two aligned sequences.
func MAE(truth, predicted []float64) (float64, error) {
	if len(truth) != len(predicted) || len(truth) == 0 {
		return 0, fmt.Errorf("%w: truth %d vs predicted %d", ErrShapeMismatch, len(truth), len(predicted))
	}
	sum := 0.0
	for i := range truth {
		sum += math.Abs(truth[i] - predicted[i])
	}
	return sum / float64(len(truth)), nil
}

// MAPE computes the mean absolute percentage error, skipping zero truth
// values.
func MAPE(truth, predicted []float64) (float64, error) {
	if len(truth) != len(predicted) || len(truth) == 0 {
		return 0, fmt.Errorf("%w: truth %d vs predicted %d", ErrShapeMismatch, len(truth), len(predicted))
	}
	sum := 0.0
	count := 0
	for i := range truth {
		if truth[i] == 0 {
			continue
		}
		sum += math.Abs((truth[i] - predicted[i]) / truth[i])
		count++
	}
	if count == 0 {
		return 0, errors.New("evaluate: all truth values are zero")
	}
	return sum / float64(count) * 100, nil
}

func rmse(truth, predicted []float64) float64 {
	diff := make([]float64, len(truth))
	floats.SubTo(diff, truth, predicted)
	sse := floats.Dot(diff, diff)
	return math.Sqrt(sse / float64(len(truth)))
}
