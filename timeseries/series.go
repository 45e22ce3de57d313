package timeseries

import (
	"errors"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData indicates a series is too short for the requested
// operation (for example a train/test split whose holdout covers the
// whole series).
var ErrInsufficientData = errors.New("timeseries: insufficient data")

// Series represents an ordered univariate time series. Timestamps are
// strictly increasing. Operations never mutate the receiver; they return
// new Series values.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// New creates a series from values with synthetic hourly timestamps.
func New(values []float64) *Series {
	timestamps := make([]time.Time, len(values))
	base := time.Now()
	for i := range timestamps {
		timestamps[i] = base.Add(time.Duration(i) * time.Hour)
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}
}

// NewWithTimestamps creates a series with explicit timestamps.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, errors.New("timeseries: timestamps and values must have the same length")
	}
	return &Series{
		Timestamps: timestamps,
		Values:     values,
	}, nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Values)
}

// Mean returns the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Std returns the population standard deviation (divisor N). This is the
// scale used to normalize forecast RMSE, so it must stay population-based
// for comparability across series.
func (s *Series) Std() float64 {
	n := len(s.Values)
	if n < 2 {
		return 0
	}
	// stat.Variance uses the sample divisor (N-1); rescale to N.
	variance := stat.Variance(s.Values, nil) * float64(n-1) / float64(n)
	if variance <= 0 {
		return 0
	}
	return math.Sqrt(variance)
}

// Diff returns the first difference of the series.
func (s *Series) Diff() *Series {
	return s.diffLag(1, "_diff")
}

// SeasonalDiff returns the seasonal difference with the given period.
func (s *Series) SeasonalDiff(period int) *Series {
	return s.diffLag(period, "_sdiff")
}

func (s *Series) diffLag(lag int, suffix string) *Series {
	if lag <= 0 || len(s.Values) <= lag {
		return &Series{Values: []float64{}}
	}

	values := make([]float64, len(s.Values)-lag)
	for i := lag; i < len(s.Values); i++ {
		values[i-lag] = s.Values[i] - s.Values[i-lag]
	}

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) > lag {
		copy(timestamps, s.Timestamps[lag:])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name + suffix,
	}
}

// Slice returns a copy of the series in [start, end).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Values: []float64{}}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	timestamps := make([]time.Time, len(values))
	if len(s.Timestamps) >= end {
		copy(timestamps, s.Timestamps[start:end])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Split partitions the series into a training head and a holdout tail of
// length holdout. The holdout must be shorter than the series.
func (s *Series) Split(holdout int) (train, test *Series, err error) {
	if holdout < 1 {
		return nil, nil, errors.New("timeseries: holdout must be at least 1")
	}
	if s.Len() <= holdout {
		return nil, nil, ErrInsufficientData
	}
	n := s.Len()
	return s.Slice(0, n-holdout), s.Slice(n-holdout, n), nil
}

// Copy returns a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	timestamps := make([]time.Time, len(s.Timestamps))
	copy(timestamps, s.Timestamps)

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Step returns the spacing between the last two observations, or zero if
// the series has fewer than two timestamps. Used to extend the time index
// past the end of the series when building forecast frames.
func (s *Series) Step() time.Duration {
	n := len(s.Timestamps)
	if n < 2 {
		return 0
	}
	return s.Timestamps[n-1].Sub(s.Timestamps[n-2])
}

// LastTimestamp returns the timestamp of the final observation.
func (s *Series) LastTimestamp() time.Time {
	if len(s.Timestamps) == 0 {
		return time.Time{}
	}
	return s.Timestamps[len(s.Timestamps)-1]
}
