package ordersearch

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelforge/sarimax/sarimax"
	"github.com/modelforge/sarimax/timeseries"
)

// fakeEstimator scores candidates from a fixed table and records every fit
// call. Orders absent from the table fail estimation.
type fakeEstimator struct {
	mu     sync.Mutex
	scores map[sarimax.Order]float64
	calls  map[sarimax.Order]int

	seasonalScores map[sarimax.SeasonalOrder]float64
}

func newFakeEstimator(scores map[sarimax.Order]float64) *fakeEstimator {
	return &fakeEstimator{
		scores: scores,
		calls:  make(map[sarimax.Order]int),
	}
}

func (f *fakeEstimator) Fit(series *timeseries.Series, order sarimax.Order, seasonal sarimax.SeasonalOrder) (*sarimax.Model, error) {
	f.mu.Lock()
	f.calls[order]++
	f.mu.Unlock()

	if seasonal != (sarimax.SeasonalOrder{}) {
		if score, ok := f.seasonalScores[seasonal]; ok {
			return fixedScoreModel(series, order, seasonal, score)
		}
		return nil, &sarimax.EstimationError{Order: order, Seasonal: seasonal, Reason: "not in table"}
	}

	score, ok := f.scores[order]
	if !ok {
		return nil, &sarimax.EstimationError{Order: order, Seasonal: seasonal, Reason: "not in table"}
	}
	return fixedScoreModel(series, order, seasonal, score)
}

// fixedScoreModel fits a trivial model and overrides its criteria so the
// search sees the table's score for every metric.
func fixedScoreModel(series *timeseries.Series, order sarimax.Order, seasonal sarimax.SeasonalOrder, score float64) (*sarimax.Model, error) {
	var est sarimax.CSSEstimator
	m, err := est.Fit(series, sarimax.Order{}, sarimax.SeasonalOrder{})
	if err != nil {
		return nil, err
	}
	m.Order = order
	m.Seasonal = seasonal
	m.AIC = score
	m.AICc = score
	m.BIC = score
	return m, nil
}

func testSeries() *timeseries.Series {
	values := make([]float64, 80)
	for i := range values {
		values[i] = 50 + float64(i%7-3)
	}
	return timeseries.New(values)
}

func TestSearchEnumeratesFullGrid(t *testing.T) {
	est := newFakeEstimator(map[sarimax.Order]float64{})
	// Every candidate fails; the point is the enumeration count.
	s := New(est, nil)

	res, err := s.Search(context.Background(), testSeries(), Config{
		Metric: sarimax.MetricAIC,
		PMax:   2, DMax: 1, QMax: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, 3*2*4, res.Evaluated)

	total := 0
	for _, n := range est.calls {
		assert.Equal(t, 1, n, "each candidate must be evaluated exactly once")
		total += n
	}
	assert.Equal(t, 3*2*4, total)
}

func TestSearchPicksMinimumScore(t *testing.T) {
	est := newFakeEstimator(map[sarimax.Order]float64{
		{P: 0, D: 0, Q: 0}: 50,
		{P: 1, D: 0, Q: 1}: 10,
		{P: 2, D: 1, Q: 0}: 30,
	})
	s := New(est, nil)

	res, err := s.Search(context.Background(), testSeries(), Config{
		Metric: sarimax.MetricAIC,
		PMax:   2, DMax: 1, QMax: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, sarimax.Order{P: 1, D: 0, Q: 1}, res.Order)
	assert.Equal(t, 10.0, res.Score)
	assert.True(t, res.Viable())
	assert.NoError(t, res.Err())
}

func TestSearchTieBreakFirstEnumerated(t *testing.T) {
	// Two candidates with identical scores: the one enumerated first
	// (lower p, then d, then q) must win.
	est := newFakeEstimator(map[sarimax.Order]float64{
		{P: 0, D: 1, Q: 0}: 7,
		{P: 2, D: 0, Q: 1}: 7,
	})
	s := New(est, nil)

	for i := 0; i < 5; i++ {
		res, err := s.Search(context.Background(), testSeries(), Config{
			Metric: sarimax.MetricAIC,
			PMax:   2, DMax: 1, QMax: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, sarimax.Order{P: 0, D: 1, Q: 0}, res.Order,
			"tie must deterministically go to the first enumerated order")
	}
}

func TestSearchSkipsFailedCandidates(t *testing.T) {
	est := newFakeEstimator(map[sarimax.Order]float64{
		{P: 1, D: 1, Q: 1}: 42,
	})
	s := New(est, nil)

	res, err := s.Search(context.Background(), testSeries(), Config{
		Metric: sarimax.MetricAIC,
		PMax:   1, DMax: 1, QMax: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, sarimax.Order{P: 1, D: 1, Q: 1}, res.Order)
	assert.Equal(t, 8, res.Evaluated)
	assert.Equal(t, 7, res.Failed)
	assert.True(t, res.Viable())
}

func TestSearchAllCandidatesFail(t *testing.T) {
	est := newFakeEstimator(map[sarimax.Order]float64{})
	s := New(est, nil)

	res, err := s.Search(context.Background(), testSeries(), Config{
		Metric: sarimax.MetricAIC,
		PMax:   1, DMax: 1, QMax: 1,
	})
	require.NoError(t, err, "an unviable search must not raise")

	assert.True(t, math.IsInf(res.Score, 1))
	assert.Equal(t, sarimax.Order{}, res.Order, "sentinel order is the first enumerated tuple")
	assert.False(t, res.Viable())
	assert.ErrorIs(t, res.Err(), ErrNoViableModel)
}

func TestSearchSeasonalPass(t *testing.T) {
	fixed := sarimax.Order{P: 1, D: 1, Q: 0}
	est := newFakeEstimator(nil)
	est.seasonalScores = map[sarimax.SeasonalOrder]float64{
		{P: 1, D: 0, Q: 0, Period: 12}: 90,
		{P: 1, D: 1, Q: 0, Period: 12}: 80,
	}
	s := New(est, nil)

	res, err := s.Search(context.Background(), testSeries(), Config{
		Metric: sarimax.MetricBIC,
		PMax:   1, DMax: 1, QMax: 1,
		Seasonal:       true,
		SeasonalPeriod: 12,
		FixedOrder:     fixed,
		Baseline:       100,
		HasBaseline:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, fixed, res.Order, "seasonal pass keeps the fixed non-seasonal order")
	assert.Equal(t, sarimax.SeasonalOrder{P: 1, D: 1, Q: 0, Period: 12}, res.Seasonal)
	assert.Equal(t, 80.0, res.Score)
	assert.True(t, res.SeasonalityConfirmed, "score 80 strictly improves on baseline 100")
}

func TestSearchSeasonalNotConfirmed(t *testing.T) {
	est := newFakeEstimator(nil)
	est.seasonalScores = map[sarimax.SeasonalOrder]float64{
		{P: 0, D: 0, Q: 0, Period: 4}: 100,
	}
	s := New(est, nil)

	res, err := s.Search(context.Background(), testSeries(), Config{
		Metric: sarimax.MetricAIC,
		PMax:   0, DMax: 0, QMax: 0,
		Seasonal:       true,
		SeasonalPeriod: 4,
		Baseline:       100,
		HasBaseline:    true,
	})
	require.NoError(t, err)
	assert.False(t, res.SeasonalityConfirmed, "equal score must not confirm seasonality")
}

func TestSearchSeasonalWithoutBaseline(t *testing.T) {
	// A seasonal pass whose config never sets a baseline must not treat
	// the float zero value as one, even for candidates scoring below 0.
	est := newFakeEstimator(nil)
	est.seasonalScores = map[sarimax.SeasonalOrder]float64{
		{P: 0, D: 0, Q: 0, Period: 4}: -25,
	}
	s := New(est, nil)

	res, err := s.Search(context.Background(), testSeries(), Config{
		Metric: sarimax.MetricAIC,
		PMax:   0, DMax: 0, QMax: 0,
		Seasonal:       true,
		SeasonalPeriod: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, -25.0, res.Score)
	assert.False(t, res.SeasonalityConfirmed,
		"seasonality must never be confirmed without an explicit baseline")
}

func TestSearchParallelMatchesSequential(t *testing.T) {
	scores := map[sarimax.Order]float64{
		{P: 0, D: 0, Q: 1}: 12,
		{P: 1, D: 0, Q: 0}: 12, // tie with the above; q-inner enumerates {0,0,1} first
		{P: 2, D: 2, Q: 2}: 5,
	}

	seq := New(newFakeEstimator(scores), nil)
	par := New(newFakeEstimator(scores), nil)

	cfg := Config{Metric: sarimax.MetricAIC, PMax: 2, DMax: 2, QMax: 2}

	seqRes, err := seq.Search(context.Background(), testSeries(), cfg)
	require.NoError(t, err)

	cfg.Workers = 4
	parRes, err := par.Search(context.Background(), testSeries(), cfg)
	require.NoError(t, err)

	assert.Equal(t, seqRes.Order, parRes.Order)
	assert.Equal(t, seqRes.Score, parRes.Score)
	assert.Equal(t, seqRes.Failed, parRes.Failed)
}

func TestSearchParallelTieBreak(t *testing.T) {
	scores := map[sarimax.Order]float64{
		{P: 0, D: 0, Q: 1}: 3,
		{P: 2, D: 2, Q: 2}: 3,
	}

	// Repeat to give a racy implementation a chance to misbehave.
	for i := 0; i < 10; i++ {
		s := New(newFakeEstimator(scores), nil)
		res, err := s.Search(context.Background(), testSeries(), Config{
			Metric: sarimax.MetricAIC,
			PMax:   2, DMax: 2, QMax: 2,
			Workers: 4,
		})
		require.NoError(t, err)
		assert.Equal(t, sarimax.Order{P: 0, D: 0, Q: 1}, res.Order,
			"parallel search must keep the first-enumerated tie-break")
	}
}

func TestSearchCancellation(t *testing.T) {
	est := newFakeEstimator(map[sarimax.Order]float64{})
	s := New(est, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Search(ctx, testSeries(), Config{
		Metric: sarimax.MetricAIC,
		PMax:   3, DMax: 2, QMax: 3,
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearchInvalidConfig(t *testing.T) {
	s := New(newFakeEstimator(nil), nil)

	_, err := s.Search(context.Background(), testSeries(), Config{PMax: -1})
	assert.Error(t, err)

	_, err = s.Search(context.Background(), testSeries(), Config{Seasonal: true, SeasonalPeriod: 1})
	assert.Error(t, err)
}

func TestSearchWithRealEstimator(t *testing.T) {
	// Trending series: the search should land on a differencing order
	// that makes the series stationary.
	n := 50
	values := make([]float64, n)
	for i := range values {
		values[i] = 10 + 0.5*float64(i) + float64(i%5-2)/4
	}
	series := timeseries.New(values)

	var est sarimax.CSSEstimator
	s := New(est, nil)

	res, err := s.Search(context.Background(), series, Config{
		Metric: sarimax.MetricAIC,
		PMax:   2, DMax: 2, QMax: 2,
	})
	require.NoError(t, err)

	assert.True(t, res.Viable())
	assert.False(t, math.IsInf(res.Score, 0))
	assert.True(t, res.Order.D >= 1 && res.Order.D <= 2,
		"trending series should select d in {1,2}, got %d", res.Order.D)
}
