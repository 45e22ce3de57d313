package sarimax

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/modelforge/sarimax/stats"
	"github.com/modelforge/sarimax/timeseries"
)

// ForecastPoint is a single forecast step: the point forecast plus its
// confidence interval.
type ForecastPoint struct {
	Value float64
	Lower float64
	Upper float64
}

// Forecast generates a multi-step forecast with 95% confidence intervals.
// Forecasts are on the original value scale.
func (m *Model) Forecast(steps int) ([]ForecastPoint, error) {
	return m.ForecastWithConfidence(steps, 0.95)
}

// ForecastWithConfidence generates a multi-step forecast at the given
// confidence level.
func (m *Model) ForecastWithConfidence(steps int, confidence float64) ([]ForecastPoint, error) {
	if !m.fitted {
		return nil, errors.New("sarimax: model must be fitted before forecasting")
	}
	if steps < 1 {
		return nil, errors.New("sarimax: steps must be at least 1")
	}
	if confidence <= 0 || confidence >= 1 {
		confidence = 0.95
	}

	y := m.diffData.Values
	n := len(y)

	extY := make([]float64, n+steps)
	copy(extY, y)
	extResiduals := make([]float64, n+steps)
	copy(extResiduals, m.residuals)

	// Future residuals have zero expectation, so MA terms only see
	// residuals from the observed range.
	for h := 0; h < steps; h++ {
		t := n + h
		extY[t] = m.forecastDiffed(extY, extResiduals, t, n)
		extResiduals[t] = 0
	}

	forecasts := make([]float64, steps)
	copy(forecasts, extY[n:])
	forecasts = m.integrate(forecasts)

	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile((1 + confidence) / 2)

	d := m.Order.D
	sd := m.Seasonal.D
	period := m.Seasonal.Period

	out := make([]ForecastPoint, steps)
	for h := 0; h < steps; h++ {
		se := math.Sqrt(m.Variance)

		// Forecast variance grows with horizon for integrated series.
		growth := 1.0
		if d > 0 {
			growth *= math.Sqrt(float64(h + 1))
		}
		if sd > 0 && period > 0 {
			growth *= math.Sqrt(float64(h/period + 1))
		}
		se *= growth

		out[h] = ForecastPoint{
			Value: forecasts[h],
			Lower: forecasts[h] - z*se,
			Upper: forecasts[h] + z*se,
		}
	}
	return out, nil
}

// forecastDiffed predicts the differenced series at index t, restricting
// MA terms to residuals before index limit.
func (m *Model) forecastDiffed(y, residuals []float64, t, limit int) float64 {
	period := m.Seasonal.Period
	pred := m.Intercept

	for i := 0; i < m.Order.P && t-i-1 >= 0; i++ {
		pred += m.ARCoeffs[i] * (y[t-i-1] - m.Intercept)
	}
	for i := 0; i < m.Seasonal.P; i++ {
		lag := (i + 1) * period
		if t-lag >= 0 {
			pred += m.SARCoeffs[i] * (y[t-lag] - m.Intercept)
		}
	}
	for i := 0; i < m.Order.Q && t-i-1 >= 0 && t-i-1 < limit; i++ {
		pred += m.MACoeffs[i] * residuals[t-i-1]
	}
	for i := 0; i < m.Seasonal.Q; i++ {
		lag := (i + 1) * period
		if t-lag >= 0 && t-lag < limit {
			pred += m.SMACoeffs[i] * residuals[t-lag]
		}
	}
	return pred
}

// integrate undoes differencing so forecasts land on the original scale.
// Fit applies non-seasonal differencing first, then seasonal; integration
// runs in reverse: undo seasonal, then non-seasonal.
func (m *Model) integrate(forecasts []float64) []float64 {
	d := m.Order.D
	sd := m.Seasonal.D
	period := m.Seasonal.Period
	original := m.data.Values
	n := len(original)

	result := make([]float64, len(forecasts))
	copy(result, forecasts)

	// Non-seasonally differenced series, needed for seasonal integration.
	nonSeasonalDiff := original
	for i := 0; i < d; i++ {
		if len(nonSeasonalDiff) <= 1 {
			break
		}
		next := make([]float64, len(nonSeasonalDiff)-1)
		for j := 1; j < len(nonSeasonalDiff); j++ {
			next[j-1] = nonSeasonalDiff[j] - nonSeasonalDiff[j-1]
		}
		nonSeasonalDiff = next
	}

	if sd > 0 && period > 0 {
		nDiff := len(nonSeasonalDiff)
		for i := 0; i < sd; i++ {
			for j := 0; j < len(result); j++ {
				if j < period {
					idx := nDiff - period + j
					if idx >= 0 && idx < nDiff {
						result[j] += nonSeasonalDiff[idx]
					}
				} else {
					result[j] += result[j-period]
				}
			}
		}
	}

	for i := 0; i < d; i++ {
		lastVal := original[n-1]
		for j := 0; j < len(result); j++ {
			if j == 0 {
				result[j] += lastVal
			} else {
				result[j] += result[j-1]
			}
		}
	}

	return result
}

// PredictInSample returns one-step-ahead in-sample predictions on the
// original value scale, aligned index-wise with the training series. The
// first DiffOffset() entries are undefined post-differencing and carry the
// observed values; callers computing accuracy must skip them.
func (m *Model) PredictInSample() []float64 {
	if !m.fitted {
		return nil
	}

	y := m.data.Values
	z := m.diffData.Values
	offset := m.DiffOffset()

	out := make([]float64, len(y))
	copy(out, y[:min(offset, len(y))])

	// The differenced value z[t-offset] equals y[t] minus a linear
	// combination of earlier observed values, so the one-step prediction
	// of y[t] is the predicted difference plus that same combination.
	for t := offset; t < len(y); t++ {
		k := t - offset
		if k < len(m.fittedVals) && k < len(z) {
			out[t] = y[t] - z[k] + m.fittedVals[k]
		} else {
			out[t] = y[t]
		}
	}
	return out
}

// Summary describes a fitted model.
type Summary struct {
	Order     Order
	Seasonal  SeasonalOrder
	ARCoeffs  []float64
	MACoeffs  []float64
	SARCoeffs []float64
	SMACoeffs []float64
	Intercept float64
	Variance  float64
	AIC       float64
	AICc      float64
	BIC       float64
	LogLik    float64
	NObs      int
	LjungBox  *stats.LjungBoxResult

	// SuggestedP and SuggestedQ are the AR and MA orders hinted by the
	// PACF and ACF of the differenced series, for comparison with the
	// fitted order.
	SuggestedP int
	SuggestedQ int
}

// Summary returns a summary of the fitted model, including a Ljung-Box
// test on the residuals.
func (m *Model) Summary() *Summary {
	if !m.fitted {
		return nil
	}

	residSeries := timeseries.New(m.residuals)
	fitdf := m.Order.P + m.Order.Q + m.Seasonal.P + m.Seasonal.Q
	lb := stats.LjungBox(residSeries, 10, fitdf)

	suggestedP, suggestedQ := suggestOrders(m.diffData)

	return &Summary{
		Order:      m.Order,
		Seasonal:   m.Seasonal,
		ARCoeffs:   m.ARCoeffs,
		MACoeffs:   m.MACoeffs,
		SARCoeffs:  m.SARCoeffs,
		SMACoeffs:  m.SMACoeffs,
		Intercept:  m.Intercept,
		Variance:   m.Variance,
		AIC:        m.AIC,
		AICc:       m.AICc,
		BIC:        m.BIC,
		LogLik:     m.LogLik,
		NObs:       m.data.Len(),
		LjungBox:   lb,
		SuggestedP: suggestedP,
		SuggestedQ: suggestedQ,
	}
}

// suggestOrders derives Box-Jenkins order hints from the differenced
// series: the AR hint counts leading PACF lags outside the 2/sqrt(n)
// significance band, the MA hint does the same with the ACF.
func suggestOrders(diffed *timeseries.Series) (p, q int) {
	n := diffed.Len()
	if n < 10 {
		return 0, 0
	}

	maxLag := 5
	if maxLag > n/4 {
		maxLag = n / 4
	}
	threshold := 2.0 / math.Sqrt(float64(n))

	pacf := stats.PACF(diffed, maxLag)
	for k := 1; pacf != nil && k < len(pacf); k++ {
		if math.Abs(pacf[k]) <= threshold {
			break
		}
		p = k
	}

	acf := stats.ACF(diffed, maxLag)
	for k := 1; acf != nil && k < len(acf); k++ {
		if math.Abs(acf[k]) <= threshold {
			break
		}
		q = k
	}
	return p, q
}
