package sarimax

import (
	"math"

	"github.com/modelforge/sarimax/stats"
	"github.com/modelforge/sarimax/timeseries"
)

// Estimator fits a model of the given order specification to a series.
// Implementations must not mutate the series.
type Estimator interface {
	Fit(series *timeseries.Series, order Order, seasonal SeasonalOrder) (*Model, error)
}

// CSSEstimator fits SARIMAX models by conditional sum of squares. It is
// stateless and safe for concurrent use.
type CSSEstimator struct{}

// Fit fits a model with the given orders. Differencing is applied
// explicitly from the order's d and D; forecasts and in-sample predictions
// are integrated back to the original value scale.
func (CSSEstimator) Fit(series *timeseries.Series, order Order, seasonal SeasonalOrder) (*Model, error) {
	m := &Model{
		Order:     order,
		Seasonal:  seasonal,
		ARCoeffs:  make([]float64, order.P),
		MACoeffs:  make([]float64, order.Q),
		SARCoeffs: make([]float64, seasonal.P),
		SMACoeffs: make([]float64, seasonal.Q),
	}
	if err := m.fit(series); err != nil {
		return nil, err
	}
	return m, nil
}

// Model represents a fitted SARIMAX model.
type Model struct {
	Order    Order
	Seasonal SeasonalOrder

	ARCoeffs  []float64 // Non-seasonal AR coefficients (phi)
	MACoeffs  []float64 // Non-seasonal MA coefficients (theta)
	SARCoeffs []float64 // Seasonal AR coefficients
	SMACoeffs []float64 // Seasonal MA coefficients
	Intercept float64
	Variance  float64 // Residual variance

	AIC    float64
	AICc   float64
	BIC    float64
	LogLik float64

	fitted     bool
	data       *timeseries.Series
	diffData   *timeseries.Series
	residuals  []float64
	fittedVals []float64
}

// Zero residual variance (a perfect fit) must still yield a finite,
// strongly favorable information criterion.
const minVariance = 1e-12

func (m *Model) fit(series *timeseries.Series) error {
	if (m.Seasonal.P > 0 || m.Seasonal.D > 0 || m.Seasonal.Q > 0) && m.Seasonal.Period < 2 {
		return estimationErr(m.Order, m.Seasonal, "seasonal order requires period > 1")
	}

	minLen := m.Order.P + m.Order.D + m.Order.Q + 10
	if m.Seasonal.Enabled() {
		minLen += m.Seasonal.Period*(m.Seasonal.P+m.Seasonal.D+m.Seasonal.Q) + 10
	}
	if series.Len() < minLen {
		return estimationErr(m.Order, m.Seasonal, "insufficient data points for the specified order")
	}

	m.data = series

	diffSeries := series
	for i := 0; i < m.Order.D; i++ {
		diffSeries = diffSeries.Diff()
		if diffSeries.Len() == 0 {
			return estimationErr(m.Order, m.Seasonal, "differencing resulted in empty series")
		}
	}
	for i := 0; i < m.Seasonal.D; i++ {
		diffSeries = diffSeries.SeasonalDiff(m.Seasonal.Period)
		if diffSeries.Len() == 0 {
			return estimationErr(m.Order, m.Seasonal, "seasonal differencing resulted in empty series")
		}
	}
	m.diffData = diffSeries

	if err := m.fitCSS(); err != nil {
		return err
	}

	m.calculateIC()
	m.fitted = true
	return nil
}

// fitCSS initializes parameters and runs the conditional sum of squares
// optimization on the differenced series.
func (m *Model) fitCSS() error {
	y := m.diffData.Values
	n := len(y)
	p := m.Order.P
	q := m.Order.Q
	sp := m.Seasonal.P
	sq := m.Seasonal.Q
	period := m.Seasonal.Period

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(n)
	m.Intercept = mean

	if p == 0 && q == 0 && sp == 0 && sq == 0 {
		// White noise model around the mean.
		m.residuals = make([]float64, n)
		m.fittedVals = make([]float64, n)
		sse := 0.0
		for i, v := range y {
			m.fittedVals[i] = m.Intercept
			m.residuals[i] = v - m.Intercept
			sse += m.residuals[i] * m.residuals[i]
		}
		if n > 1 {
			m.Variance = sse / float64(n-1)
		}
		return nil
	}

	if p > 0 {
		acf := stats.ACF(m.diffData, p)
		if acf != nil {
			if phi := yuleWalker(acf, p); phi != nil {
				m.ARCoeffs = phi
			}
		}
	}
	if sp > 0 {
		acf := stats.ACF(m.diffData, sp*period)
		if acf != nil {
			for i := 0; i < sp; i++ {
				idx := (i + 1) * period
				if idx < len(acf) {
					m.SARCoeffs[i] = acf[idx] * 0.5
				}
			}
		}
	}
	for i := range m.MACoeffs {
		m.MACoeffs[i] = 0.1
	}
	for i := range m.SMACoeffs {
		m.SMACoeffs[i] = 0.1
	}

	return m.optimizeCSS(y)
}

// predictDiffed computes the one-step prediction of the differenced series
// at index t given the history in y and residuals.
func (m *Model) predictDiffed(y, residuals []float64, t int) float64 {
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
	for i := 0; i < m.Order.Q && t-i-1 >= 0; i++ {
		pred += m.MACoeffs[i] * residuals[t-i-1]
	}
	for i := 0; i < m.Seasonal.Q; i++ {
		lag := (i + 1) * period
		if t-lag >= 0 {
			pred += m.SMACoeffs[i] * residuals[t-lag]
		}
	}
	return pred
}

// optimizeCSS minimizes the conditional sum of squares with gradient
// descent, momentum, and learning-rate decay, tracking the best solution
// seen.
func (m *Model) optimizeCSS(y []float64) error {
	n := len(y)
	p := m.Order.P
	q := m.Order.Q
	sp := m.Seasonal.P
	sq := m.Seasonal.Q
	period := m.Seasonal.Period

	maxIter := 200
	tolerance := 1e-8
	learningRate := 0.005
	momentum := 0.9
	decay := 0.99

	arMomentum := make([]float64, p)
	maMomentum := make([]float64, q)
	sarMomentum := make([]float64, sp)
	smaMomentum := make([]float64, sq)

	startIdx := max(max(p, q), max(sp*period, sq*period))
	if startIdx >= n-10 {
		startIdx = 0
	}

	bestSSE := math.Inf(1)
	bestARCoeffs := make([]float64, p)
	bestMACoeffs := make([]float64, q)
	bestSARCoeffs := make([]float64, sp)
	bestSMACoeffs := make([]float64, sq)
	noImproveCount := 0

	for iter := 0; iter < maxIter; iter++ {
		residuals := make([]float64, n)
		currentSSE := 0.0

		for t := startIdx; t < n; t++ {
			residuals[t] = y[t] - m.predictDiffed(y, residuals, t)
			currentSSE += residuals[t] * residuals[t]
		}

		if math.IsNaN(currentSSE) || math.IsInf(currentSSE, 0) {
			if math.IsInf(bestSSE, 1) {
				return estimationErr(m.Order, m.Seasonal, "optimization produced a non-finite objective")
			}
			break
		}

		if currentSSE < bestSSE {
			bestSSE = currentSSE
			copy(bestARCoeffs, m.ARCoeffs)
			copy(bestMACoeffs, m.MACoeffs)
			copy(bestSARCoeffs, m.SARCoeffs)
			copy(bestSMACoeffs, m.SMACoeffs)
			noImproveCount = 0
		} else {
			noImproveCount++
		}

		if noImproveCount > 20 {
			break
		}

		arGrad := make([]float64, p)
		maGrad := make([]float64, q)
		sarGrad := make([]float64, sp)
		smaGrad := make([]float64, sq)

		for t := startIdx; t < n; t++ {
			for i := 0; i < p && t-i-1 >= 0; i++ {
				arGrad[i] -= 2 * residuals[t] * (y[t-i-1] - m.Intercept)
			}
			for i := 0; i < sp; i++ {
				lag := (i + 1) * period
				if t-lag >= 0 {
					sarGrad[i] -= 2 * residuals[t] * (y[t-lag] - m.Intercept)
				}
			}
			for i := 0; i < q && t-i-1 >= 0; i++ {
				maGrad[i] -= 2 * residuals[t] * residuals[t-i-1]
			}
			for i := 0; i < sq; i++ {
				lag := (i + 1) * period
				if t-lag >= 0 {
					smaGrad[i] -= 2 * residuals[t] * residuals[t-lag]
				}
			}
		}

		for i := 0; i < p; i++ {
			arMomentum[i] = momentum*arMomentum[i] + learningRate*arGrad[i]/float64(n)
			m.ARCoeffs[i] = clamp(m.ARCoeffs[i]-arMomentum[i], -0.99, 0.99)
		}
		for i := 0; i < sp; i++ {
			sarMomentum[i] = momentum*sarMomentum[i] + learningRate*sarGrad[i]/float64(n)
			m.SARCoeffs[i] = clamp(m.SARCoeffs[i]-sarMomentum[i], -0.99, 0.99)
		}
		for i := 0; i < q; i++ {
			maMomentum[i] = momentum*maMomentum[i] + learningRate*maGrad[i]/float64(n)
			m.MACoeffs[i] = clamp(m.MACoeffs[i]-maMomentum[i], -0.99, 0.99)
		}
		for i := 0; i < sq; i++ {
			smaMomentum[i] = momentum*smaMomentum[i] + learningRate*smaGrad[i]/float64(n)
			m.SMACoeffs[i] = clamp(m.SMACoeffs[i]-smaMomentum[i], -0.99, 0.99)
		}

		learningRate *= decay

		if iter > 0 && math.Abs(currentSSE-bestSSE) < tolerance {
			break
		}
	}

	copy(m.ARCoeffs, bestARCoeffs)
	copy(m.MACoeffs, bestMACoeffs)
	copy(m.SARCoeffs, bestSARCoeffs)
	copy(m.SMACoeffs, bestSMACoeffs)

	// Final residuals and fitted values.
	m.residuals = make([]float64, n)
	m.fittedVals = make([]float64, n)
	for t := 0; t < n; t++ {
		pred := m.predictDiffed(y, m.residuals, t)
		m.fittedVals[t] = pred
		m.residuals[t] = y[t] - pred
	}

	sse := 0.0
	count := 0
	for t := startIdx; t < n; t++ {
		sse += m.residuals[t] * m.residuals[t]
		count++
	}
	if math.IsNaN(sse) || math.IsInf(sse, 0) {
		return estimationErr(m.Order, m.Seasonal, "residuals are non-finite")
	}

	numParams := p + q + sp + sq + 1
	if count > numParams {
		m.Variance = sse / float64(count-numParams)
	} else if count > 0 {
		m.Variance = sse / float64(count)
	}

	return nil
}

// calculateIC computes AIC, AICc, and BIC from the residuals.
func (m *Model) calculateIC() {
	n := len(m.residuals)
	k := m.Order.P + m.Order.Q + m.Seasonal.P + m.Seasonal.Q + 1

	sse := 0.0
	for _, r := range m.residuals {
		sse += r * r
	}

	variance := m.Variance
	if variance < minVariance {
		variance = minVariance
	}
	m.LogLik = -float64(n)/2*math.Log(2*math.Pi) - float64(n)/2*math.Log(variance) - sse/(2*variance)

	m.AIC = -2*m.LogLik + 2*float64(k)

	kf := float64(k)
	nf := float64(n)
	if nf-kf-1 > 0 {
		m.AICc = m.AIC + 2*kf*(kf+1)/(nf-kf-1)
	} else {
		m.AICc = math.Inf(1)
	}

	m.BIC = -2*m.LogLik + kf*math.Log(nf)
}

// Score returns the model's value for the given information criterion.
// Lower is better. Unknown metrics fall back to AIC.
func (m *Model) Score(metric Metric) float64 {
	switch metric {
	case MetricBIC:
		return m.BIC
	case MetricAICc:
		return m.AICc
	default:
		return m.AIC
	}
}

// DiffOffset returns the number of leading in-sample predictions that are
// undefined after differencing: d + D*period.
func (m *Model) DiffOffset() int {
	return m.Order.D + m.Seasonal.D*m.Seasonal.Period
}

// Residuals returns a copy of the model residuals on the differenced scale.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	result := make([]float64, len(m.residuals))
	copy(result, m.residuals)
	return result
}

// FittedValues returns a copy of the fitted values on the differenced scale.
func (m *Model) FittedValues() []float64 {
	if !m.fitted {
		return nil
	}
	result := make([]float64, len(m.fittedVals))
	copy(result, m.fittedVals)
	return result
}

func clamp(v, lower, upper float64) float64 {
	if v < lower {
		return lower
	}
	if v > upper {
		return upper
	}
	return v
}
