package stats

import (
	"math"
	"testing"

	"github.com/modelforge/sarimax/timeseries"
)

func TestACFLagZero(t *testing.T) {
	values := []float64{1, 3, 2, 5, 4, 6, 5, 8, 7, 9}
	series := timeseries.New(values)

	acf := ACF(series, 3)
	if acf == nil {
		t.Fatal("ACF returned nil")
	}
	if len(acf) != 4 {
		t.Fatalf("Expected 4 ACF values, got %d", len(acf))
	}
	if math.Abs(acf[0]-1.0) > 1e-12 {
		t.Errorf("ACF at lag 0 should be 1, got %f", acf[0])
	}
}

func TestACFConstantSeries(t *testing.T) {
	series := timeseries.New([]float64{5, 5, 5, 5, 5})
	if ACF(series, 2) != nil {
		t.Error("Expected nil ACF for zero-variance series")
	}
}

func TestACFPositiveCorrelation(t *testing.T) {
	// Strongly trending series: lag-1 autocorrelation should be high.
	n := 50
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i)
	}
	series := timeseries.New(values)

	acf := ACF(series, 1)
	if acf == nil {
		t.Fatal("ACF returned nil")
	}
	if acf[1] < 0.8 {
		t.Errorf("Expected high lag-1 ACF for trend, got %f", acf[1])
	}
}

func TestPACF(t *testing.T) {
	// AR(1) process driven by hash-style pseudo-random innovations, so
	// the only autocorrelation structure is the lag-1 dependence and the
	// PACF cuts off after lag 1.
	n := 200
	phi := 0.7
	values := make([]float64, n)
	values[0] = 0
	for i := 1; i < n; i++ {
		innovation := math.Sin(float64(i)*12.9898) * 43758.5453
		innovation -= math.Floor(innovation)
		innovation -= 0.5
		values[i] = phi*values[i-1] + innovation
	}
	series := timeseries.New(values)

	pacf := PACF(series, 5)
	if pacf == nil {
		t.Fatal("PACF returned nil")
	}
	if math.Abs(pacf[0]-1.0) > 1e-12 {
		t.Errorf("PACF at lag 0 should be 1, got %f", pacf[0])
	}
	if pacf[1] < 0.4 {
		t.Errorf("Expected substantial lag-1 PACF for AR(1), got %f", pacf[1])
	}
	for lag := 3; lag <= 5; lag++ {
		if math.Abs(pacf[lag]) > 0.5 {
			t.Errorf("Expected small PACF at lag %d, got %f", lag, pacf[lag])
		}
	}
}

func TestLjungBoxWhiteNoise(t *testing.T) {
	// Pseudo-random residuals with little structure.
	n := 100
	values := make([]float64, n)
	for i := range values {
		values[i] = math.Sin(float64(i)*12.9898) * 43758.5453
		values[i] -= math.Floor(values[i])
		values[i] -= 0.5
	}
	series := timeseries.New(values)

	result := LjungBox(series, 10, 0)
	if result == nil {
		t.Fatal("LjungBox returned nil")
	}
	if result.DOF != 10 {
		t.Errorf("Expected 10 degrees of freedom, got %d", result.DOF)
	}
	if result.PValue < 0 || result.PValue > 1 {
		t.Errorf("P-value out of range: %f", result.PValue)
	}
	t.Logf("White noise: Q=%f, p=%f", result.Statistic, result.PValue)
}

func TestLjungBoxAutocorrelated(t *testing.T) {
	// Strong trend: heavy autocorrelation, p-value should be near zero.
	n := 100
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i) * 0.5
	}
	series := timeseries.New(values)

	result := LjungBox(series, 10, 0)
	if result == nil {
		t.Fatal("LjungBox returned nil")
	}
	if result.PValue > 0.01 {
		t.Errorf("Expected near-zero p-value for trending series, got %f", result.PValue)
	}
}

func TestLjungBoxShortSeries(t *testing.T) {
	series := timeseries.New([]float64{1, 2, 3})
	if LjungBox(series, 5, 0) != nil {
		t.Error("Expected nil for series shorter than 10 points")
	}
}

func TestLjungBoxDOFFloor(t *testing.T) {
	n := 50
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i % 5)
	}
	series := timeseries.New(values)

	result := LjungBox(series, 3, 10)
	if result == nil {
		t.Fatal("LjungBox returned nil")
	}
	if result.DOF != 1 {
		t.Errorf("Expected DOF floored at 1, got %d", result.DOF)
	}
}
