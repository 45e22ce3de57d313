// Package sarimax implements SARIMAX model estimation by conditional sum
// of squares.
//
// A model is specified by a non-seasonal Order (p,d,q) and an optional
// SeasonalOrder (P,D,Q,s). Differencing is applied explicitly from d and D;
// forecasts and in-sample predictions are integrated back to the original
// value scale, so accuracy figures are directly comparable across order
// specifications.
//
// # Basic Usage
//
//	var est sarimax.CSSEstimator
//	model, err := est.Fit(series, sarimax.Order{P: 1, D: 1, Q: 1}, sarimax.SeasonalOrder{})
//	if err != nil {
//	    // *sarimax.EstimationError: the order could not be estimated
//	}
//
//	points, _ := model.Forecast(12)           // point forecast + 95% CI
//	fitted := model.PredictInSample()          // original scale, skip DiffOffset() points
//	score := model.Score(sarimax.MetricAIC)    // lower is better
//
// Estimation failures are reported as *EstimationError so callers running
// a grid search can skip unviable candidates without aborting.
package sarimax
