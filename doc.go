// Package sarimax provides automatic SARIMAX order selection, estimation
// and forecast evaluation for univariate time series.
//
// The module searches an (p,d,q) grid, optionally followed by a seasonal
// (P,D,Q,s) pass, selects the best candidate by an information criterion
// and scores the winner on a holdout split with static and dynamic RMSE.
//
// # Quick Start
//
// Run the full pipeline with the trainer:
//
//	series := timeseries.New(values)
//	tr := trainer.New(trainer.Config{
//		Horizon: 8,
//		Metric:  sarimax.MetricBIC,
//		PMax:    3, DMax: 1, QMax: 3,
//	}, nil, nil)
//	model, frames, report, err := tr.Run(ctx, series)
//
// Or fit a fixed order directly:
//
//	est := sarimax.CSSEstimator{}
//	model, err := est.Fit(series, sarimax.Order{P: 1, D: 1, Q: 1}, sarimax.SeasonalOrder{})
//	points, err := model.Forecast(10)
//
// # Packages
//
//   - timeseries: series container, differencing, splits and CSV loading
//   - stats: ACF, PACF and residual diagnostics
//   - sarimax: the conditional-sum-of-squares estimator and forecaster
//   - ordersearch: grid enumeration and candidate selection
//   - evaluate: RMSE, MAE and MAPE accuracy metrics
//   - trainer: end-to-end search, fit and holdout evaluation
//   - config, logging: application wiring for cmd/sarimax-demo
package sarimax
