// Package timeseries provides time series data structures and utilities.
//
// A Series pairs strictly increasing timestamps with float64 values and is
// treated as immutable: differencing, slicing, and splitting all return new
// Series values.
//
// # Basic Usage
//
//	series := timeseries.New(values)
//	train, test, err := series.Split(12)
//
//	diffed := series.Diff()           // first difference
//	seasonal := series.SeasonalDiff(12)
//
// CSV loading is available for simple header-based files:
//
//	opts := timeseries.DefaultCSVOptions()
//	opts.ValueColumn = "passengers"
//	series, err := timeseries.LoadCSV("air.csv", opts)
package timeseries
