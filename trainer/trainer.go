// Package trainer orchestrates the end-to-end model selection flow: split
// the series, search for the best order, fit the final model, and score
// its forecasts against the holdout.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/modelforge/sarimax/evaluate"
	"github.com/modelforge/sarimax/logging"
	"github.com/modelforge/sarimax/ordersearch"
	"github.com/modelforge/sarimax/sarimax"
	"github.com/modelforge/sarimax/timeseries"
)

// ErrNotTrained indicates Predict was called before a successful Run.
var ErrNotTrained = errors.New("trainer: model has not been trained")

// Config holds the trainer's settings.
type Config struct {
	Horizon int            // Forecast horizon; also the holdout length
	Metric  sarimax.Metric // Information criterion for the order search

	PMax int
	DMax int
	QMax int

	Seasonal       bool
	SeasonalPeriod int

	Workers    int     // Parallel candidate fits in the search; <=1 is sequential
	Confidence float64 // Forecast confidence level; 0 means 0.95
}

// ForecastFrame is one step of the out-of-sample forecast.
type ForecastFrame struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Lower     float64   `json:"lower"`
	Upper     float64   `json:"upper"`
}

// Report summarizes a training run. A run whose final fit failed carries
// +Inf in every RMSE field; callers must check for that sentinel before
// trusting the results.
type Report struct {
	Order                sarimax.Order
	Seasonal             sarimax.SeasonalOrder
	SeasonalityConfirmed bool
	SearchScore          float64

	StaticRMSE     float64
	DynamicRMSE    float64
	NormalizedRMSE float64
}

// Failed reports whether the run ended in the failed-fit sentinel.
func (r Report) Failed() bool {
	return math.IsInf(r.DynamicRMSE, 1)
}

// Trainer runs the selection and evaluation pipeline.
type Trainer struct {
	cfg      Config
	est      sarimax.Estimator
	searcher *ordersearch.Searcher
	log      *logging.Logger

	model   *sarimax.Model
	horizon int
}

// New creates a Trainer. A nil estimator defaults to the CSS estimator; a
// nil logger disables narration.
func New(cfg Config, est sarimax.Estimator, log *logging.Logger) *Trainer {
	if est == nil {
		est = sarimax.CSSEstimator{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Trainer{
		cfg:      cfg,
		est:      est,
		searcher: ordersearch.New(est, log),
		log:      log,
	}
}

// Run executes the full pipeline on the series. The holdout (the last
// Horizon points) is never seen by the order search or the final fit.
//
// A final fit that fails numerical estimation does not return an error:
// the result is the sentinel (nil model, nil frames, all-Inf report), so
// callers always get a usable, checkable value back.
func (t *Trainer) Run(ctx context.Context, series *timeseries.Series) (*sarimax.Model, []ForecastFrame, Report, error) {
	if t.cfg.Horizon < 1 {
		return nil, nil, Report{}, errors.New("trainer: horizon must be at least 1")
	}

	train, test, err := series.Split(t.cfg.Horizon)
	if err != nil {
		return nil, nil, Report{}, fmt.Errorf("trainer: %w", err)
	}
	t.log.Info("series split",
		"train", train.Len(),
		"test", test.Len(),
		"horizon", t.cfg.Horizon)

	searchCfg := ordersearch.Config{
		Metric:  t.cfg.Metric,
		PMax:    t.cfg.PMax,
		DMax:    t.cfg.DMax,
		QMax:    t.cfg.QMax,
		Workers: t.cfg.Workers,
	}

	nonSeasonal, err := t.searcher.Search(ctx, train, searchCfg)
	if err != nil {
		return nil, nil, Report{}, err
	}
	if !nonSeasonal.Viable() {
		t.log.Warn("non-seasonal search found no viable model")
	}

	report := Report{
		Order:       nonSeasonal.Order,
		SearchScore: nonSeasonal.Score,
	}

	if t.cfg.Seasonal {
		seasonalCfg := searchCfg
		seasonalCfg.Seasonal = true
		seasonalCfg.SeasonalPeriod = t.cfg.SeasonalPeriod
		seasonalCfg.FixedOrder = nonSeasonal.Order
		seasonalCfg.Baseline = nonSeasonal.Score
		seasonalCfg.HasBaseline = true

		seasonal, err := t.searcher.Search(ctx, train, seasonalCfg)
		if err != nil {
			return nil, nil, Report{}, err
		}

		report.SeasonalityConfirmed = seasonal.SeasonalityConfirmed
		if seasonal.SeasonalityConfirmed {
			report.Seasonal = seasonal.Seasonal
			report.SearchScore = seasonal.Score
		} else {
			t.log.Info("seasonality not confirmed, keeping non-seasonal order",
				"seasonal_score", seasonal.Score,
				"baseline", nonSeasonal.Score)
		}
	}

	model, err := t.est.Fit(train, report.Order, report.Seasonal)
	if err != nil {
		var estErr *sarimax.EstimationError
		if errors.As(err, &estErr) {
			// Deliberate fallback: hand the caller the sentinel instead
			// of propagating, mirroring the search's failure tolerance.
			t.log.Error("final fit failed, returning sentinel", "error", err)
			report.StaticRMSE = math.Inf(1)
			report.DynamicRMSE = math.Inf(1)
			report.NormalizedRMSE = math.Inf(1)
			return nil, nil, report, nil
		}
		return nil, nil, Report{}, err
	}
	t.model = model
	t.horizon = t.cfg.Horizon

	staticPreds := model.PredictInSample()
	staticRMSE, err := evaluate.StaticRMSE(train.Values, staticPreds, model.DiffOffset())
	if err != nil {
		return nil, nil, Report{}, err
	}
	report.StaticRMSE = staticRMSE

	points, err := model.ForecastWithConfidence(t.cfg.Horizon, t.cfg.Confidence)
	if err != nil {
		return nil, nil, Report{}, err
	}

	frames := buildFrames(train, points)
	forecastValues := make([]float64, len(points))
	for i, p := range points {
		forecastValues[i] = p.Value
	}

	dynamicRMSE, normalized, err := evaluate.DynamicRMSE(test.Values, forecastValues, train)
	if err != nil {
		return nil, nil, Report{}, err
	}
	report.DynamicRMSE = dynamicRMSE
	report.NormalizedRMSE = normalized

	t.log.Info("training run complete",
		"order", report.Order.String(),
		"seasonal", report.Seasonal.String(),
		"static_rmse", report.StaticRMSE,
		"dynamic_rmse", report.DynamicRMSE,
		"normalized_rmse", report.NormalizedRMSE)

	return model, frames, report, nil
}

// Predict produces a forecast from the last trained model. A horizon of 0
// reuses the horizon configured at training time.
func (t *Trainer) Predict(horizon int) ([]sarimax.ForecastPoint, error) {
	if t.model == nil {
		return nil, ErrNotTrained
	}
	if horizon <= 0 {
		horizon = t.horizon
	}
	return t.model.Forecast(horizon)
}

// buildFrames attaches timestamps to forecast points, continuing the
// training series' spacing past its last observation.
func buildFrames(train *timeseries.Series, points []sarimax.ForecastPoint) []ForecastFrame {
	step := train.Step()
	last := train.LastTimestamp()

	frames := make([]ForecastFrame, len(points))
	for i, p := range points {
		frames[i] = ForecastFrame{
			Timestamp: last.Add(time.Duration(i+1) * step),
			Value:     p.Value,
			Lower:     p.Lower,
			Upper:     p.Upper,
		}
	}
	return frames
}
