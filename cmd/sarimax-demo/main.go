// Command sarimax-demo fits an auto-selected SARIMAX model to a CSV time
// series, reports holdout accuracy and writes the forecast as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelforge/sarimax/config"
	"github.com/modelforge/sarimax/logging"
	"github.com/modelforge/sarimax/sarimax"
	"github.com/modelforge/sarimax/timeseries"
	"github.com/modelforge/sarimax/trainer"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
)

// output is the JSON export shape.
type output struct {
	Order                string                  `json:"order"`
	SeasonalityConfirmed bool                    `json:"seasonality_confirmed"`
	SearchScore          float64                 `json:"search_score"`
	StaticRMSE           float64                 `json:"static_rmse"`
	DynamicRMSE          float64                 `json:"dynamic_rmse"`
	NormalizedRMSE       float64                 `json:"normalized_rmse"`
	Forecast             []trainer.ForecastFrame `json:"forecast"`
}

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	dataPath := flag.String("data", "", "CSV file with the input series (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil && *dataPath != "" {
		cfg = config.DefaultConfig(*dataPath)
		err = nil
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dataPath != "" {
		cfg.Data.Path = *dataPath
	}

	logger, err := logging.NewFromSettings(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("sarimax demo starting", "version", Version, "commit", GitCommit)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	series, err := loadSeries(cfg.Data)
	if err != nil {
		return fmt.Errorf("load series: %w", err)
	}
	logger.Info("series loaded",
		"path", cfg.Data.Path, "observations", series.Len(),
		"mean", series.Mean(), "std", series.Std())

	tr := trainer.New(trainer.Config{
		Horizon:        cfg.Training.Horizon,
		Metric:         cfg.Training.ParsedMetric(),
		PMax:           cfg.Training.PMax,
		DMax:           cfg.Training.DMax,
		QMax:           cfg.Training.QMax,
		Seasonal:       cfg.Training.Seasonal,
		SeasonalPeriod: cfg.Training.SeasonalPeriod,
		Workers:        cfg.Training.Workers,
		Confidence:     cfg.Training.Confidence,
	}, nil, logger)

	start := time.Now()
	model, frames, report, err := tr.Run(ctx, series)
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	if model == nil {
		logger.Warn("no viable model for this series", "elapsed", time.Since(start))
		return nil
	}

	logger.Info("model selected",
		"order", formatOrder(report),
		"seasonality_confirmed", report.SeasonalityConfirmed,
		"score", report.SearchScore,
		"static_rmse", report.StaticRMSE,
		"dynamic_rmse", report.DynamicRMSE,
		"normalized_rmse", report.NormalizedRMSE,
		"elapsed", time.Since(start))

	printSummary(model)
	for _, f := range frames {
		fmt.Printf("  %s  %10.4f  [%10.4f, %10.4f]\n",
			f.Timestamp.Format("2006-01-02"), f.Value, f.Lower, f.Upper)
	}

	if cfg.Output.Path == "" {
		return nil
	}
	return export(cfg.Output, report, frames, logger)
}

func loadSeries(dc config.DataConfig) (*timeseries.Series, error) {
	opts := timeseries.DefaultCSVOptions()
	opts.ValueColumn = dc.ValueColumn
	if dc.TimestampColumn != "" {
		opts.DateColumn = dc.TimestampColumn
	}
	if dc.TimestampFormat != "" {
		opts.DateFormat = dc.TimestampFormat
	}
	if dc.Delimiter != "" {
		opts.Delimiter = rune(dc.Delimiter[0])
	}
	return timeseries.LoadCSV(dc.Path, opts)
}

func printSummary(model *sarimax.Model) {
	s := model.Summary()
	if s == nil {
		return
	}
	fmt.Printf("SARIMAX(%d,%d,%d)", s.Order.P, s.Order.D, s.Order.Q)
	if s.Seasonal.Enabled() {
		fmt.Printf("(%d,%d,%d)[%d]", s.Seasonal.P, s.Seasonal.D, s.Seasonal.Q, s.Seasonal.Period)
	}
	fmt.Printf("  n=%d\n", s.NObs)
	fmt.Printf("  AIC=%.2f  AICc=%.2f  BIC=%.2f  LogLik=%.2f  sigma2=%.4f\n",
		s.AIC, s.AICc, s.BIC, s.LogLik, s.Variance)
	if len(s.ARCoeffs) > 0 {
		fmt.Printf("  AR:  %v\n", s.ARCoeffs)
	}
	if len(s.MACoeffs) > 0 {
		fmt.Printf("  MA:  %v\n", s.MACoeffs)
	}
	if len(s.SARCoeffs) > 0 {
		fmt.Printf("  SAR: %v\n", s.SARCoeffs)
	}
	if len(s.SMACoeffs) > 0 {
		fmt.Printf("  SMA: %v\n", s.SMACoeffs)
	}
	if s.LjungBox != nil {
		fmt.Printf("  Ljung-Box(10): Q=%.3f p=%.3f\n", s.LjungBox.Statistic, s.LjungBox.PValue)
	}
	fmt.Printf("  ACF/PACF suggested: (%d,%d,%d)\n", s.SuggestedP, s.Order.D, s.SuggestedQ)
}

func formatOrder(r trainer.Report) string {
	if r.Seasonal.Enabled() {
		return fmt.Sprintf("(%d,%d,%d)(%d,%d,%d)[%d]",
			r.Order.P, r.Order.D, r.Order.Q,
			r.Seasonal.P, r.Seasonal.D, r.Seasonal.Q, r.Seasonal.Period)
	}
	return fmt.Sprintf("(%d,%d,%d)", r.Order.P, r.Order.D, r.Order.Q)
}

func export(oc config.OutputConfig, report trainer.Report, frames []trainer.ForecastFrame, logger *logging.Logger) error {
	out := output{
		Order:                formatOrder(report),
		SeasonalityConfirmed: report.SeasonalityConfirmed,
		SearchScore:          report.SearchScore,
		StaticRMSE:           report.StaticRMSE,
		DynamicRMSE:          report.DynamicRMSE,
		NormalizedRMSE:       report.NormalizedRMSE,
		Forecast:             frames,
	}

	var data []byte
	var err error
	if oc.Pretty {
		data, err = json.MarshalIndent(out, "", "  ")
	} else {
		data, err = json.Marshal(out)
	}
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(oc.Path, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	logger.Info("results exported", "path", oc.Path)
	return nil
}
