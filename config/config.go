package config

import (
	"fmt"

	"github.com/modelforge/sarimax/sarimax"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Training TrainingConfig `mapstructure:"training"`
	Output   OutputConfig   `mapstructure:"output"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DataConfig describes the input series source
type DataConfig struct {
	Path            string `mapstructure:"path"`             // CSV file path
	ValueColumn     string `mapstructure:"value_column"`     // Column holding the observed values
	TimestampColumn string `mapstructure:"timestamp_column"` // Optional timestamp column
	TimestampFormat string `mapstructure:"timestamp_format"` // Go time layout for the timestamp column
	Delimiter       string `mapstructure:"delimiter"`        // Field delimiter, single character
	HasHeader       bool   `mapstructure:"has_header"`
}

// TrainingConfig controls the order search and evaluation
type TrainingConfig struct {
	Horizon        int     `mapstructure:"horizon"`         // Forecast horizon; also sizes the holdout
	Metric         string  `mapstructure:"metric"`          // aic, aicc or bic
	PMax           int     `mapstructure:"p_max"`           // Upper bound for the AR order scan
	DMax           int     `mapstructure:"d_max"`           // Upper bound for differencing
	QMax           int     `mapstructure:"q_max"`           // Upper bound for the MA order scan
	Seasonal       bool    `mapstructure:"seasonal"`        // Run the seasonal second pass
	SeasonalPeriod int     `mapstructure:"seasonal_period"` // Observations per seasonal cycle
	Workers        int     `mapstructure:"workers"`         // Parallel candidate fits; 0 means sequential
	Confidence     float64 `mapstructure:"confidence"`      // Forecast interval confidence level
}

// OutputConfig controls result export
type OutputConfig struct {
	Path   string `mapstructure:"path"`   // JSON report destination; empty disables export
	Pretty bool   `mapstructure:"pretty"` // Indent the JSON output
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return fmt.Errorf("data.path is required")
	}
	if len(c.Data.Delimiter) > 1 {
		return fmt.Errorf("data.delimiter must be a single character, got %q", c.Data.Delimiter)
	}

	t := c.Training
	if t.Horizon < 1 {
		return fmt.Errorf("training.horizon must be at least 1, got %d", t.Horizon)
	}
	if _, err := sarimax.ParseMetric(t.Metric); err != nil {
		return fmt.Errorf("training.metric: %w", err)
	}
	if t.PMax < 0 || t.DMax < 0 || t.QMax < 0 {
		return fmt.Errorf("training order bounds must be non-negative, got p_max=%d d_max=%d q_max=%d",
			t.PMax, t.DMax, t.QMax)
	}
	if t.Seasonal && t.SeasonalPeriod < 2 {
		return fmt.Errorf("training.seasonal_period must be at least 2 when seasonal search is enabled, got %d",
			t.SeasonalPeriod)
	}
	if t.Workers < 0 {
		return fmt.Errorf("training.workers must be non-negative, got %d", t.Workers)
	}
	if t.Confidence <= 0 || t.Confidence >= 1 {
		return fmt.Errorf("training.confidence must be in (0, 1), got %g", t.Confidence)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	return nil
}

// ParsedMetric returns the parsed selection metric. Call Validate first.
func (t TrainingConfig) ParsedMetric() sarimax.Metric {
	m, _ := sarimax.ParseMetric(t.Metric)
	return m
}
