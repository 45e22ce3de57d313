package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/modelforge/sarimax/sarimax"
)

func TestConfigValidation(t *testing.T) {
	valid := func() *Config { return DefaultConfig("series.csv") }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "default config should be valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing data path",
			mutate:  func(c *Config) { c.Data.Path = "" },
			wantErr: true,
		},
		{
			name:    "multi-character delimiter",
			mutate:  func(c *Config) { c.Data.Delimiter = ";;" },
			wantErr: true,
		},
		{
			name:    "zero horizon",
			mutate:  func(c *Config) { c.Training.Horizon = 0 },
			wantErr: true,
		},
		{
			name:    "unknown metric",
			mutate:  func(c *Config) { c.Training.Metric = "rmse" },
			wantErr: true,
		},
		{
			name:    "negative order bound",
			mutate:  func(c *Config) { c.Training.PMax = -1 },
			wantErr: true,
		},
		{
			name:    "seasonal without period",
			mutate:  func(c *Config) { c.Training.Seasonal = true; c.Training.SeasonalPeriod = 1 },
			wantErr: true,
		},
		{
			name:    "seasonal with period",
			mutate:  func(c *Config) { c.Training.Seasonal = true; c.Training.SeasonalPeriod = 12 },
			wantErr: false,
		},
		{
			name:    "confidence out of range",
			mutate:  func(c *Config) { c.Training.Confidence = 1.5 },
			wantErr: true,
		},
		{
			name:    "bad logging format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	t.Setenv("SARIMAX_DATA_PATH", "series.csv")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Training.Metric != "bic" {
		t.Errorf("default metric = %q, want bic", cfg.Training.Metric)
	}
	if cfg.Training.Horizon != 8 {
		t.Errorf("default horizon = %d, want 8", cfg.Training.Horizon)
	}
	if cfg.Data.Path != "series.csv" {
		t.Errorf("env override path = %q, want series.csv", cfg.Data.Path)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
data:
  path: monthly.csv
  value_column: passengers
training:
  horizon: 12
  metric: aic
  p_max: 2
  d_max: 2
  q_max: 2
  seasonal: true
  seasonal_period: 12
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Data.Path != "monthly.csv" {
		t.Errorf("data.path = %q", cfg.Data.Path)
	}
	if cfg.Data.ValueColumn != "passengers" {
		t.Errorf("data.value_column = %q", cfg.Data.ValueColumn)
	}
	if !cfg.Training.Seasonal || cfg.Training.SeasonalPeriod != 12 {
		t.Errorf("seasonal settings not applied: %+v", cfg.Training)
	}
	if cfg.Training.ParsedMetric() != sarimax.MetricAIC {
		t.Errorf("metric = %v, want aic", cfg.Training.ParsedMetric())
	}
	if cfg.Training.Confidence != 0.95 {
		t.Errorf("confidence default = %g, want 0.95", cfg.Training.Confidence)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("training:\n  horizon: 0\ndata:\n  path: x.csv\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() with invalid horizon should fail validation")
	}
}
