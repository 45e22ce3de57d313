package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	// Set defaults
	setDefaults(v)

	// Enable environment variable overrides
	v.SetEnvPrefix("SARIMAX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; use defaults
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Data defaults
	v.SetDefault("data.path", "")
	v.SetDefault("data.value_column", "value")
	v.SetDefault("data.delimiter", ",")
	v.SetDefault("data.has_header", true)

	// Training defaults
	v.SetDefault("training.horizon", 8)
	v.SetDefault("training.metric", "bic")
	v.SetDefault("training.p_max", 3)
	v.SetDefault("training.d_max", 1)
	v.SetDefault("training.q_max", 3)
	v.SetDefault("training.seasonal", false)
	v.SetDefault("training.seasonal_period", 12)
	v.SetDefault("training.workers", 0)
	v.SetDefault("training.confidence", 0.95)

	// Output defaults
	v.SetDefault("output.path", "")
	v.SetDefault("output.pretty", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// parseConfig parses viper config into Config struct
func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns default configuration with the given data path
func DefaultConfig(dataPath string) *Config {
	return &Config{
		Data: DataConfig{
			Path:        dataPath,
			ValueColumn: "value",
			Delimiter:   ",",
			HasHeader:   true,
		},
		Training: TrainingConfig{
			Horizon:        8,
			Metric:         "bic",
			PMax:           3,
			DMax:           1,
			QMax:           3,
			SeasonalPeriod: 12,
			Confidence:     0.95,
		},
		Output: OutputConfig{
			Pretty: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
