package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultDatasetURL is the NYC Open Data air quality export.
const DefaultDatasetURL = "https://data.cityofnewyork.us/resource/c3uy-2p5r.csv"

// Config holds the full application configuration.
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset" mapstructure:"dataset"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DatasetConfig configures where the dataset comes from and how hard to try.
type DatasetConfig struct {
	URL              string `yaml:"url" mapstructure:"url"`
	FetchTimeoutSecs int    `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	MaxAttempts      int    `yaml:"max_attempts" mapstructure:"max_attempts"`
	RetryBackoffMs   int    `yaml:"retry_backoff_ms" mapstructure:"retry_backoff_ms"`
	UserAgent        string `yaml:"user_agent" mapstructure:"user_agent"`
}

// FetchTimeout returns the per-attempt fetch timeout.
func (c DatasetConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSecs) * time.Second
}

// RetryBackoff returns the fixed delay between fetch attempts.
func (c DatasetConfig) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMs) * time.Millisecond
}

// DashboardConfig configures chart defaults and figure retention.
type DashboardConfig struct {
	DefaultPollutant string `yaml:"default_pollutant" mapstructure:"default_pollutant"`
	FigureCacheSize  int    `yaml:"figure_cache_size" mapstructure:"figure_cache_size"`
	FigureTTLMinutes int    `yaml:"figure_ttl_minutes" mapstructure:"figure_ttl_minutes"`
}

// FigureTTL returns how long a retained detail figure stays addressable.
func (c DashboardConfig) FigureTTL() time.Duration {
	return time.Duration(c.FigureTTLMinutes) * time.Minute
}

// ServerConfig configures the dashboard HTTP server.
type ServerConfig struct {
	Port                int      `yaml:"port" mapstructure:"port"`
	Debug               bool     `yaml:"debug" mapstructure:"debug"`
	CORSOrigins         []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	EventsPerSecond     float64  `yaml:"events_per_second" mapstructure:"events_per_second"`
	EventsBurst         int      `yaml:"events_burst" mapstructure:"events_burst"`
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// ShutdownTimeout returns the graceful shutdown deadline.
func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSecs) * time.Second
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AQDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("dataset.url", DefaultDatasetURL)
	v.SetDefault("dataset.fetch_timeout_secs", 60)
	v.SetDefault("dataset.max_attempts", 3)
	v.SetDefault("dataset.retry_backoff_ms", 2000)
	v.SetDefault("dataset.user_agent", "aq-dashboard/1.0")
	v.SetDefault("dashboard.default_pollutant", "Fine particles (PM 2.5)")
	v.SetDefault("dashboard.figure_cache_size", 256)
	v.SetDefault("dashboard.figure_ttl_minutes", 30)
	v.SetDefault("server.port", 8050)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.events_per_second", 20.0)
	v.SetDefault("server.events_burst", 40)
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs. Mode is the command name.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
		if c.Server.EventsPerSecond <= 0 {
			problems = append(problems, "server.events_per_second must be > 0")
		}
		if c.Server.EventsBurst < 1 {
			problems = append(problems, "server.events_burst must be >= 1")
		}
		if c.Dashboard.FigureCacheSize < 1 {
			problems = append(problems, "dashboard.figure_cache_size must be >= 1")
		}
		if c.Dashboard.FigureTTLMinutes < 1 {
			problems = append(problems, "dashboard.figure_ttl_minutes must be >= 1")
		}
		problems = append(problems, c.validateDataset()...)
	case "load":
		problems = append(problems, c.validateDataset()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New(fmt.Sprintf("config: %s", strings.Join(problems, "; ")))
	}
	return nil
}

func (c *Config) validateDataset() []string {
	var problems []string
	if strings.TrimSpace(c.Dataset.URL) == "" {
		problems = append(problems, "dataset.url is required")
	}
	if c.Dataset.MaxAttempts < 2 {
		// at least one retry
		problems = append(problems, "dataset.max_attempts must be >= 2")
	}
	if c.Dataset.FetchTimeoutSecs <= 0 {
		problems = append(problems, "dataset.fetch_timeout_secs must be > 0")
	}
	if c.Dataset.RetryBackoffMs < 0 {
		problems = append(problems, "dataset.retry_backoff_ms must be >= 0")
	}
	return problems
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
