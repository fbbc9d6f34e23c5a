package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rewired-gh/eventoracle/internal/recommend"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration
type Config struct {
	Source    SourceConfig    `mapstructure:"source"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// Catalog source kinds
const (
	SourceFile   = "file"
	SourceSQLite = "sqlite"
	SourceHTTP   = "http"
)

// SourceConfig describes where the event catalog is loaded from
type SourceConfig struct {
	Kind            string        `mapstructure:"kind"`
	Path            string        `mapstructure:"path"`
	URL             string        `mapstructure:"url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	RetryDelayBase  time.Duration `mapstructure:"retry_delay_base"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// RecommendConfig holds the ranking pipeline tuning
type RecommendConfig struct {
	Limit            int                     `mapstructure:"limit"`
	FallbackRadiusKm float64                 `mapstructure:"fallback_radius_km"`
	StartMultiplier  float64                 `mapstructure:"start_multiplier"`
	ExpansionFactor  float64                 `mapstructure:"expansion_factor"`
	CeilingKm        float64                 `mapstructure:"ceiling_km"`
	NearbyEnabled    bool                    `mapstructure:"nearby_enabled"`
	NearbyRadiusKm   float64                 `mapstructure:"nearby_radius_km"`
	Workers          int                     `mapstructure:"workers"`
	Weights          recommend.PolicyWeights `mapstructure:"weights"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	Path       string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set config file
	v.SetConfigFile(path)

	// Set defaults
	setDefaults(v)

	// Enable environment variable override, e.g. EVENTORACLE_TELEGRAM_BOT_TOKEN
	v.SetEnvPrefix("EVENTORACLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Source defaults
	v.SetDefault("source.kind", SourceFile)
	v.SetDefault("source.path", "./data/catalog.json")
	v.SetDefault("source.timeout", "30s")
	v.SetDefault("source.max_retries", 3)
	v.SetDefault("source.retry_delay_base", "1s")
	v.SetDefault("source.refresh_interval", "1h")

	// Recommend defaults
	v.SetDefault("recommend.limit", 5)
	v.SetDefault("recommend.fallback_radius_km", recommend.DefaultFallbackRadiusKm)
	v.SetDefault("recommend.start_multiplier", recommend.DefaultStartMultiplier)
	v.SetDefault("recommend.expansion_factor", recommend.DefaultExpansionFactor)
	v.SetDefault("recommend.ceiling_km", recommend.DefaultCeilingKm)
	v.SetDefault("recommend.nearby_enabled", false)
	v.SetDefault("recommend.nearby_radius_km", recommend.DefaultNearbyRadiusKm)
	v.SetDefault("recommend.workers", 4)

	w := recommend.DefaultPolicyWeights()
	setWeightDefaults(v, "recommend.weights.no_preference", w.NoPreference)
	setWeightDefaults(v, "recommend.weights.preference_no_similarity", w.PreferenceNoSimilarity)
	setWeightDefaults(v, "recommend.weights.preference_and_similarity", w.PreferenceAndSimilarity)

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Metrics defaults
	v.SetDefault("metrics.listen_addr", "")
	v.SetDefault("metrics.path", "/metrics")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func setWeightDefaults(v *viper.Viper, prefix string, w recommend.Weights) {
	v.SetDefault(prefix+".preference", w.Preference)
	v.SetDefault(prefix+".distance", w.Distance)
	v.SetDefault(prefix+".similarity", w.Similarity)
	v.SetDefault(prefix+".popularity", w.Popularity)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Source config
	switch c.Source.Kind {
	case SourceFile, SourceSQLite:
		if c.Source.Path == "" {
			return fmt.Errorf("source.path is required for source kind %q", c.Source.Kind)
		}
	case SourceHTTP:
		if c.Source.URL == "" {
			return fmt.Errorf("source.url is required for source kind %q", c.Source.Kind)
		}
		if c.Source.Timeout <= 0 {
			return fmt.Errorf("source.timeout must be positive")
		}
	default:
		return fmt.Errorf("source.kind must be one of: file, sqlite, http")
	}
	if c.Source.RefreshInterval < 1*time.Minute {
		return fmt.Errorf("source.refresh_interval must be at least 1 minute")
	}

	// Validate Recommend config
	if c.Recommend.Limit < 1 {
		return fmt.Errorf("recommend.limit must be at least 1")
	}
	if c.Recommend.Workers < 1 {
		return fmt.Errorf("recommend.workers must be at least 1")
	}
	if c.Recommend.NearbyEnabled && c.Recommend.NearbyRadiusKm <= 0 {
		return fmt.Errorf("recommend.nearby_radius_km must be positive when nearby expansion is enabled")
	}
	if err := c.Recommend.Options().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}

// Options converts the recommend section into pipeline options.
func (r RecommendConfig) Options() recommend.Options {
	return recommend.Options{
		FallbackRadiusKm: r.FallbackRadiusKm,
		StartMultiplier:  r.StartMultiplier,
		ExpansionFactor:  r.ExpansionFactor,
		CeilingKm:        r.CeilingKm,
		Weights:          r.Weights,
	}
}

// BatchOptions converts the recommend section into batch options.
func (r RecommendConfig) BatchOptions() recommend.BatchOptions {
	return recommend.BatchOptions{
		Limit:          r.Limit,
		Workers:        r.Workers,
		Nearby:         r.NearbyEnabled,
		NearbyRadiusKm: r.NearbyRadiusKm,
	}
}
