package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Places    PlacesConfig    `yaml:"places" mapstructure:"places"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Weather   WeatherConfig   `yaml:"weather" mapstructure:"weather"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// PlacesConfig holds the place search/detail provider credentials.
type PlacesConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AnthropicConfig holds the narration provider settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// WeatherConfig holds the weather provider settings.
type WeatherConfig struct {
	Key          string `yaml:"key" mapstructure:"key"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	CacheTTLSecs int    `yaml:"cache_ttl_secs" mapstructure:"cache_ttl_secs"`
}

// PipelineConfig configures discovery pipeline behavior.
type PipelineConfig struct {
	MaxGems         int `yaml:"max_gems" mapstructure:"max_gems"`
	MinReviews      int `yaml:"min_reviews" mapstructure:"min_reviews"`
	ItemConcurrency int `yaml:"item_concurrency" mapstructure:"item_concurrency"`
}

// ServerConfig configures the HTTP front door.
type ServerConfig struct {
	Port           int    `yaml:"port" mapstructure:"port"`
	AllowedOrigins string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// Origins returns the parsed CORS allow-list.
func (s ServerConfig) Origins() []string {
	parts := strings.Split(s.AllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
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
	v.SetEnvPrefix("GEMFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.allowed_origins", "http://localhost:3000")
	v.SetDefault("places.base_url", "https://maps.googleapis.com/maps/api")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("weather.base_url", "https://dataservice.accuweather.com")
	v.SetDefault("weather.timeout_secs", 30)
	v.SetDefault("weather.cache_ttl_secs", 3600)
	v.SetDefault("pipeline.max_gems", 3)
	v.SetDefault("pipeline.min_reviews", 10)
	v.SetDefault("pipeline.item_concurrency", 8)

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

// ValidateCredentials checks that every required provider credential is set.
// A missing credential is a startup error; the process must not serve
// requests without one.
func (c *Config) ValidateCredentials() error {
	if c.Places.Key == "" {
		return eris.New("config: missing places API key (GEMFINDER_PLACES_KEY)")
	}
	if c.Anthropic.Key == "" {
		return eris.New("config: missing anthropic API key (GEMFINDER_ANTHROPIC_KEY)")
	}
	if c.Weather.Key == "" {
		return eris.New("config: missing weather API key (GEMFINDER_WEATHER_KEY)")
	}
	return nil
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
