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
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Serp      SerpConfig      `yaml:"serp" mapstructure:"serp"`
	Render    RenderConfig    `yaml:"render" mapstructure:"render"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	EANSearch EANSearchConfig `yaml:"eansearch" mapstructure:"eansearch"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the cache database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// SerpConfig holds search-provider settings for URL discovery.
type SerpConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// RenderConfig holds headless-render service settings.
type RenderConfig struct {
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	Locale     string `yaml:"locale" mapstructure:"locale"`
	WaitMillis int    `yaml:"wait_ms" mapstructure:"wait_ms"`
}

// FetchConfig configures the degraded plain-HTTP fetcher.
type FetchConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AnthropicConfig holds Anthropic API settings for the assisted extractor.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// EANSearchConfig holds the optional barcode-lookup enrichment settings.
type EANSearchConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ExtractConfig configures extraction behavior.
type ExtractConfig struct {
	Strategy      string `yaml:"strategy" mapstructure:"strategy"` // "heuristic" or "assisted"
	MaxRowsPerEAN int    `yaml:"max_rows_per_ean" mapstructure:"max_rows_per_ean"`
	MaxURLsPerEAN int    `yaml:"max_urls_per_ean" mapstructure:"max_urls_per_ean"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentEANs int `yaml:"max_concurrent_eans" mapstructure:"max_concurrent_eans"`
}

// CacheConfig configures result-cache maintenance.
type CacheConfig struct {
	RetentionDays int `yaml:"retention_days" mapstructure:"retention_days"`
}

// ServerConfig configures the scrape server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("PRICESCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "cache.sqlite3")
	// Secret keys default to empty so env-only configuration reaches
	// Unmarshal without a config file.
	v.SetDefault("serp.key", "")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("eansearch.key", "")
	v.SetDefault("serp.base_url", "https://serpapi.com")
	v.SetDefault("render.base_url", "http://localhost:3000")
	v.SetDefault("render.locale", "de-DE")
	v.SetDefault("render.wait_ms", 1500)
	v.SetDefault("fetch.timeout_secs", 25)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("eansearch.base_url", "https://api.ean-search.org")
	v.SetDefault("extract.strategy", "heuristic")
	v.SetDefault("extract.max_rows_per_ean", 6)
	v.SetDefault("extract.max_urls_per_ean", 15)
	v.SetDefault("batch.max_concurrent_eans", 2)
	v.SetDefault("cache.retention_days", 30)
	v.SetDefault("server.port", 8080)
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

// Validate checks the settings required to run the pipeline.
func (c *Config) Validate() error {
	if c.Serp.Key == "" {
		return eris.New("config: serp.key is required (PRICESCAN_SERP_KEY)")
	}
	switch c.Extract.Strategy {
	case "heuristic":
	case "assisted":
		if c.Anthropic.Key == "" {
			return eris.New("config: anthropic.key is required for the assisted strategy")
		}
	default:
		return eris.Errorf("config: unknown extract strategy %q", c.Extract.Strategy)
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
