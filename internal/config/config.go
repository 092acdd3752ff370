package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Jina      JinaConfig      `yaml:"jina" mapstructure:"jina"`
	Serper    SerperConfig    `yaml:"serper" mapstructure:"serper"`
	Firecrawl FirecrawlConfig `yaml:"firecrawl" mapstructure:"firecrawl"`
	Fetcher   FetcherConfig   `yaml:"fetcher" mapstructure:"fetcher"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Enrich    EnrichConfig    `yaml:"enrich" mapstructure:"enrich"`
	Dataset   DatasetConfig   `yaml:"dataset" mapstructure:"dataset"`
	Pricing   PricingConfig   `yaml:"pricing" mapstructure:"pricing"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // sqlite or postgres
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	Model         string `yaml:"model" mapstructure:"model"`
	FallbackModel string `yaml:"fallback_model" mapstructure:"fallback_model"`
	MaxTokens     int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	CacheSize     int    `yaml:"cache_size" mapstructure:"cache_size"`
	CacheTTLMins  int    `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
}

// JinaConfig holds Jina AI Reader settings.
type JinaConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	SearchBaseURL string `yaml:"search_base_url" mapstructure:"search_base_url"`
}

// SerperConfig holds serper.dev search API settings.
type SerperConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Country string `yaml:"country" mapstructure:"country"`
	MaxHits int    `yaml:"max_hits" mapstructure:"max_hits"`
}

// FirecrawlConfig holds Firecrawl API settings.
type FirecrawlConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FetcherConfig selects the page-fetch backend.
type FetcherConfig struct {
	Backend       string `yaml:"backend" mapstructure:"backend"` // jina or firecrawl
	CacheTTLHours int    `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
	RatePerSecond int    `yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// SearchConfig selects the web-search backend.
type SearchConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // serper or jina
}

// EnrichConfig configures the per-record enrichment pipeline.
type EnrichConfig struct {
	MaxFetchPerRecord   int    `yaml:"max_fetch_per_record" mapstructure:"max_fetch_per_record"`
	MaxContextChars     int    `yaml:"max_context_chars" mapstructure:"max_context_chars"`
	Concurrency         int    `yaml:"concurrency" mapstructure:"concurrency"`
	FetchParallelism    int    `yaml:"fetch_parallelism" mapstructure:"fetch_parallelism"`
	PerFetchTimeoutSecs int    `yaml:"per_fetch_timeout_secs" mapstructure:"per_fetch_timeout_secs"`
	LLMTimeoutSecs      int    `yaml:"llm_timeout_secs" mapstructure:"llm_timeout_secs"`
	CampaignFocus       string `yaml:"campaign_focus" mapstructure:"campaign_focus"`
	SenderName          string `yaml:"sender_name" mapstructure:"sender_name"`
	ValueProposition    string `yaml:"value_proposition" mapstructure:"value_proposition"`
}

// FetchTimeout returns the per-fetch timeout as a duration.
func (e EnrichConfig) FetchTimeout() time.Duration {
	return time.Duration(e.PerFetchTimeoutSecs) * time.Second
}

// LLMTimeout returns the LLM-call timeout as a duration.
func (e EnrichConfig) LLMTimeout() time.Duration {
	return time.Duration(e.LLMTimeoutSecs) * time.Second
}

// DatasetConfig configures input parsing.
type DatasetConfig struct {
	MappingFile string `yaml:"mapping_file" mapstructure:"mapping_file"`
}

// PricingConfig holds per-provider pricing rates.
type PricingConfig struct {
	Anthropic map[string]ModelPricing `yaml:"anthropic" mapstructure:"anthropic"`
	Jina      JinaPricing             `yaml:"jina" mapstructure:"jina"`
	Serper    SerperPricing           `yaml:"serper" mapstructure:"serper"`
	Firecrawl FirecrawlPricing        `yaml:"firecrawl" mapstructure:"firecrawl"`
}

// ModelPricing holds per-model token pricing (USD per million tokens).
type ModelPricing struct {
	Input         float64 `yaml:"input" mapstructure:"input"`
	Output        float64 `yaml:"output" mapstructure:"output"`
	CacheWriteMul float64 `yaml:"cache_write_mul" mapstructure:"cache_write_mul"`
	CacheReadMul  float64 `yaml:"cache_read_mul" mapstructure:"cache_read_mul"`
}

// JinaPricing holds Jina Reader pricing.
type JinaPricing struct {
	PerMTok float64 `yaml:"per_mtok" mapstructure:"per_mtok"`
}

// SerperPricing holds serper.dev pricing.
type SerperPricing struct {
	PerQuery float64 `yaml:"per_query" mapstructure:"per_query"`
}

// FirecrawlPricing holds Firecrawl pricing.
type FirecrawlPricing struct {
	PerScrape float64 `yaml:"per_scrape" mapstructure:"per_scrape"`
}

// ServerConfig configures the HTTP server.
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
	v.SetEnvPrefix("ENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

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

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "enrich.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)

	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.fallback_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("anthropic.cache_size", 256)
	v.SetDefault("anthropic.cache_ttl_mins", 60)

	v.SetDefault("jina.base_url", "https://r.jina.ai")
	v.SetDefault("jina.search_base_url", "https://s.jina.ai")
	v.SetDefault("serper.base_url", "https://google.serper.dev")
	v.SetDefault("serper.country", "us")
	v.SetDefault("serper.max_hits", 20)
	v.SetDefault("firecrawl.base_url", "https://api.firecrawl.dev/v1")

	v.SetDefault("fetcher.backend", "jina")
	v.SetDefault("fetcher.cache_ttl_hours", 24)
	v.SetDefault("fetcher.rate_per_second", 2)
	v.SetDefault("search.backend", "serper")

	v.SetDefault("enrich.max_fetch_per_record", 8)
	v.SetDefault("enrich.max_context_chars", 80000)
	v.SetDefault("enrich.concurrency", 3)
	v.SetDefault("enrich.fetch_parallelism", 3)
	v.SetDefault("enrich.per_fetch_timeout_secs", 20)
	v.SetDefault("enrich.llm_timeout_secs", 45)
	v.SetDefault("enrich.campaign_focus", "recent_activity")
	v.SetDefault("enrich.sender_name", "Digital Marketing Partner")
	v.SetDefault("enrich.value_proposition", "Digital presence modernization for dealerships")

	v.SetDefault("pricing.jina.per_mtok", 0.02)
	v.SetDefault("pricing.serper.per_query", 0.001)
	v.SetDefault("pricing.firecrawl.per_scrape", 0.006)
}

// Validate checks that the configuration required for enrichment is present.
// Missing LLM credentials are the one fatal pipeline-level error.
func (c *Config) Validate() error {
	if c.Anthropic.Key == "" {
		return eris.New("config: anthropic key is required (set ENRICH_ANTHROPIC_KEY)")
	}
	switch c.Fetcher.Backend {
	case "jina":
		if c.Jina.Key == "" {
			return eris.New("config: jina key is required for the jina fetcher backend")
		}
	case "firecrawl":
		if c.Firecrawl.Key == "" {
			return eris.New("config: firecrawl key is required for the firecrawl fetcher backend")
		}
	default:
		return eris.Errorf("config: unknown fetcher backend %q", c.Fetcher.Backend)
	}
	switch c.Search.Backend {
	case "serper":
		if c.Serper.Key == "" {
			return eris.New("config: serper key is required for the serper search backend")
		}
	case "jina":
		if c.Jina.Key == "" {
			return eris.New("config: jina key is required for the jina search backend")
		}
	default:
		return eris.Errorf("config: unknown search backend %q", c.Search.Backend)
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
