package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for ResourceScout
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Search    SearchConfig    `mapstructure:"search"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server and session settings
type ServerConfig struct {
	Address       string        `mapstructure:"address"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	MaxUploadSize int64         `mapstructure:"max_upload_size"`
}

func (s ServerConfig) Validate() error {
	if strings.TrimSpace(s.JWTSecret) == "" {
		return fmt.Errorf("server.jwt_secret is required")
	}
	if s.SessionTTL <= 0 {
		return fmt.Errorf("server.session_ttl must be > 0")
	}
	return nil
}

// LLMConfig contains LLM provider configurations
type LLMConfig struct {
	Default   string                 `mapstructure:"default"`
	Providers map[string]LLMProvider `mapstructure:"providers"`
}

// LLMProvider represents a single LLM provider configuration
type LLMProvider struct {
	Type        string        `mapstructure:"type"` // gemini or openai
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	VisionModel string        `mapstructure:"vision_model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	MaxRetries  int           `mapstructure:"max_retries"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

func (l LLMConfig) Validate() error {
	if len(l.Providers) == 0 {
		return fmt.Errorf("llm.providers must declare at least one provider")
	}
	if l.Default != "" {
		if _, ok := l.Providers[l.Default]; !ok {
			return fmt.Errorf("llm.default %q not present in llm.providers", l.Default)
		}
	}
	return nil
}

// SearchConfig contains web/video search and fallback settings
type SearchConfig struct {
	WebProvider     string              `mapstructure:"web_provider"`   // duckduckgo or serper
	VideoProvider   string              `mapstructure:"video_provider"` // youtube
	SerperAPIKey    string              `mapstructure:"serper_api_key"`
	Region          string              `mapstructure:"region"`
	MaxWebResults   int                 `mapstructure:"max_web_results"`
	MaxVideoResults int                 `mapstructure:"max_video_results"`
	Timeout         time.Duration       `mapstructure:"timeout"`
	TrustedSites    map[string][]string `mapstructure:"trusted_sites"`
	Fallback        FallbackConfig      `mapstructure:"fallback"`
	EnrichPreviews  bool                `mapstructure:"enrich_previews"`
}

// FallbackConfig declares the deterministic deep-link substitutes used when
// live search yields nothing.
type FallbackConfig struct {
	MinLinks int                `mapstructure:"min_links"`
	Domains  []FallbackTemplate `mapstructure:"domains"`
}

// FallbackTemplate is one trusted domain plus its search URL template. The
// template receives the URL-escaped query via %s.
type FallbackTemplate struct {
	Domain   string `mapstructure:"domain"`
	Title    string `mapstructure:"title"`
	Template string `mapstructure:"template"`
}

func (s SearchConfig) Validate() error {
	if s.MaxWebResults <= 0 || s.MaxVideoResults <= 0 {
		return fmt.Errorf("search.max_web_results and search.max_video_results must be > 0")
	}
	if s.WebProvider == "serper" && s.SerperAPIKey == "" {
		return fmt.Errorf("search.serper_api_key is required for the serper provider")
	}
	if len(s.Fallback.Domains) == 0 {
		return fmt.Errorf("search.fallback.domains must not be empty")
	}
	for _, d := range s.Fallback.Domains {
		if d.Domain == "" || !strings.Contains(d.Template, "%s") {
			return fmt.Errorf("search.fallback.domains entries need a domain and a %%s template")
		}
	}
	return nil
}

// CacheConfig selects and tunes the result cache backend
type CacheConfig struct {
	Backend string        `mapstructure:"backend"` // memory or redis
	TTL     time.Duration `mapstructure:"ttl"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig contains redis connection settings
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c CacheConfig) Validate() error {
	switch c.Backend {
	case "", "memory":
	case "redis":
		if c.Redis.Host == "" || c.Redis.Port == "" {
			return fmt.Errorf("cache.redis.host and cache.redis.port are required for the redis backend")
		}
	default:
		return fmt.Errorf("unsupported cache backend: %s", c.Backend)
	}
	return nil
}

// TelemetryConfig contains monitoring settings
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig reads configuration from file and environment. Environment
// variables use the SCOUT_ prefix with dots replaced by underscores
// (e.g. SCOUT_SERVER_ADDRESS).
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.default_timeout", 60*time.Second)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.session_ttl", time.Hour)
	v.SetDefault("server.max_upload_size", int64(16<<20))
	v.SetDefault("search.web_provider", "duckduckgo")
	v.SetDefault("search.video_provider", "youtube")
	v.SetDefault("search.region", "us-en")
	v.SetDefault("search.max_web_results", 4)
	v.SetDefault("search.max_video_results", 2)
	v.SetDefault("search.timeout", 15*time.Second)
	v.SetDefault("search.trusted_sites", DefaultTrustedSites)
	v.SetDefault("search.fallback.min_links", 2)
	v.SetDefault("search.fallback.domains", defaultFallbackDomains)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", time.Hour)

	if path == "" {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// config file is optional; defaults plus env must be enough
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Server.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.LLM.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Search.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Cache.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
