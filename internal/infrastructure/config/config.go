package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Translator TranslatorConfig `mapstructure:"translator"`
	Fallback   FallbackConfig   `mapstructure:"fallback"`
	Data       DataConfig       `mapstructure:"data"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	LogLevel   string           `mapstructure:"log_level"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Env      string `mapstructure:"env"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Version  string `mapstructure:"version"`
	Name     string `mapstructure:"name"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// RedisConfig holds the session-store backend settings.
// When disabled, sessions live in process memory.
type RedisConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Addr    string        `mapstructure:"addr"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// TranslatorConfig holds the Arabic→English translation collaborator settings
type TranslatorConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// FallbackConfig holds the LLM calorie-estimator collaborator settings
type FallbackConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// DataConfig holds the reference dataset paths
type DataConfig struct {
	DishesPath     string `mapstructure:"dishes_path"`
	FoundationPath string `mapstructure:"foundation_path"`
	SRLegacyPath   string `mapstructure:"sr_legacy_path"`
	MissingLogPath string `mapstructure:"missing_log_path"`
}

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig loads configuration from defaults, .env and environment
func LoadConfig() (*Config, error) {
	// .env is optional in production
	_ = godotenv.Load()

	setDefaults()

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// externally documented variables
	viper.BindEnv("translator.api_key", "TRANSLATOR_API_KEY")
	viper.BindEnv("translator.enabled", "TRANSLATOR_ENABLED")
	viper.BindEnv("fallback.api_key", "FALLBACK_API_KEY")
	viper.BindEnv("fallback.enabled", "FALLBACK_ENABLED")
	viper.BindEnv("fallback.model", "FALLBACK_MODEL")
	viper.BindEnv("redis.enabled", "REDIS_ENABLED")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskAPIKey hides all but the first and last 4 characters of a key
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func setDefaults() {
	// application
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.log_level", "info")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "calorie-chat")

	// server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// session store
	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.ttl", "24h")

	// translation collaborator
	viper.SetDefault("translator.enabled", false)
	viper.SetDefault("translator.base_url", "https://translation.googleapis.com/language/translate/v2")
	viper.SetDefault("translator.timeout", "10s")

	// LLM fallback collaborator
	viper.SetDefault("fallback.enabled", false)
	viper.SetDefault("fallback.base_url", "https://openrouter.ai/api/v1")
	viper.SetDefault("fallback.model", "deepseek/deepseek-chat")
	viper.SetDefault("fallback.max_tokens", 1000)
	viper.SetDefault("fallback.timeout", "60s")

	// datasets
	viper.SetDefault("data.dishes_path", "data/dishes.json")
	viper.SetDefault("data.foundation_path", "data/usda_foundation.json")
	viper.SetDefault("data.sr_legacy_path", "data/usda_sr_legacy.json")
	viper.SetDefault("data.missing_log_path", "data/missing_dishes.json")

	// rate limiting
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")
}

func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	if config.Redis.Enabled {
		if config.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required when redis is enabled")
		}
		if config.Redis.TTL <= 0 {
			return fmt.Errorf("invalid redis ttl")
		}
	}

	if config.Translator.Enabled && config.Translator.BaseURL == "" {
		return fmt.Errorf("translator base url is required when translator is enabled")
	}

	if config.Fallback.Enabled {
		if config.Fallback.BaseURL == "" {
			return fmt.Errorf("fallback base url is required when fallback is enabled")
		}
		if config.Fallback.Model == "" {
			return fmt.Errorf("fallback model is required when fallback is enabled")
		}
	}

	if config.Data.DishesPath == "" || config.Data.FoundationPath == "" || config.Data.SRLegacyPath == "" {
		return fmt.Errorf("dataset paths are required")
	}

	return nil
}
