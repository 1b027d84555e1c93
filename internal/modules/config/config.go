package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
	portENV           = "PORT"
	logLevelENV       = "LOG_LEVEL"
)

// Config ...
type Config struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
	DB       string         `mapstructure:"db_dsn"`
	Service  ServiceConfig  `mapstructure:"service"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Scanner  ScannerConfig  `mapstructure:"scanner"`
	Market   MarketConfig   `mapstructure:"market"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
	// polling | webhook
	Mode        string `mapstructure:"mode"`
	WebhookURL  string `mapstructure:"webhook_url"`
	WebhookPath string `mapstructure:"webhook_path"`
}

type ServiceConfig struct {
	Name string `mapstructure:"name"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (s ServiceConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ScannerConfig bounds the per-request fan-out.
type ScannerConfig struct {
	MaxInFlight    int           `mapstructure:"max_in_flight"`
	TaskTimeout    time.Duration `mapstructure:"task_timeout"`
	TopN           int           `mapstructure:"top_n"`
	SkippedPreview int           `mapstructure:"skipped_preview"`
	// Minimum candles an analysis needs before it is scored.
	MinCandles int `mapstructure:"min_candles"`
}

type MarketConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	RPS              float64       `mapstructure:"rps"`
	Burst            int           `mapstructure:"burst"`
	BreakerFailures  uint32        `mapstructure:"breaker_failures"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown"`
	BreakerHalfOpen  uint32        `mapstructure:"breaker_half_open"`
	SymbolSuffix     string        `mapstructure:"symbol_suffix"`
	UserAgent        string        `mapstructure:"user_agent"`
	UniverseTable    string        `mapstructure:"universe_table"`
	UniverseFallback bool          `mapstructure:"universe_fallback"`
}

// RedisConfig enables the candle cache when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
	Prefix   string        `mapstructure:"prefix"`
}

type TracingConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// NewConfig loads .env, then configs/$CONFIG_FILE (values_local.yaml by default).
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	path := configFileName
	if !filepath.IsAbs(path) && filepath.Dir(path) == "." {
		path = filepath.Join("configs", configFileName)
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Load reads one config file; a missing file is not an error, defaults and env still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnv(&cfg)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.mode", "polling")
	v.SetDefault("telegram.webhook_path", "/telegram/webhook")

	v.SetDefault("service.name", "scan_bot")
	v.SetDefault("service.host", "0.0.0.0")
	v.SetDefault("service.port", 8080)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("scanner.max_in_flight", 8)
	v.SetDefault("scanner.task_timeout", "20s")
	v.SetDefault("scanner.top_n", 10)
	v.SetDefault("scanner.skipped_preview", 12)
	v.SetDefault("scanner.min_candles", 30)

	v.SetDefault("market.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("market.timeout", "15s")
	v.SetDefault("market.rps", 5.0)
	v.SetDefault("market.burst", 5)
	v.SetDefault("market.breaker_failures", 20)
	v.SetDefault("market.breaker_cooldown", "30s")
	v.SetDefault("market.breaker_half_open", 2)
	v.SetDefault("market.symbol_suffix", ".IS")
	v.SetDefault("market.user_agent", "Mozilla/5.0 (compatible; scan_bot/1.0)")
	v.SetDefault("market.universe_table", "bist_symbols")
	v.SetDefault("market.universe_fallback", true)

	v.SetDefault("redis.ttl", "2m")
	v.SetDefault("redis.prefix", "scan_bot")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.host", "localhost")
	v.SetDefault("tracing.port", 6831)
}

// applyEnv keeps the deployment-style variable names working (Render sets PORT).
func applyEnv(cfg *Config) {
	if token := os.Getenv(tokenTelegramENV); token != "" {
		cfg.Telegram.Token = token
	}
	if dsn := os.Getenv(databaseDSN); dsn != "" {
		cfg.DB = dsn
	}
	if port := intFromEnv(portENV, 0); port > 0 {
		cfg.Service.Port = port
	}
	if lvl := os.Getenv(logLevelENV); lvl != "" {
		cfg.Logging.Level = strings.ToLower(lvl)
	}
}

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	switch c.Telegram.Mode {
	case "polling":
	case "webhook":
		if c.Telegram.WebhookURL == "" {
			return fmt.Errorf("telegram.webhook_url is required in webhook mode")
		}
	default:
		return fmt.Errorf("telegram.mode must be one of: polling, webhook")
	}

	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("service.port must be between 1 and 65535")
	}

	if c.Scanner.MaxInFlight < 1 {
		return fmt.Errorf("scanner.max_in_flight must be at least 1")
	}
	if c.Scanner.TaskTimeout <= 0 {
		return fmt.Errorf("scanner.task_timeout must be positive")
	}
	if c.Scanner.TopN < 1 {
		return fmt.Errorf("scanner.top_n must be at least 1")
	}
	if c.Scanner.SkippedPreview < 0 {
		return fmt.Errorf("scanner.skipped_preview must not be negative")
	}

	if c.Market.BaseURL == "" {
		return fmt.Errorf("market.base_url is required")
	}
	if c.Market.RPS <= 0 {
		return fmt.Errorf("market.rps must be positive")
	}
	if c.Market.Burst < 1 {
		return fmt.Errorf("market.burst must be at least 1")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, console")
	}

	return nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
