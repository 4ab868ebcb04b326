package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"freight-rate-hub/internal/commission"
	"freight-rate-hub/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Logging    logging.Config   `mapstructure:"logging"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Ledger     LedgerConfig     `mapstructure:"ledger"`
	Providers  ProvidersConfig  `mapstructure:"providers"`
	Aggregator AggregatorConfig `mapstructure:"aggregator"`
	Commission CommissionConfig `mapstructure:"commission"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
	Alerting   AlertingConfig   `mapstructure:"alerting"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Export     ExportConfig     `mapstructure:"export"`
	HSCode     HSCodeConfig     `mapstructure:"hscode"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity for the postgres ledger backend.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LedgerConfig selects where commission records live.
type LedgerConfig struct {
	Backend string      `mapstructure:"backend"`
	Path    string      `mapstructure:"path"`
	Redis   RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

// ProvidersConfig lists the rate sources.
type ProvidersConfig struct {
	DefaultCountry string         `mapstructure:"default_country"`
	Shippo         ProviderConfig `mapstructure:"shippo"`
	SeaRates       ProviderConfig `mapstructure:"searates"`
	Sandbox        SandboxConfig  `mapstructure:"sandbox"`
}

// ProviderConfig is shared by the HTTP adapters.
type ProviderConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	UserAgent         string        `mapstructure:"user_agent"`
	// Mode selects the freight mode where the provider supports several.
	Mode string `mapstructure:"mode"`
}

// SandboxConfig enables the synthetic provider.
type SandboxConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// AggregatorConfig governs the quote fan-out.
type AggregatorConfig struct {
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
}

// CommissionRuleConfig is one provider's margin.
type CommissionRuleConfig struct {
	Percentage float64 `mapstructure:"percentage"`
	FixedFee   float64 `mapstructure:"fixed_fee"`
}

// CommissionConfig is the default rule plus per-provider overrides.
type CommissionConfig struct {
	Default   CommissionRuleConfig            `mapstructure:"default"`
	Providers map[string]CommissionRuleConfig `mapstructure:"providers"`
}

// SchedulerConfig governs the health monitor cadence.
type SchedulerConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	AlignToBucket bool          `mapstructure:"align_to_bucket"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
}

// AlertingConfig defines commission health alert routing.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Cooldown time.Duration  `mapstructure:"cooldown"`
	Channels []string       `mapstructure:"channels"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes the Telegram bot channel.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// MetricsConfig controls the Prometheus endpoint of the run command.
type MetricsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	ListenAddr string `mapstructure:"listen_addr"`
	Path       string `mapstructure:"path"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	TopLimit int `mapstructure:"top_limit"`
}

// HSCodeConfig configures the Gemini-backed HS code suggester.
type HSCodeConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	MaxSuggestions int           `mapstructure:"max_suggestions"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RATEHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "ratehub")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("ledger.backend", "file")
	v.SetDefault("ledger.path", "data/commissions.json")
	v.SetDefault("ledger.redis.addr", "localhost:6379")
	v.SetDefault("ledger.redis.key", "ratehub:commission_records")

	v.SetDefault("providers.default_country", "US")
	v.SetDefault("providers.shippo.enabled", true)
	v.SetDefault("providers.shippo.base_url", "https://api.goshippo.com")
	v.SetDefault("providers.shippo.request_timeout", "15s")
	v.SetDefault("providers.shippo.requests_per_second", 5.0)
	v.SetDefault("providers.shippo.user_agent", "ratehub/1.0")
	v.SetDefault("providers.searates.enabled", true)
	v.SetDefault("providers.searates.base_url", "https://www.searates.com/api/v1")
	v.SetDefault("providers.searates.request_timeout", "20s")
	v.SetDefault("providers.searates.requests_per_second", 2.0)
	v.SetDefault("providers.searates.user_agent", "ratehub/1.0")
	v.SetDefault("providers.searates.mode", "lcl")
	v.SetDefault("providers.sandbox.enabled", false)

	v.SetDefault("aggregator.provider_timeout", "20s")

	v.SetDefault("commission.default.percentage", 10.0)
	v.SetDefault("commission.default.fixed_fee", 0.0)

	v.SetDefault("scheduler.interval", "1h")
	v.SetDefault("scheduler.align_to_bucket", true)
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.cooldown", "6h")
	v.SetDefault("alerting.channels", []string{"telegram"})
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.listen_addr", ":9108")
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("export.top_limit", 5)

	v.SetDefault("hscode.model", "gemini-2.5-flash")
	v.SetDefault("hscode.max_suggestions", 3)
	v.SetDefault("hscode.request_timeout", "30s")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	switch c.Ledger.Backend {
	case "file":
		if c.Ledger.Path == "" {
			return fmt.Errorf("ledger.path is required for the file backend")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres backend")
		}
	case "redis":
		if c.Ledger.Redis.Addr == "" {
			return fmt.Errorf("ledger.redis.addr is required for the redis backend")
		}
	case "memory":
	default:
		return fmt.Errorf("ledger.backend %q is not supported", c.Ledger.Backend)
	}
	if len(c.Providers.DefaultCountry) != 2 {
		return fmt.Errorf("providers.default_country must be an ISO-2 code")
	}
	if c.Aggregator.ProviderTimeout <= 0 {
		return fmt.Errorf("aggregator.provider_timeout must be greater than zero")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if err := validateRule("commission.default", c.Commission.Default); err != nil {
		return err
	}
	for name, rule := range c.Commission.Providers {
		if err := validateRule("commission.providers."+name, rule); err != nil {
			return err
		}
	}
	if c.Export.TopLimit <= 0 {
		return fmt.Errorf("export.top_limit must be greater than zero")
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token is required")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id is required")
		}
	}
	return nil
}

func validateRule(key string, rule CommissionRuleConfig) error {
	if rule.Percentage < 0 {
		return fmt.Errorf("%s.percentage cannot be negative", key)
	}
	if rule.FixedFee < 0 {
		return fmt.Errorf("%s.fixed_fee cannot be negative", key)
	}
	return nil
}

// CommissionCalculator converts the commission section into a calculator.
func (c *Config) CommissionCalculator() *commission.Calculator {
	rules := make(map[string]commission.Rule, len(c.Commission.Providers))
	for name, rule := range c.Commission.Providers {
		rules[name] = toRule(rule)
	}
	return commission.NewCalculator(toRule(c.Commission.Default), rules)
}

func toRule(rc CommissionRuleConfig) commission.Rule {
	return commission.Rule{
		Percentage: decimal.NewFromFloat(rc.Percentage),
		FixedFee:   decimal.NewFromFloat(rc.FixedFee),
	}
}

// ResolveTopLimit returns either the CLI override or config default.
func (c *Config) ResolveTopLimit(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.TopLimit
}
