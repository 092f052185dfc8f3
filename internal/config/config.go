package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"log"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Export   ExportConfig   `mapstructure:"export"`
	Business BusinessConfig `mapstructure:"business"`
	Health   HealthConfig   `mapstructure:"health"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            string `mapstructure:"port"`
	Env             string `mapstructure:"env"`
	ReadTimeout     string `mapstructure:"read_timeout"`
	WriteTimeout    string `mapstructure:"write_timeout"`
	ShutdownTimeout string `mapstructure:"shutdown_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RedisConfig drives the optional simulation result cache. An empty address
// disables caching entirely.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	CacheTTL string `mapstructure:"cache_ttl"`
}

type TracingConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

// ExportConfig drives the scheduled batch exporter: request files are read
// from RequestDir and rendered exports land in OutputDir on every CronSpec
// tick.
type ExportConfig struct {
	RequestDir string `mapstructure:"request_dir"`
	OutputDir  string `mapstructure:"output_dir"`
	CronSpec   string `mapstructure:"cron_spec"`
}

// BusinessConfig bounds what a single simulation request may ask for.
type BusinessConfig struct {
	MaxPrincipal   string `mapstructure:"max_principal"`
	MaxRatePercent string `mapstructure:"max_rate_percent"`
	MaxTenureYears string `mapstructure:"max_tenure_years"`
	MaxEvents      int    `mapstructure:"max_events"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"timeout"`
}

// cronParser matches the scheduler wiring, which runs with seconds enabled.
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// Load reads configuration from environment variables, an optional .env
// file, and built-in defaults. Keys use sections separated by underscores,
// e.g. SERVER_PORT, REDIS_ADDR, EXPORT_CRON_SPEC.
func Load() (*Config, error) {
	// Optional .env file feeding the environment.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", "1h")

	v.SetDefault("tracing.endpoint", "")

	v.SetDefault("export.request_dir", "./exports/requests")
	v.SetDefault("export.output_dir", "./exports/out")
	v.SetDefault("export.cron_spec", "0 0 2 * * *")

	v.SetDefault("business.max_principal", "10000000000")
	v.SetDefault("business.max_rate_percent", "100")
	v.SetDefault("business.max_tenure_years", "50")
	v.SetDefault("business.max_events", 500)

	v.SetDefault("health.timeout", "5s")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}
	for key, value := range map[string]string{
		"SERVER_READ_TIMEOUT":     c.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":    c.Server.WriteTimeout,
		"SERVER_SHUTDOWN_TIMEOUT": c.Server.ShutdownTimeout,
		"REDIS_CACHE_TTL":         c.Redis.CacheTTL,
		"HEALTH_TIMEOUT":          c.Health.Timeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s must be a valid duration: %w", key, err)
		}
	}

	if c.Redis.DB < 0 {
		return fmt.Errorf("REDIS_DB must not be negative")
	}

	if _, err := cronParser.Parse(c.Export.CronSpec); err != nil {
		return fmt.Errorf("EXPORT_CRON_SPEC must be a valid cron expression: %w", err)
	}
	if c.Export.RequestDir == "" || c.Export.OutputDir == "" {
		return fmt.Errorf("EXPORT_REQUEST_DIR and EXPORT_OUTPUT_DIR are required")
	}

	for key, value := range map[string]string{
		"BUSINESS_MAX_PRINCIPAL":    c.Business.MaxPrincipal,
		"BUSINESS_MAX_RATE_PERCENT": c.Business.MaxRatePercent,
		"BUSINESS_MAX_TENURE_YEARS": c.Business.MaxTenureYears,
	} {
		limit, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("%s must be a valid decimal: %w", key, err)
		}
		if !limit.IsPositive() {
			return fmt.Errorf("%s must be greater than 0", key)
		}
	}
	if c.Business.MaxEvents <= 0 {
		return fmt.Errorf("BUSINESS_MAX_EVENTS must be greater than 0")
	}

	return nil
}

// IsDevelopment returns true if running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// CacheEnabled reports whether a result cache address is configured.
func (c *Config) CacheEnabled() bool {
	return c.Redis.Addr != ""
}

// TracingEnabled reports whether an OTLP endpoint is configured.
func (c *Config) TracingEnabled() bool {
	return c.Tracing.Endpoint != ""
}

// GetReadTimeout returns the server read timeout as duration.
func (c *Config) GetReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ReadTimeout)
	return d
}

// GetWriteTimeout returns the server write timeout as duration.
func (c *Config) GetWriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.WriteTimeout)
	return d
}

// GetShutdownTimeout returns the graceful shutdown window as duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ShutdownTimeout)
	return d
}

// GetCacheTTL returns the result cache expiry as duration.
func (c *Config) GetCacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.Redis.CacheTTL)
	return d
}

// GetHealthTimeout returns the health check timeout as duration.
func (c *Config) GetHealthTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Health.Timeout)
	return d
}

// GetMaxPrincipal returns the request principal ceiling.
func (c *Config) GetMaxPrincipal() decimal.Decimal {
	limit, _ := decimal.NewFromString(c.Business.MaxPrincipal)
	return limit
}

// GetMaxRatePercent returns the request rate ceiling.
func (c *Config) GetMaxRatePercent() decimal.Decimal {
	limit, _ := decimal.NewFromString(c.Business.MaxRatePercent)
	return limit
}

// GetMaxTenureYears returns the request tenure ceiling.
func (c *Config) GetMaxTenureYears() decimal.Decimal {
	limit, _ := decimal.NewFromString(c.Business.MaxTenureYears)
	return limit
}
