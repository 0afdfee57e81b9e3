package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

const envPrefix = "PORTFOLIO"

type Config struct {
	Environment string          `mapstructure:"environment" validate:"oneof=development staging production test"`
	LogLevel    string          `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Store       StoreConfig     `mapstructure:"store"`
	Breaker     BreakerConfig   `mapstructure:"breaker"`
	Report      ReportConfig    `mapstructure:"report"`
	Scheduler   SchedulerConfig `mapstructure:"scheduler"`
	Contracts   []types.Product `mapstructure:"contracts"`
}

type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port" validate:"min=1,max=65535"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver     string `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	URL        string `mapstructure:"url" validate:"required_if=Driver postgres"`
	SQLitePath string `mapstructure:"sqlite_path" validate:"required_if=Driver sqlite"`
	Migrate    bool   `mapstructure:"migrate"`
}

type StoreConfig struct {
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxRetries uint          `mapstructure:"max_retries" validate:"min=1,max=10"`
}

type BreakerConfig struct {
	MaxRequests uint32        `mapstructure:"max_requests" validate:"min=1"`
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type ReportConfig struct {
	InitialCapital string `mapstructure:"initial_capital" validate:"required,numeric"`
	RiskFreeRate   string `mapstructure:"risk_free_rate" validate:"required,numeric"`
}

type SchedulerConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	CleanupSchedule  string `mapstructure:"cleanup_schedule" validate:"required_if=Enabled true"`
	ExposureSchedule string `mapstructure:"exposure_schedule" validate:"required_if=Enabled true"`
}

// Load reads configuration from defaults, an optional config.yaml (or the
// file at path when given) and PORTFOLIO_* environment variables, in that
// order of precedence.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "")
	v.SetDefault("database.sqlite_path", "./data/portfolio.db")
	v.SetDefault("database.migrate", true)

	v.SetDefault("store.timeout", "5s")
	v.SetDefault("store.max_retries", 3)

	v.SetDefault("breaker.max_requests", 3)
	v.SetDefault("breaker.interval", "10s")
	v.SetDefault("breaker.timeout", "30s")

	v.SetDefault("report.initial_capital", "100000")
	v.SetDefault("report.risk_free_rate", "0")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.cleanup_schedule", "@every 1h")
	v.SetDefault("scheduler.exposure_schedule", "@every 1m")
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	for i, p := range c.Contracts {
		if len(strings.TrimSpace(p.Code)) != 3 || p.ContractSize <= 0 {
			return fmt.Errorf("contracts[%d]: code must have 3 characters and size must be positive", i)
		}
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "test"
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (r ReportConfig) Capital() decimal.Decimal {
	return decimal.RequireFromString(r.InitialCapital)
}

func (r ReportConfig) RiskFree() decimal.Decimal {
	return decimal.RequireFromString(r.RiskFreeRate)
}
