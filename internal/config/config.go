package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/m04kA/SMC-ParkingService/internal/domain"
	"github.com/m04kA/SMC-ParkingService/internal/pricing"
)

// envPrefix префикс переменных окружения, переопределяющих config.toml
const envPrefix = "PARKING"

// Config конфигурация сервиса
type Config struct {
	Server         ServerConfig         `toml:"server"`
	Database       DatabaseConfig       `toml:"database"`
	Logs           LogsConfig           `toml:"logs"`
	Metrics        MetricsConfig        `toml:"metrics"`
	ListingService ListingServiceConfig `toml:"listing_service"`
	Pricing        PricingConfig        `toml:"pricing"`
	Commission     CommissionConfig     `toml:"commission"`
	Sweeper        SweeperConfig        `toml:"sweeper"`
	Payouts        PayoutsConfig        `toml:"payouts"`
}

// ServerConfig параметры HTTP сервера, таймауты в секундах
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`

	// InternalHTTPPort отдельный порт служебных запусков sweep и выплат; 0 - запуски по HTTP выключены
	InternalHTTPPort int `toml:"internal_http_port"`
}

// InternalEnabled поднимать ли служебный listener
func (s ServerConfig) InternalEnabled() bool {
	return s.InternalHTTPPort > 0
}

// DatabaseConfig параметры подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
	MigrateOnStart  bool   `toml:"migrate_on_start"`
}

// DSN строка подключения для lib/pq
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// URL строка подключения для golang-migrate
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// LogsConfig параметры логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // пусто - только stdout
}

// MetricsConfig параметры Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// ListingServiceConfig параметры интеграции с ListingService
type ListingServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"` // секунды
}

// PricingConfig параметры расчета стоимости
type PricingConfig struct {
	Mode               string  `toml:"mode"`
	MinBillableMinutes int     `toml:"min_billable_minutes"`
	DefaultHourlyRate  float64 `toml:"default_hourly_rate"`
}

// CommissionConfig параметры комиссии платформы
type CommissionConfig struct {
	RateBps int64 `toml:"rate_bps"` // базисные пункты, 1500 = 15%
}

// SweeperConfig параметры фонового перевода статусов
type SweeperConfig struct {
	Enabled     bool `toml:"enabled"`
	IntervalSec int  `toml:"interval_sec"`
	BatchSize   int  `toml:"batch_size"`
	Workers     int  `toml:"workers"`
}

// PayoutsConfig параметры сведения выплат
type PayoutsConfig struct {
	Enabled  bool   `toml:"enabled"`
	Interval string `toml:"interval"` // time.ParseDuration, например "720h"
}

// envOverrides значения из окружения, которые заменяют значения файла, если заданы
type envOverrides struct {
	DatabaseHost      string `envconfig:"DATABASE_HOST"`
	DatabasePort      int    `envconfig:"DATABASE_PORT"`
	DatabaseUser      string `envconfig:"DATABASE_USER"`
	DatabasePassword  string `envconfig:"DATABASE_PASSWORD"`
	DatabaseName      string `envconfig:"DATABASE_NAME"`
	HTTPPort          int    `envconfig:"HTTP_PORT"`
	InternalHTTPPort  int    `envconfig:"INTERNAL_HTTP_PORT"`
	LogLevel          string `envconfig:"LOG_LEVEL"`
	ListingServiceURL string `envconfig:"LISTING_SERVICE_URL"`
	PricingMode       string `envconfig:"PRICING_MODE"`
}

// Load читает конфигурацию из TOML файла, применяет переменные окружения PARKING_*
// и значения по умолчанию, затем валидирует
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	setString(&c.Database.Host, env.DatabaseHost)
	setInt(&c.Database.Port, env.DatabasePort)
	setString(&c.Database.User, env.DatabaseUser)
	setString(&c.Database.Password, env.DatabasePassword)
	setString(&c.Database.DBName, env.DatabaseName)
	setInt(&c.Server.HTTPPort, env.HTTPPort)
	setInt(&c.Server.InternalHTTPPort, env.InternalHTTPPort)
	setString(&c.Logs.Level, env.LogLevel)
	setString(&c.ListingService.URL, env.ListingServiceURL)
	setString(&c.Pricing.Mode, env.PricingMode)

	return nil
}

func (c *Config) applyDefaults() {
	setDefault(&c.Server.HTTPPort, 8080)
	setDefault(&c.Server.ReadTimeout, 15)
	setDefault(&c.Server.WriteTimeout, 15)
	setDefault(&c.Server.IdleTimeout, 60)
	setDefault(&c.Server.ShutdownTimeout, 30)

	setDefault(&c.Database.Port, 5432)
	setDefault(&c.Database.MaxOpenConns, 25)
	setDefault(&c.Database.MaxIdleConns, 5)
	setDefault(&c.Database.ConnMaxLifetime, 300)
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}

	if c.Logs.Level == "" {
		c.Logs.Level = "info"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "parking_service"
	}

	setDefault(&c.ListingService.Timeout, 5)

	if c.Pricing.Mode == "" {
		c.Pricing.Mode = string(pricing.ModeProportional)
	}
	setDefault(&c.Pricing.MinBillableMinutes, int(pricing.DefaultMinBillable/time.Minute))
	if c.Pricing.DefaultHourlyRate == 0 {
		c.Pricing.DefaultHourlyRate = pricing.DefaultHourlyRate
	}

	if c.Commission.RateBps == 0 {
		c.Commission.RateBps = domain.DefaultCommissionRateBps
	}

	setDefault(&c.Sweeper.IntervalSec, domain.DefaultSweepIntervalSec)
	setDefault(&c.Sweeper.BatchSize, 500)
	setDefault(&c.Sweeper.Workers, 4)

	if c.Payouts.Interval == "" {
		c.Payouts.Interval = "720h"
	}
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("config: database host and dbname are required")
	}
	if c.Server.InternalHTTPPort < 0 {
		return fmt.Errorf("config: server.internal_http_port must not be negative")
	}
	if c.Server.InternalEnabled() && c.Server.InternalHTTPPort == c.Server.HTTPPort {
		return fmt.Errorf("config: server.internal_http_port must differ from http_port %d", c.Server.HTTPPort)
	}
	if c.ListingService.URL == "" {
		return fmt.Errorf("config: listing_service.url is required")
	}
	if _, err := pricing.ParseMode(c.Pricing.Mode); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Pricing.MinBillableMinutes < 0 {
		return fmt.Errorf("config: pricing.min_billable_minutes must not be negative")
	}
	if c.Pricing.DefaultHourlyRate < 0 {
		return fmt.Errorf("config: pricing.default_hourly_rate must not be negative")
	}
	if c.Commission.RateBps < 0 || c.Commission.RateBps > 10000 {
		return fmt.Errorf("config: commission.rate_bps must be within [0, 10000], got %d", c.Commission.RateBps)
	}
	if _, err := c.PayoutInterval(); err != nil {
		return fmt.Errorf("config: payouts.interval: %w", err)
	}
	return nil
}

// PricingMode режим расчета стоимости
func (c *Config) PricingMode() pricing.Mode {
	mode, _ := pricing.ParseMode(c.Pricing.Mode)
	return mode
}

// PricingCalculatorConfig конфигурация калькулятора
func (c *Config) PricingCalculatorConfig() pricing.Config {
	return pricing.Config{
		MinBillable:       time.Duration(c.Pricing.MinBillableMinutes) * time.Minute,
		DefaultHourlyRate: c.Pricing.DefaultHourlyRate,
	}
}

// SweepInterval интервал sweeper'а
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Sweeper.IntervalSec) * time.Second
}

// PayoutInterval интервал запуска выплат
func (c *Config) PayoutInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Payouts.Interval)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
