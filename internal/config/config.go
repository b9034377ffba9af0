package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/tair/retail-ledger/internal/ledger/domain"
	"github.com/tair/retail-ledger/internal/ledger/txn"
	"github.com/tair/retail-ledger/internal/ledger/usecase/command"
	"github.com/tair/retail-ledger/pkg/database"
	"github.com/tair/retail-ledger/pkg/tracing"
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the full configuration surface of the ledger binaries
type Config struct {
	ServiceName string
	Environment string
	LogLevel    string

	HTTPPort string
	GRPCPort string

	StoreDriver string
	Database    database.Config

	Redis   RedisConfig
	Kafka   KafkaConfig
	Tracing TracingConfig

	JWTSecret string

	Executor    ExecutorConfig
	Installment InstallmentConfig
	Pricing     PricingConfig

	ScanCron string

	NotifyWebhookURL string
}

// RedisConfig configures the sales projection cache; empty Addr disables it
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// KafkaConfig configures sale notifications; no brokers disables publishing
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// TracingConfig configures span export
type TracingConfig struct {
	JaegerEndpoint string
	SampleRatio    float64
}

// ExecutorConfig bounds transaction retries
type ExecutorConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// InstallmentConfig holds plan rules
type InstallmentConfig struct {
	MaxMonths      int
	GraceDays      int
	LateFeePercent decimal.Decimal
}

// PricingConfig holds the custom price policy
type PricingConfig struct {
	FloorPercent     decimal.Decimal
	CustomPriceRoles []domain.Role
}

// Load reads environment variables, optionally from envFile first, and validates the result
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		_ = godotenv.Load()
	}

	p := &parser{}
	cfg := &Config{
		ServiceName: getEnv("OTEL_SERVICE_NAME", "retail-ledger"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		GRPCPort:    getEnv("GRPC_PORT", "9090"),
		StoreDriver: getEnv("STORE_DRIVER", DriverPostgres),
		Database: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "ledgerdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       p.int("REDIS_DB", 0),
			TTL:      p.duration("SUMMARY_CACHE_TTL", time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_SALES_TOPIC", "sale-completed"),
			GroupID: getEnv("KAFKA_GROUP_ID", "ledger-notifier"),
		},
		Tracing: TracingConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
			SampleRatio:    p.float("TRACE_SAMPLE_RATIO", 1),
		},
		JWTSecret: os.Getenv("JWT_SECRET"),
		Executor: ExecutorConfig{
			MaxAttempts: p.int("TX_MAX_ATTEMPTS", 3),
			BaseDelay:   p.duration("TX_BASE_DELAY", 100*time.Millisecond),
		},
		Installment: InstallmentConfig{
			MaxMonths:      p.int("INSTALLMENT_MAX_MONTHS", 24),
			GraceDays:      p.int("INSTALLMENT_GRACE_DAYS", 5),
			LateFeePercent: p.decimal("INSTALLMENT_LATE_FEE_PERCENT", decimal.NewFromInt(5)),
		},
		Pricing: PricingConfig{
			FloorPercent:     p.decimal("CUSTOM_PRICE_FLOOR_PERCENT", decimal.NewFromInt(50)),
			CustomPriceRoles: p.roles("CUSTOM_PRICE_ROLES", "manager,operations"),
		},
		ScanCron:         getEnvAllowEmpty("SCAN_CRON", "*/30 * * * *"),
		NotifyWebhookURL: os.Getenv("NOTIFY_WEBHOOK_URL"),
	}
	if p.err != nil {
		return nil, p.err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Validate checks required fields and ranges
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	switch c.StoreDriver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, c.StoreDriver)
	}

	if c.HTTPPort == "" {
		return errors.New("HTTP_PORT must be provided")
	}
	if c.JWTSecret == "" && !c.IsDevelopment() {
		return errors.New("JWT_SECRET must be provided outside development")
	}

	if c.Executor.MaxAttempts < 1 {
		return errors.New("TX_MAX_ATTEMPTS must be at least 1")
	}
	if c.Executor.BaseDelay <= 0 {
		return errors.New("TX_BASE_DELAY must be positive")
	}

	if c.Installment.MaxMonths < 1 {
		return errors.New("INSTALLMENT_MAX_MONTHS must be at least 1")
	}
	if c.Installment.GraceDays < 0 {
		return errors.New("INSTALLMENT_GRACE_DAYS cannot be negative")
	}
	if c.Installment.LateFeePercent.IsNegative() || c.Installment.LateFeePercent.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("INSTALLMENT_LATE_FEE_PERCENT must be between 0 and 100")
	}

	if !c.Pricing.FloorPercent.IsPositive() || c.Pricing.FloorPercent.GreaterThan(decimal.NewFromInt(100)) {
		return errors.New("CUSTOM_PRICE_FLOOR_PERCENT must be in (0, 100]")
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return errors.New("TRACE_SAMPLE_RATIO must be between 0 and 1")
	}

	if c.ScanCron != "" {
		if _, err := cron.ParseStandard(c.ScanCron); err != nil {
			return fmt.Errorf("SCAN_CRON is invalid: %w", err)
		}
	}

	return nil
}

// ExecutorConfig returns the retry policy for the transaction executor
func (c *Config) ExecutorConfig() txn.Config {
	return txn.Config{MaxAttempts: c.Executor.MaxAttempts, BaseDelay: c.Executor.BaseDelay}
}

// InstallmentPolicy returns the plan rules
func (c *Config) InstallmentPolicy() domain.InstallmentPolicy {
	return domain.InstallmentPolicy{
		MaxMonths:      c.Installment.MaxMonths,
		GraceDays:      c.Installment.GraceDays,
		LateFeePercent: c.Installment.LateFeePercent,
	}
}

// SalePolicy returns the custom price rules
func (c *Config) SalePolicy() command.SalePolicy {
	return command.SalePolicy{
		FloorPercent:     c.Pricing.FloorPercent,
		CustomPriceRoles: c.Pricing.CustomPriceRoles,
	}
}

// TracerConfig returns the span export settings
func (c *Config) TracerConfig() tracing.Config {
	return tracing.Config{
		ServiceName:    c.ServiceName,
		ServiceVersion: "1.0.0",
		JaegerEndpoint: c.Tracing.JaegerEndpoint,
		SampleRatio:    c.Tracing.SampleRatio,
	}
}

// parser keeps the first malformed value it meets
type parser struct {
	err error
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s=%q: %w", key, value, err)
	}
}

func (p *parser) int(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		p.fail(key, value, err)
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		p.fail(key, value, err)
		return fallback
	}
	return f
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		p.fail(key, value, err)
		return fallback
	}
	return d
}

func (p *parser) decimal(key string, fallback decimal.Decimal) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		p.fail(key, value, err)
		return fallback
	}
	return d
}

func (p *parser) roles(key, fallback string) []domain.Role {
	value := getEnv(key, fallback)
	var roles []domain.Role
	for _, name := range splitList(value) {
		role, err := domain.ParseRole(name)
		if err != nil {
			p.fail(key, value, err)
			continue
		}
		roles = append(roles, role)
	}
	return roles
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAllowEmpty distinguishes an unset key from one explicitly set to empty
func getEnvAllowEmpty(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}
