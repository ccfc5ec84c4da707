package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Log       LogConfig
	Order     OrderConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type OrderConfig struct {
	TxTimeout              time.Duration
	LockWaitTimeout        time.Duration
	MaxRetryAttempts       int
	MaxB2CItems            int
	MinB2BOrderTotal       decimal.Decimal
	ShippingFee            decimal.Decimal
	TaxRate                decimal.Decimal
	Currency               string
	DefaultPaymentTermDays int
}

type RedisConfig struct {
	Addr           string
	IdempotencyTTL time.Duration
}

type KafkaConfig struct {
	Brokers    []string
	OrderTopic string
}

type TelemetryConfig struct {
	ServiceName  string
	OTLPEndpoint string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present, and CONFIG_FILE may name a YAML file
// using the same keys. Real environment variables win over both.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "10s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "20s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "storefront")
	v.SetDefault("DB_PASSWORD", "secret")
	v.SetDefault("DB_NAME", "storefront")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("ORDER_TX_TIMEOUT", "10s")
	v.SetDefault("ORDER_LOCK_WAIT_TIMEOUT", "5s")
	v.SetDefault("ORDER_MAX_RETRY_ATTEMPTS", 3)
	v.SetDefault("ORDER_MAX_B2C_ITEMS", 10)
	v.SetDefault("ORDER_MIN_B2B_TOTAL", "1000.00")
	v.SetDefault("ORDER_SHIPPING_FEE", "10.00")
	v.SetDefault("ORDER_TAX_RATE", "0.20")
	v.SetDefault("ORDER_CURRENCY", "EUR")
	v.SetDefault("ORDER_DEFAULT_PAYMENT_TERM_DAYS", 30)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_IDEMPOTENCY_TTL", "24h")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_ORDER_TOPIC", "orders.events")
	v.SetDefault("SERVICE_NAME", "storefront")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	readTimeout, err := time.ParseDuration(v.GetString("SERVER_READ_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing SERVER_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(v.GetString("SERVER_WRITE_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing SERVER_WRITE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := time.ParseDuration(v.GetString("SERVER_SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing SERVER_SHUTDOWN_TIMEOUT: %w", err)
	}

	connMaxLifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("parsing DB_CONN_MAX_LIFETIME: %w", err)
	}

	txTimeout, err := time.ParseDuration(v.GetString("ORDER_TX_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing ORDER_TX_TIMEOUT: %w", err)
	}

	lockWaitTimeout, err := time.ParseDuration(v.GetString("ORDER_LOCK_WAIT_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing ORDER_LOCK_WAIT_TIMEOUT: %w", err)
	}

	idempotencyTTL, err := time.ParseDuration(v.GetString("REDIS_IDEMPOTENCY_TTL"))
	if err != nil {
		return nil, fmt.Errorf("parsing REDIS_IDEMPOTENCY_TTL: %w", err)
	}

	minB2BTotal, err := decimal.NewFromString(v.GetString("ORDER_MIN_B2B_TOTAL"))
	if err != nil {
		return nil, fmt.Errorf("parsing ORDER_MIN_B2B_TOTAL: %w", err)
	}

	shippingFee, err := decimal.NewFromString(v.GetString("ORDER_SHIPPING_FEE"))
	if err != nil {
		return nil, fmt.Errorf("parsing ORDER_SHIPPING_FEE: %w", err)
	}

	taxRate, err := decimal.NewFromString(v.GetString("ORDER_TAX_RATE"))
	if err != nil {
		return nil, fmt.Errorf("parsing ORDER_TAX_RATE: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: connMaxLifetime,
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Order: OrderConfig{
			TxTimeout:              txTimeout,
			LockWaitTimeout:        lockWaitTimeout,
			MaxRetryAttempts:       v.GetInt("ORDER_MAX_RETRY_ATTEMPTS"),
			MaxB2CItems:            v.GetInt("ORDER_MAX_B2C_ITEMS"),
			MinB2BOrderTotal:       minB2BTotal,
			ShippingFee:            shippingFee,
			TaxRate:                taxRate,
			Currency:               v.GetString("ORDER_CURRENCY"),
			DefaultPaymentTermDays: v.GetInt("ORDER_DEFAULT_PAYMENT_TERM_DAYS"),
		},
		Redis: RedisConfig{
			Addr:           v.GetString("REDIS_ADDR"),
			IdempotencyTTL: idempotencyTTL,
		},
		Kafka: KafkaConfig{
			Brokers:    splitCSV(v.GetString("KAFKA_BROKERS")),
			OrderTopic: v.GetString("KAFKA_ORDER_TOPIC"),
		},
		Telemetry: TelemetryConfig{
			ServiceName:  v.GetString("SERVICE_NAME"),
			OTLPEndpoint: v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		},
	}

	return cfg, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
