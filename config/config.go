package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App               AppConfig
	HTTP              ServerConfig
	GRPC              ServerConfig
	MySQL             MySQLConfig
	Log               LogConfig
	InternalEndpoints InternalEndpointsConfig
	Comgate           ComgateConfig
	Webhook           WebhookConfig
}

type AppConfig struct {
	ServiceName string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type InternalEndpointsConfig struct {
	AuthGRPCAddr string
}

// ComgateConfig is loaded once at startup and never mutated afterwards.
type ComgateConfig struct {
	BaseURL        string
	Merchant       string
	Secret         string
	PaymentMethods string
	Currency       string
	Country        string
	Test           bool
	HTTPTimeout    time.Duration
}

// SupportedCurrencies splits the configured currency list. The first entry is
// the default currency.
func (c ComgateConfig) SupportedCurrencies() []string {
	parts := strings.Split(c.Currency, ",")
	currencies := make([]string, 0, len(parts))
	for _, part := range parts {
		if code := strings.ToUpper(strings.TrimSpace(part)); code != "" {
			currencies = append(currencies, code)
		}
	}
	return currencies
}

type WebhookConfig struct {
	RateLimit float64
	RateBurst int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}
	merchant := strings.TrimSpace(os.Getenv("COMGATE_MERCHANT"))
	if merchant == "" {
		return nil, errors.New("COMGATE_MERCHANT environment variable is required")
	}
	secret := os.Getenv("COMGATE_SECRET")
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("COMGATE_SECRET environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "comgate-service"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		GRPC: ServerConfig{
			Host: getEnv("GRPC_HOST", "0.0.0.0"),
			Port: getEnv("GRPC_PORT", "9090"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		InternalEndpoints: InternalEndpointsConfig{
			AuthGRPCAddr: getEnv("AUTH_SERVICE_GRPC_ADDR", "localhost:9090"),
		},
		Comgate: ComgateConfig{
			BaseURL:        getEnv("COMGATE_BASE_URL", "https://payments.comgate.cz/v1.0/"),
			Merchant:       merchant,
			Secret:         secret,
			PaymentMethods: getEnv("COMGATE_PAYMENT_METHODS", "ALL"),
			Currency:       strings.ToUpper(getEnv("COMGATE_CURRENCY", "EUR")),
			Country:        strings.ToUpper(getEnv("COMGATE_COUNTRY", "SK")),
			Test:           getBoolEnv("COMGATE_TEST_MODE", false),
			HTTPTimeout:    getSecondsEnv("COMGATE_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
		Webhook: WebhookConfig{
			RateLimit: getFloatEnv("WEBHOOK_RATE_LIMIT", 5),
			RateBurst: getIntEnv("WEBHOOK_RATE_BURST", 20),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
