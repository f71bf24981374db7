package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anyulbade/netaxept-gateway/internal/netaxept"
)

type Config struct {
	Port        string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	AutoMigrate bool
	GinMode     string
	LogLevel    string
	SwaggerSpec string

	MerchantID        string
	Token             string
	Environment       string
	GatewayBaseURL    string
	GatewayTimeout    time.Duration
	DefaultCurrency   string
	StatusConcurrency int
	JournalEnabled    bool
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "netaxept"),
		DBPassword:  getEnv("DB_PASSWORD", "netaxept_secret"),
		DBName:      getEnv("DB_NAME", "netaxept"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		AutoMigrate: getEnv("AUTO_MIGRATE", "false") == "true",
		GinMode:     getEnv("GIN_MODE", "debug"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		SwaggerSpec: getEnv("SWAGGER_SPEC", "docs/swagger.json"),

		MerchantID:        getEnv("NETAXEPT_MERCHANT_ID", ""),
		Token:             getEnv("NETAXEPT_TOKEN", ""),
		Environment:       getEnv("NETAXEPT_ENVIRONMENT", "test"),
		GatewayBaseURL:    getEnv("NETAXEPT_BASE_URL", ""),
		GatewayTimeout:    getDuration("NETAXEPT_TIMEOUT", 30*time.Second),
		DefaultCurrency:   strings.ToUpper(getEnv("NETAXEPT_CURRENCY", "NOK")),
		StatusConcurrency: getInt("STATUS_CONCURRENCY", 4),
		JournalEnabled:    getEnv("JOURNAL_ENABLED", "true") == "true",
	}
}

func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// NetaxeptCredentials builds gateway credentials, honouring NETAXEPT_BASE_URL
// when set.
func (c *Config) NetaxeptCredentials() (netaxept.Credentials, error) {
	env, err := netaxept.ParseEnvironment(c.Environment)
	if err != nil {
		return netaxept.Credentials{}, err
	}
	creds, err := netaxept.NewCredentials(c.MerchantID, c.Token, env)
	if err != nil {
		return netaxept.Credentials{}, err
	}
	if c.GatewayBaseURL != "" {
		creds = creds.WithBaseURL(c.GatewayBaseURL)
	}
	return creds, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
