package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Env      string
	LogLevel string
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Orders   OrdersConfig
	Auditor  AuditorConfig
	// MigrationsDir is where *.up.sql files are read from at startup
	MigrationsDir string
	// ProfanityExtraTerms extends the built-in denylist
	ProfanityExtraTerms []string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	AllowedOrigins  []string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL string
}

// CacheConfig holds caching TTL configuration
type CacheConfig struct {
	ReviewsListTTL time.Duration
}

// AuthConfig holds JWT verification settings
type AuthConfig struct {
	JWTSecret string
}

// OrdersConfig holds the order service client settings used for purchase checks
type OrdersConfig struct {
	URL            string
	Timeout        time.Duration
	BreakerTimeout time.Duration
}

// AuditorConfig holds rating auditor settings
type AuditorConfig struct {
	DebounceWindow time.Duration
}

// defaults applies when the variable is unset
var defaults = map[string]interface{}{
	"ENV":       "development",
	"LOG_LEVEL": "",

	"SERVER_PORT":             "8080",
	"SERVER_READ_TIMEOUT":     "10s",
	"SERVER_WRITE_TIMEOUT":    "10s",
	"SERVER_SHUTDOWN_TIMEOUT": "30s",
	"SERVER_REQUEST_TIMEOUT":  "15s",
	"CORS_ALLOWED_ORIGINS":    "http://localhost:3000,http://localhost:8080",

	"DB_HOST":              "localhost",
	"DB_PORT":              "5432",
	"DB_USER":              "postgres",
	"DB_PASSWORD":          "postgres",
	"DB_NAME":              "storefront",
	"DB_SSLMODE":           "disable",
	"DB_MAX_OPEN_CONNS":    25,
	"DB_MAX_IDLE_CONNS":    5,
	"DB_CONN_MAX_LIFETIME": "5m",

	"REDIS_HOST":     "localhost",
	"REDIS_PORT":     "6379",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,

	"NATS_URL": "nats://localhost:4222",

	"CACHE_TTL_REVIEWS_LIST": "120s",

	"AUTH_JWT_SECRET": "",

	"ORDER_SERVICE_URL":             "http://localhost:8081",
	"ORDER_SERVICE_TIMEOUT":         "3s",
	"ORDER_SERVICE_BREAKER_TIMEOUT": "30s",

	"AUDITOR_DEBOUNCE_WINDOW": "5s",

	"MIGRATIONS_DIR":        "migrations",
	"PROFANITY_EXTRA_TERMS": "",
}

// devJWTSecret signs tokens in development when AUTH_JWT_SECRET is unset
const devJWTSecret = "dev-secret"

// envReader reads typed values from viper and keeps the first parse error
type envReader struct {
	err error
}

func (r *envReader) duration(key string) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return d
}

// Load reads configuration from environment variables and returns a Config struct
func Load() (*Config, error) {
	viper.AutomaticEnv()
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}

	env := viper.GetString("ENV")
	jwtSecret := viper.GetString("AUTH_JWT_SECRET")
	if jwtSecret == "" {
		if env != "development" {
			return nil, fmt.Errorf("AUTH_JWT_SECRET is required outside development")
		}
		jwtSecret = devJWTSecret
	}

	r := &envReader{}
	config := &Config{
		Env:      env,
		LogLevel: viper.GetString("LOG_LEVEL"),
		Server: ServerConfig{
			Port:            viper.GetString("SERVER_PORT"),
			ReadTimeout:     r.duration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    r.duration("SERVER_WRITE_TIMEOUT"),
			ShutdownTimeout: r.duration("SERVER_SHUTDOWN_TIMEOUT"),
			RequestTimeout:  r.duration("SERVER_REQUEST_TIMEOUT"),
			AllowedOrigins:  splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetString("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Name:            viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxOpenConns:    viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: r.duration("DB_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		NATS: NATSConfig{
			URL: viper.GetString("NATS_URL"),
		},
		Cache: CacheConfig{
			ReviewsListTTL: r.duration("CACHE_TTL_REVIEWS_LIST"),
		},
		Auth: AuthConfig{
			JWTSecret: jwtSecret,
		},
		Orders: OrdersConfig{
			URL:            viper.GetString("ORDER_SERVICE_URL"),
			Timeout:        r.duration("ORDER_SERVICE_TIMEOUT"),
			BreakerTimeout: r.duration("ORDER_SERVICE_BREAKER_TIMEOUT"),
		},
		Auditor: AuditorConfig{
			DebounceWindow: r.duration("AUDITOR_DEBOUNCE_WINDOW"),
		},
		MigrationsDir:       viper.GetString("MIGRATIONS_DIR"),
		ProfanityExtraTerms: splitList(viper.GetString("PROFANITY_EXTRA_TERMS")),
	}
	if r.err != nil {
		return nil, r.err
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// splitList parses a comma-separated value, dropping empty items
func splitList(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
