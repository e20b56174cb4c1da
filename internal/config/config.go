package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

var defaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	OCR       OCRConfig
	Messaging MessagingConfig
}

type ServerConfig struct {
	Port               string
	Host               string
	Environment        string
	LogLevel           string
	PublicBaseURL      string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowOrigins   []string
	RateLimitPerSecond int
	RateLimitBurst     int
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type StorageConfig struct {
	UploadDir   string
	MaxFileSize int64
}

type OCRConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxAttempts    int
	AttemptTimeout time.Duration
}

type MessagingConfig struct {
	AMQPURL  string
	Exchange string
}

func Load() *Config {
	config := &Config{
		Server: ServerConfig{
			Port:               getEnv("SERVER_PORT", "8000"),
			Host:               getEnv("SERVER_HOST", "0.0.0.0"),
			Environment:        getEnv("APP_ENV", "development"),
			LogLevel:           getEnv("LOG_LEVEL", "info"),
			ReadTimeout:        getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:       getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),
			ShutdownTimeout:    getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 2),
			RateLimitBurst:     getIntEnv("RATE_LIMIT_BURST", 5),
		},
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "ledger"),
			Password:        getEnv("DB_PASSWORD", "ledger"),
			Name:            getEnv("DB_NAME", "household_book"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:  getIntEnv("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Storage: StorageConfig{
			UploadDir:   getEnv("UPLOAD_DIR", "./uploads"),
			MaxFileSize: getInt64Env("MAX_FILE_SIZE", 10*1024*1024),
		},
		OCR: OCRConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", ""),
			Model:          getEnv("OCR_MODEL", "gpt-4o"),
			MaxAttempts:    getIntEnv("OCR_MAX_ATTEMPTS", 3),
			AttemptTimeout: getDurationEnv("OCR_ATTEMPT_TIMEOUT", 30*time.Second),
		},
		Messaging: MessagingConfig{
			AMQPURL:  getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "ledger.events"),
		},
	}

	config.Server.PublicBaseURL = strings.TrimRight(
		getEnv("PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%s", config.Server.Port)), "/")
	config.Server.CORSAllowOrigins = config.loadCORSAllowOrigins()

	return config
}

// Validate reports configuration that would make the server unusable.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Database.URL == "" && c.Database.Name == "" {
		errs = append(errs, errors.New("DATABASE_URL or DB_NAME is required"))
	}
	if c.Storage.UploadDir == "" {
		errs = append(errs, errors.New("UPLOAD_DIR is required"))
	}
	if c.Storage.MaxFileSize <= 0 {
		errs = append(errs, errors.New("MAX_FILE_SIZE must be positive"))
	}
	if c.OCR.MaxAttempts < 1 {
		errs = append(errs, errors.New("OCR_MAX_ATTEMPTS must be at least 1"))
	}
	if c.OCR.AttemptTimeout <= 0 {
		errs = append(errs, errors.New("OCR_ATTEMPT_TIMEOUT must be positive"))
	}
	if c.IsProduction() && c.OCR.APIKey == "" {
		errs = append(errs, errors.New("OPENAI_API_KEY is required in production"))
	}

	return errors.Join(errs...)
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from the DB_* variables.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsTesting() bool {
	return c.Server.Environment == "testing"
}

func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// AutoMigrateEnabled reports whether SQL migrations should run on startup
func AutoMigrateEnabled() bool {
	return getBoolEnv("AUTO_MIGRATE", false)
}

// SeedEnabled reports whether SQL seed files should be loaded after migrating
func SeedEnabled() bool {
	return getBoolEnv("SEED_DATABASE", false)
}

// loadCORSAllowOrigins retrieves CORS allowed origins from environment or returns the web client defaults
func (c *Config) loadCORSAllowOrigins() []string {
	corsOrigins := os.Getenv("CORS_ALLOW_ORIGINS")

	if corsOrigins == "" {
		if c.IsProduction() {
			slog.Warn("CORS_ALLOW_ORIGINS not set in production, only local web client origins are allowed")
		}
		origins := make([]string, len(defaultCORSOrigins))
		copy(origins, defaultCORSOrigins)
		return origins
	}

	origins := strings.Split(corsOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	slog.Debug("CORS allowed origins configured", "origins", origins)
	return origins
}
