package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the whole explicit configuration for one process. It is
// built once at startup and passed into the services; nothing reads the
// environment after Load returns.
type Config struct {
	HTTPPort    string
	TokenSecret string
	Database    DatabaseConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// Load reads configuration from environment variables. It fails when no
// token secret is configured; there is no fallback secret.
func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		TokenSecret: os.Getenv("JWT_SECRET"),
	}

	if cfg.TokenSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	db, err := loadDatabaseConfig()
	if err != nil {
		return nil, err
	}
	cfg.Database = *db

	return cfg, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	cfg := &DatabaseConfig{
		Host:         getEnv("DB_HOST", "postgres"),
		User:         getEnv("DB_USER", "postgres"),
		Password:     getEnv("DB_PASSWORD", "postgres"),
		DBName:       getEnv("DB_NAME", ""),
		SSLMode:      getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
	}

	var err error
	cfg.Port, err = strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid database port: %w", err)
	}

	if cfg.DBName == "" {
		return nil, fmt.Errorf("database name is required (set DB_NAME)")
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt gets an environment variable as int or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as duration or returns a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
