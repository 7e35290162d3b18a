package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Engine   EngineConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds token verification configuration
type JWTConfig struct {
	Secret     string
	Expiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// EngineConfig holds reconciliation tuning knobs.
type EngineConfig struct {
	// OutOfWindowToleranceMinutes is how far outside a split sub-window a
	// punch may land before it is rejected.
	OutOfWindowToleranceMinutes int
	// SweepInterval is how often the end-of-day sweep job ticks.
	SweepInterval time.Duration
	// CASRetries bounds optimistic-lock retries on attendance writes.
	CASRetries int
	// WeekendDays are ISO weekday numbers (1=Monday .. 7=Sunday) counted as
	// weekend for overtime day-type selection.
	WeekendDays []int
}

func Load() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance-engine"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:     getEnv("JWT_SECRET_KEY", ""),
		Expiration: getEnv("JWT_EXPIRATION_TIME", "1h"),
	}

	// Engine configuration
	tolerance, err := strconv.Atoi(getEnv("ENGINE_OUT_OF_WINDOW_TOLERANCE_MINUTES", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENGINE_OUT_OF_WINDOW_TOLERANCE_MINUTES: %w", err)
	}

	sweepInterval, err := time.ParseDuration(getEnv("ENGINE_SWEEP_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENGINE_SWEEP_INTERVAL: %w", err)
	}

	casRetries, err := strconv.Atoi(getEnv("ENGINE_CAS_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENGINE_CAS_RETRIES: %w", err)
	}

	weekendDays, err := parseWeekendDays(getEnv("ENGINE_WEEKEND_DAYS", "6,7"))
	if err != nil {
		return nil, err
	}

	config.Engine = EngineConfig{
		OutOfWindowToleranceMinutes: tolerance,
		SweepInterval:               sweepInterval,
		CASRetries:                  casRetries,
		WeekendDays:                 weekendDays,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Engine.OutOfWindowToleranceMinutes < 0 {
		return fmt.Errorf("ENGINE_OUT_OF_WINDOW_TOLERANCE_MINUTES must not be negative")
	}
	if c.Engine.CASRetries < 1 {
		return fmt.Errorf("ENGINE_CAS_RETRIES must be at least 1")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseWeekendDays(value string) ([]int, error) {
	parts := strings.Split(value, ",")
	days := make([]int, 0, len(parts))
	for _, part := range parts {
		day, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || day < 1 || day > 7 {
			return nil, fmt.Errorf("invalid ENGINE_WEEKEND_DAYS entry: %q", part)
		}
		days = append(days, day)
	}
	return days, nil
}
