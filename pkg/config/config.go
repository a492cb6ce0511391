package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Strategy
	StrategyPath string // YAML strategy file
	DataSource   string // "postgres" or "csv"
	FactorCSV    string // factor table path when DataSource == "csv"
	UniverseCSV  string // optional, 비어 있으면 팩터 파일 전체
	RiskCSV      string // optional risk loadings (security,<risk factor>...)

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// External collaborators
	Optimizer EndpointConfig
	Router    EndpointConfig

	// Logging
	LogLevel  string
	LogFormat string

	// Monitoring
	MetricsEnabled bool
	MetricsPort    string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	URL      string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// EndpointConfig describes a remote collaborator reached over HTTP
// (portfolio optimizer, order router).
type EndpointConfig struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	RatePerSec   int  // 초당 요청 제한
	DryRun       bool // true면 원격 호출 없이 로컬 페이퍼 구현 사용
	MaxFailures  int  // circuit breaker 연속 실패 허용치
	OpenDuration time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Strategy
		StrategyPath: getEnv("STRATEGY_PATH", "config/strategy/long_short_value.yaml"),
		DataSource:   getEnv("DATA_SOURCE", "postgres"),
		FactorCSV:    getEnv("FACTOR_CSV", ""),
		UniverseCSV:  getEnv("UNIVERSE_CSV", ""),
		RiskCSV:      getEnv("RISK_CSV", ""),

		// Database
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "lsequity"),
			User:            getEnv("DB_USER", "lsequity"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 5),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},

		// External collaborators
		Optimizer: EndpointConfig{
			BaseURL:      getEnv("OPTIMIZER_URL", "http://localhost:7001"),
			APIKey:       getEnv("OPTIMIZER_API_KEY", ""),
			Timeout:      getEnvAsDuration("OPTIMIZER_TIMEOUT", "60s"),
			RatePerSec:   getEnvAsInt("OPTIMIZER_RATE_PER_SEC", 2),
			DryRun:       getEnvAsBool("OPTIMIZER_DRY_RUN", false),
			MaxFailures:  getEnvAsInt("OPTIMIZER_MAX_FAILURES", 3),
			OpenDuration: getEnvAsDuration("OPTIMIZER_OPEN_DURATION", "30s"),
		},

		Router: EndpointConfig{
			BaseURL:      getEnv("ROUTER_URL", "http://localhost:7002"),
			APIKey:       getEnv("ROUTER_API_KEY", ""),
			Timeout:      getEnvAsDuration("ROUTER_TIMEOUT", "30s"),
			RatePerSec:   getEnvAsInt("ROUTER_RATE_PER_SEC", 5),
			DryRun:       getEnvAsBool("ROUTER_DRY_RUN", true),
			MaxFailures:  getEnvAsInt("ROUTER_MAX_FAILURES", 3),
			OpenDuration: getEnvAsDuration("ROUTER_OPEN_DURATION", "30s"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		// Monitoring
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	switch c.DataSource {
	case "postgres":
		// Database URL is required only when factor data comes from Postgres
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DATA_SOURCE=postgres")
		}
	case "csv":
		if c.FactorCSV == "" {
			return fmt.Errorf("FACTOR_CSV is required when DATA_SOURCE=csv")
		}
	default:
		return fmt.Errorf("DATA_SOURCE must be one of: postgres, csv")
	}

	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Env == "production" && c.Router.DryRun {
		return fmt.Errorf("ROUTER_DRY_RUN must be false in production")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env", // Current directory
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
