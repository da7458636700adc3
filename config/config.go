package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Model    ModelConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	// Enabled gates the prediction history store; the API serves
	// predictions without a database when it is off.
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins string
}

// ModelConfig points at the artifact files written by a training run and
// read back at API startup.
type ModelConfig struct {
	Dir      string
	DataDir  string
	CacheTTL int // seconds, day-forecast cache
}

func (m ModelConfig) ModelPath() string {
	return filepath.Join(m.Dir, "trained", "trained_model.json")
}

func (m ModelConfig) DelayRatesPath() string {
	return filepath.Join(m.Dir, "delay_rates.json")
}

func (m ModelConfig) ConfigPath() string {
	return filepath.Join(m.Dir, "model_config.json")
}

func (m ModelConfig) MetricsPath() string {
	return filepath.Join(m.Dir, "metrics", "test_metrics.json")
}

func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func LoadConfig() (*Config, error) {
	// Optional .env for local development; real env vars win either way.
	_ = godotenv.Load()

	serverPort, err := getIntEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	redisPort, err := getIntEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}

	redisDB, err := getIntEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cacheTTL, err := getIntEnv("FORECAST_CACHE_TTL_SEC", 600)
	if err != nil {
		return nil, fmt.Errorf("invalid FORECAST_CACHE_TTL_SEC: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: serverPort,
		},
		Database: DatabaseConfig{
			Enabled:  getEnv("HISTORY_DB_ENABLED", "false") == "true",
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "subway"),
			Password: getEnv("DB_PASSWORD", "subway_dev_password"),
			Name:     getEnv("DB_NAME", "subway_delays"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     redisPort,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Model: ModelConfig{
			Dir:      getEnv("MODEL_DIR", "models"),
			DataDir:  getEnv("DATA_DIR", "data"),
			CacheTTL: cacheTTL,
		},
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}
