package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	Worker  WorkerConfig
	News    NewsConfig
	Oracle  OracleConfig
	Verify  VerifyConfig
	Upload  UploadConfig
	DB      DatabaseConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host      string
	Port      int
	RateLimit int // requests per second, global
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type NewsConfig struct {
	Enabled      bool
	BaseURL      string
	Language     string
	Country      string
	Edition      string
	Region       string // appended to queries and used as the default ingest location
	PollInterval time.Duration
	FetchTimeout time.Duration
}

type OracleConfig struct {
	Command string
	Args    []string
	Timeout time.Duration
}

type VerifyConfig struct {
	// Delay between accepting a citizen submission and the deferred
	// corroboration re-check.
	Delay time.Duration
}

type UploadConfig struct {
	Dir string
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:      getEnv("SERVER_HOST", "localhost"),
			Port:      getEnvInt("SERVER_PORT", 8080),
			RateLimit: getEnvInt("RATE_LIMIT_RPS", 5),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 20),
		},
		News: NewsConfig{
			Enabled:      getEnvBool("NEWS_ENABLED", true),
			BaseURL:      getEnv("NEWS_BASE_URL", "https://news.google.com"),
			Language:     getEnv("NEWS_LANGUAGE", "en-IN"),
			Country:      getEnv("NEWS_COUNTRY", "IN"),
			Edition:      getEnv("NEWS_EDITION", "IN:en"),
			Region:       getEnv("NEWS_REGION", "India"),
			PollInterval: getEnvDuration("NEWS_POLL_INTERVAL", 5*time.Minute),
			FetchTimeout: getEnvDuration("NEWS_FETCH_TIMEOUT", 15*time.Second),
		},
		Oracle: OracleConfig{
			Command: getEnv("ORACLE_COMMAND", "python"),
			Args:    getEnvList("ORACLE_ARGS", []string{"predict_model.py"}),
			Timeout: getEnvDuration("ORACLE_TIMEOUT", 30*time.Second),
		},
		Verify: VerifyConfig{
			Delay: getEnvDuration("VERIFY_DELAY", 10*time.Second),
		},
		Upload: UploadConfig{
			Dir: getEnv("UPLOAD_DIR", "./uploads"),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/disaster-response.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.News.PollInterval < time.Minute {
		return fmt.Errorf("news poll interval must be at least 1 minute")
	}
	if c.Oracle.Timeout <= 0 {
		return fmt.Errorf("oracle timeout must be positive")
	}
	if c.Verify.Delay < 0 {
		return fmt.Errorf("verify delay must not be negative")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	if val := os.Getenv(key); val != "" {
		parts := strings.Split(val, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return fallback
}
