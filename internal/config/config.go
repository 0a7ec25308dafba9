package config

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/eshaffer321/constructcycle-go/pkg/constructcycle"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// Config is the environment-driven setup shared by the binaries
type Config struct {
	API     APIConfig
	Session SessionConfig
	Redis   RedisConfig

	LogLevel  string
	SentryDSN string
}

// APIConfig controls how the client talks to the backend
type APIConfig struct {
	BaseURL              string
	Timeout              time.Duration
	RequestsPerSecond    float64
	LogoutOnUnauthorized bool
}

// SessionConfig locates the file session storage
type SessionConfig struct {
	File string
}

// RedisConfig selects redis session storage when Addr is set
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Load reads CONSTRUCTCYCLE_* variables, after a .env file when one exists
func Load() (*Config, error) {
	// Missing .env is the normal case outside local development
	_ = godotenv.Load()

	cfg := &Config{
		API: APIConfig{
			BaseURL:              getEnv("CONSTRUCTCYCLE_BASE_URL", constructcycle.DefaultBaseURL),
			Timeout:              getEnvAsDuration("CONSTRUCTCYCLE_TIMEOUT", 30*time.Second),
			RequestsPerSecond:    getEnvAsFloat("CONSTRUCTCYCLE_REQUESTS_PER_SECOND", 0),
			LogoutOnUnauthorized: getEnvAsBool("CONSTRUCTCYCLE_LOGOUT_ON_UNAUTHORIZED", true),
		},
		Session: SessionConfig{
			File: getEnv("CONSTRUCTCYCLE_SESSION_FILE", defaultSessionFile()),
		},
		Redis: RedisConfig{
			Addr:     getEnv("CONSTRUCTCYCLE_REDIS_ADDR", ""),
			Password: getEnv("CONSTRUCTCYCLE_REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("CONSTRUCTCYCLE_REDIS_DB", 0),
			Prefix:   getEnv("CONSTRUCTCYCLE_REDIS_PREFIX", ""),
		},
		LogLevel:  getEnv("CONSTRUCTCYCLE_LOG_LEVEL", "info"),
		SentryDSN: getEnv("CONSTRUCTCYCLE_SENTRY_DSN", ""),
	}

	return cfg, nil
}

// ClientOptions turns the config into client options. Logs go to w. The
// returned func releases the redis connection pool, if one was opened.
func (c *Config) ClientOptions(w io.Writer) (*constructcycle.ClientOptions, func()) {
	opts := &constructcycle.ClientOptions{
		BaseURL:              c.API.BaseURL,
		Timeout:              c.API.Timeout,
		RequestsPerSecond:    c.API.RequestsPerSecond,
		LogoutOnUnauthorized: c.API.LogoutOnUnauthorized,
		SessionFile:          c.Session.File,
		Logger:               constructcycle.NewConsoleLogger(w, c.LogLevel),
		SentryDSN:            c.SentryDSN,
	}

	cleanup := func() {}
	if c.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
		})
		opts.Storage = constructcycle.NewRedisStorage(rdb, c.Redis.Prefix)
		cleanup = func() { _ = rdb.Close() }
	}

	return opts, cleanup
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".constructcycle-session.json"
	}
	return filepath.Join(dir, "constructcycle", "session.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
