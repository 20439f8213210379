package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	HTTPAddr string
	LogLevel string

	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	SchedulerTick  time.Duration
	RequestTimeout time.Duration

	ChromeBin string

	Platforms PlatformCredentials
}

// PlatformCredentials enumerates the secrets each API client needs. A
// platform whose credentials are incomplete gets an unsupported client.
type PlatformCredentials struct {
	Twitter  TwitterCredentials
	Facebook FacebookCredentials
}

// TwitterCredentials carries an OAuth 2.0 user-context token for the X API v2.
type TwitterCredentials struct {
	AccessToken string
	BaseURL     string
}

// Complete reports whether the Twitter client can be built.
func (c TwitterCredentials) Complete() bool {
	return c.AccessToken != ""
}

// FacebookCredentials carries a page access token for the Graph API.
type FacebookCredentials struct {
	AccessToken string
	BaseURL     string
}

// Complete reports whether the Facebook client can be built.
func (c FacebookCredentials) Complete() bool {
	return c.AccessToken != ""
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "analytics"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "analytics123"),
		PostgresDB:       getEnv("POSTGRES_DB", "social_analytics"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		HTTPAddr: getEnv("HTTP_ADDR", ":5000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:    getEnvInt("RATE_LIMIT_MS", 500),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),
		SchedulerTick:  time.Duration(getEnvInt("SCHEDULER_TICK_MS", 1000)) * time.Millisecond,
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		ChromeBin: getEnv("CHROME_BIN", ""),

		Platforms: PlatformCredentials{
			Twitter: TwitterCredentials{
				AccessToken: getEnv("TWITTER_ACCESS_TOKEN", ""),
				BaseURL:     getEnv("TWITTER_API_URL", "https://api.twitter.com"),
			},
			Facebook: FacebookCredentials{
				AccessToken: getEnv("FACEBOOK_ACCESS_TOKEN", ""),
				BaseURL:     getEnv("FACEBOOK_GRAPH_URL", "https://graph.facebook.com/v19.0"),
			},
		},
	}
}

// Validate checks values that would break the service at runtime.
// Missing platform credentials are not an error.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxConcurrency < 1 {
		errs = append(errs, fmt.Errorf("MAX_CONCURRENCY must be >= 1, got %d", c.MaxConcurrency))
	}
	if c.RateLimitMs < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_MS must be >= 0, got %d", c.RateLimitMs))
	}
	if c.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("MAX_RETRIES must be >= 1, got %d", c.MaxRetries))
	}
	if c.SchedulerTick <= 0 {
		errs = append(errs, fmt.Errorf("SCHEDULER_TICK_MS must be > 0, got %v", c.SchedulerTick))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT_SEC must be > 0, got %v", c.RequestTimeout))
	}
	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP_ADDR must not be empty"))
	}
	return errors.Join(errs...)
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
