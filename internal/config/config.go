package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"dipanshu.dev/internal/contact"
)

// Session store backends
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	ServerAddr      string        `validate:"required"`
	ContentPath     string
	MediaDir        string
	ShutdownTimeout time.Duration `validate:"gt=0"`
	Relay           RelayConfig
	Session         SessionConfig
	Contact         ContactConfig
	Log             LogConfig
}

// RelayConfig holds the form relay settings
type RelayConfig struct {
	URL string `validate:"required,url"`
	// Timeout stays under a minute: a stored "sending" form older than
	// that is treated as lost and may be submitted again
	Timeout time.Duration `validate:"gt=0,lt=1m"`
}

// SessionConfig selects and tunes the session store
type SessionConfig struct {
	Store         string        `validate:"oneof=memory redis"`
	TTL           time.Duration `validate:"gt=0"`
	RedisAddr     string        `validate:"required_if=Store redis"`
	RedisPassword string
	RedisDB       int `validate:"gte=0"`
}

// ContactConfig limits how often one client may submit
type ContactConfig struct {
	RatePerMinute int `validate:"gt=0"`
	Burst         int `validate:"gt=0"`
	// TrustProxy keys the limit on X-Forwarded-For; only set it behind
	// a reverse proxy that appends the client address
	TrustProxy bool
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string `validate:"oneof=trace debug info warn error"`
	Pretty bool
}

// Load reads .env when present, then the environment
func Load() (*Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds and validates a Config from environment variables
func FromEnv() (*Config, error) {
	var errs []error

	cfg := &Config{
		ServerAddr:      getEnv("SERVER_ADDR", ":8080"),
		ContentPath:     getEnv("CONTENT_PATH", ""),
		MediaDir:        getEnv("MEDIA_DIR", "media"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs),
		Relay: RelayConfig{
			URL:     getEnv("RELAY_URL", contact.DefaultRelayURL),
			Timeout: getEnvAsDuration("RELAY_TIMEOUT", 10*time.Second, &errs),
		},
		Session: SessionConfig{
			Store:         strings.ToLower(getEnv("SESSION_STORE", StoreMemory)),
			TTL:           getEnvAsDuration("SESSION_TTL", 30*time.Minute, &errs),
			RedisAddr:     getEnv("REDIS_ADDR", ""),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0, &errs),
		},
		Contact: ContactConfig{
			RatePerMinute: getEnvAsInt("CONTACT_RATE_PER_MIN", 6, &errs),
			Burst:         getEnvAsInt("CONTACT_BURST", 3, &errs),
			TrustProxy:    getEnvAsBool("TRUST_PROXY", false, &errs),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Pretty: getEnvAsBool("LOG_PRETTY", false, &errs),
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		fe := ves[0]
		return fmt.Errorf("invalid config: %s failed %q", fe.Namespace(), fe.Tag())
	}
	return fmt.Errorf("invalid config: %w", err)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int, errs *[]error) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid integer %q", key, valueStr))
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid duration %q", key, valueStr))
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool, errs *[]error) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid boolean %q", key, valueStr))
		return defaultValue
	}
	return value
}
