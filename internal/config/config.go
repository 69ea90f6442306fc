package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultAppName         = "VoiceBank"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultTokenTTL        = 24 * time.Hour
	defaultSpeechTimeout   = 60 * time.Second
	defaultSpeechURL       = "https://api.openai.com/v1"
	defaultStartingBalance = "10000"
	tokenTTLHoursEnvVar    = "TOKEN_TTL_HOURS"
	tokenTTLDurEnvVar      = "TOKEN_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
	speechTimeoutEnvVar    = "SPEECH_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName         string
	AppEnv          string
	Port            string
	LogLevel        string
	DatabaseURL     string
	RedisURL        string
	JWTSecret       string
	TokenTTL        time.Duration
	StartingBalance decimal.Decimal
	SpeechAPIURL    string
	SpeechAPIKey    string
	SpeechTimeout   time.Duration
	ShutdownPeriod  time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		TokenTTL:       defaultTokenTTL,
		SpeechAPIURL:   getEnv("SPEECH_API_URL", defaultSpeechURL),
		SpeechAPIKey:   os.Getenv("SPEECH_API_KEY"),
		SpeechTimeout:  defaultSpeechTimeout,
		ShutdownPeriod: defaultShutdownDelay,
	}

	balance, err := decimal.NewFromString(getEnv("STARTING_BALANCE", defaultStartingBalance))
	if err != nil {
		return Config{}, fmt.Errorf("invalid STARTING_BALANCE: %w", err)
	}
	cfg.StartingBalance = balance

	if v := os.Getenv(tokenTTLHoursEnvVar); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", tokenTTLHoursEnvVar, err)
		}
		cfg.TokenTTL = time.Duration(hours) * time.Hour
	} else if v := os.Getenv(tokenTTLDurEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", tokenTTLDurEnvVar, err)
		}
		cfg.TokenTTL = d
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv(speechTimeoutEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", speechTimeoutEnvVar, err)
		}
		cfg.SpeechTimeout = d
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}

	if !cfg.IsDev() && cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether the app runs in a development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
