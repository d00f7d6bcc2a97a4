// Package config provides structured configuration with validation for the
// service. It groups related configuration into logical sections and
// validates all values at startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration grouped by domain.
// Use Load() to create a validated Config from environment variables.
type Config struct {
	App        AppConfig
	Server     ServerConfig
	Logging    LoggingConfig
	Tracing    TracingConfig
	Downstream DownstreamConfig
}

// AppConfig holds core application settings.
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string // debug, info, warning, error
}

// TracingConfig holds span export settings.
type TracingConfig struct {
	Endpoint    string
	Exporter    string // otlp, zipkin, none
	Insecure    bool
	Sampler     string // always, never, ratio, parent
	SampleRatio float64
}

// DownstreamConfig holds settings for the downstream service this one calls.
type DownstreamConfig struct {
	ServiceAURL string
	Timeout     time.Duration

	// SimulatedDelay is how long the timeout-simulation endpoint blocks.
	// Demo-only; kept short so the endpoint is exercisable in tests.
	SimulatedDelay time.Duration
}

// Load reads configuration from environment variables and validates it.
// Returns an error if required values are missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.App.Name = envDefault("APP_NAME", envDefault("OTEL_SERVICE_NAME", "service-c"))
	cfg.App.Version = envDefault("APP_VERSION", "1.0.0")
	cfg.App.Environment = envDefault("ENVIRONMENT", "production")

	cfg.Server.Port = envInt("PORT", 5000)

	cfg.Logging.Level = envDefault("LOG_LEVEL", "info")

	cfg.Tracing.Endpoint = envDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "tempo:4317")
	cfg.Tracing.Exporter = envDefault("OTEL_EXPORTER", "otlp")
	cfg.Tracing.Insecure = envBool("OTEL_INSECURE", true)
	cfg.Tracing.Sampler = envDefault("OTEL_SAMPLER", "always")
	cfg.Tracing.SampleRatio = envFloat("OTEL_SAMPLE_RATIO", 1.0)

	cfg.Downstream.ServiceAURL = envDefault("SERVICE_A_URL", "http://service-a:8080")
	cfg.Downstream.Timeout = time.Duration(envInt("DOWNSTREAM_TIMEOUT_SECONDS", 10)) * time.Second
	cfg.Downstream.SimulatedDelay = time.Duration(envInt("TIMEOUT_SIMULATION_SECONDS", 2)) * time.Second

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all configuration values are valid.
// Returns a combined error with all validation failures.
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "APP_NAME cannot be empty")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid PORT: %d (must be 1-65535)", c.Server.Port))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "warning": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("invalid LOG_LEVEL: %s", c.Logging.Level))
	}

	validExporters := map[string]bool{"otlp": true, "zipkin": true, "none": true}
	if !validExporters[strings.ToLower(c.Tracing.Exporter)] {
		errs = append(errs, fmt.Sprintf("invalid OTEL_EXPORTER: %s", c.Tracing.Exporter))
	}

	validSamplers := map[string]bool{"always": true, "never": true, "ratio": true, "parent": true}
	if !validSamplers[strings.ToLower(c.Tracing.Sampler)] {
		errs = append(errs, fmt.Sprintf("invalid OTEL_SAMPLER: %s", c.Tracing.Sampler))
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, "OTEL_SAMPLE_RATIO must be between 0.0 and 1.0")
	}

	if c.Downstream.ServiceAURL == "" {
		errs = append(errs, "SERVICE_A_URL cannot be empty")
	}

	if c.Downstream.Timeout <= 0 {
		errs = append(errs, "DOWNSTREAM_TIMEOUT_SECONDS must be positive")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors: " + strings.Join(errs, "; "))
	}

	return nil
}

// Helper functions

func envDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func envInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
