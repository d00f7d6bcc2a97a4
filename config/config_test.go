package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.App.Name != "service-c" {
		t.Errorf("App.Name = %q, want service-c", cfg.App.Name)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("Server.Port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Tracing.Endpoint != "tempo:4317" {
		t.Errorf("Tracing.Endpoint = %q, want tempo:4317", cfg.Tracing.Endpoint)
	}
	if !cfg.Tracing.Insecure {
		t.Error("Tracing.Insecure should default to true")
	}
	if cfg.Downstream.ServiceAURL != "http://service-a:8080" {
		t.Errorf("Downstream.ServiceAURL = %q, want http://service-a:8080", cfg.Downstream.ServiceAURL)
	}
	if cfg.Downstream.Timeout != 10*time.Second {
		t.Errorf("Downstream.Timeout = %s, want 10s", cfg.Downstream.Timeout)
	}
	if cfg.Downstream.SimulatedDelay != 2*time.Second {
		t.Errorf("Downstream.SimulatedDelay = %s, want 2s", cfg.Downstream.SimulatedDelay)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_NAME", "service-c-test")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVICE_A_URL", "http://localhost:8081")
	t.Setenv("OTEL_EXPORTER", "none")
	t.Setenv("TIMEOUT_SIMULATION_SECONDS", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.App.Name != "service-c-test" {
		t.Errorf("App.Name = %q, want service-c-test", cfg.App.Name)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Downstream.ServiceAURL != "http://localhost:8081" {
		t.Errorf("Downstream.ServiceAURL = %q, want http://localhost:8081", cfg.Downstream.ServiceAURL)
	}
	if cfg.Downstream.SimulatedDelay != time.Second {
		t.Errorf("Downstream.SimulatedDelay = %s, want 1s", cfg.Downstream.SimulatedDelay)
	}
}

func TestLoad_ServiceNameFallback(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "service-c-otel")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.App.Name != "service-c-otel" {
		t.Errorf("App.Name = %q, want OTEL_SERVICE_NAME fallback", cfg.App.Name)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty app name",
			mutate:  func(c *Config) { c.App.Name = "" },
			wantErr: "APP_NAME",
		},
		{
			name:    "port too large",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "invalid PORT",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid LOG_LEVEL",
		},
		{
			name:    "bad exporter",
			mutate:  func(c *Config) { c.Tracing.Exporter = "jaeger" },
			wantErr: "invalid OTEL_EXPORTER",
		},
		{
			name:    "bad sampler",
			mutate:  func(c *Config) { c.Tracing.Sampler = "sometimes" },
			wantErr: "invalid OTEL_SAMPLER",
		},
		{
			name:    "ratio out of range",
			mutate:  func(c *Config) { c.Tracing.SampleRatio = 1.5 },
			wantErr: "OTEL_SAMPLE_RATIO",
		},
		{
			name:    "empty downstream url",
			mutate:  func(c *Config) { c.Downstream.ServiceAURL = "" },
			wantErr: "SERVICE_A_URL",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Downstream.Timeout = 0 },
			wantErr: "DOWNSTREAM_TIMEOUT_SECONDS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	for _, want := range []string{"APP_NAME", "PORT", "LOG_LEVEL", "SERVICE_A_URL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error should mention %s: %v", want, err)
		}
	}
}
