package tracing

import (
	"strings"
	"testing"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid minimal config",
			config: Config{
				ServiceName: "test-service",
				Endpoint:    "localhost:4317",
			},
			wantErr: false,
		},
		{
			name: "valid full config",
			config: Config{
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
				Environment:    "test",
				Endpoint:       "localhost:4317",
				Exporter:       ExporterOTLP,
				Insecure:       true,
				Sampler:        SamplerRatio,
				SampleRatio:    0.5,
			},
			wantErr: false,
		},
		{
			name:    "missing service name",
			config:  Config{},
			wantErr: true,
			errMsg:  "ServiceName is required",
		},
		{
			name: "missing endpoint with exporter enabled",
			config: Config{
				ServiceName: "test-service",
				Exporter:    ExporterOTLP,
			},
			wantErr: true,
			errMsg:  "Endpoint is required",
		},
		{
			name: "no endpoint required for none exporter",
			config: Config{
				ServiceName: "test-service",
				Exporter:    ExporterNone,
			},
			wantErr: false,
		},
		{
			name: "invalid exporter type",
			config: Config{
				ServiceName: "test-service",
				Endpoint:    "localhost:4317",
				Exporter:    "invalid",
			},
			wantErr: true,
			errMsg:  "invalid Exporter type",
		},
		{
			name: "invalid sampler type",
			config: Config{
				ServiceName: "test-service",
				Endpoint:    "localhost:4317",
				Sampler:     "invalid",
			},
			wantErr: true,
			errMsg:  "invalid Sampler type",
		},
		{
			name: "sample ratio too low",
			config: Config{
				ServiceName: "test-service",
				Endpoint:    "localhost:4317",
				SampleRatio: -0.1,
			},
			wantErr: true,
			errMsg:  "SampleRatio must be between",
		},
		{
			name: "sample ratio too high",
			config: Config{
				ServiceName: "test-service",
				Endpoint:    "localhost:4317",
				SampleRatio: 1.5,
			},
			wantErr: true,
			errMsg:  "SampleRatio must be between",
		},
		{
			name: "valid zipkin exporter",
			config: Config{
				ServiceName: "test-service",
				Endpoint:    "http://localhost:9411/api/v2/spans",
				Exporter:    ExporterZipkin,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Config.Validate() error = %v, want to contain %v", err, tt.errMsg)
			}
		})
	}
}

func TestConfig_DefaultValues(t *testing.T) {
	cfg := Config{
		ServiceName: "test-service",
		Endpoint:    "localhost:4317",
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Exporter != ExporterOTLP {
		t.Errorf("Default exporter = %v, want %v", cfg.Exporter, ExporterOTLP)
	}

	if cfg.Sampler != SamplerAlways {
		t.Errorf("Default sampler = %v, want %v", cfg.Sampler, SamplerAlways)
	}

	if cfg.SampleRatio != 1.0 {
		t.Errorf("Default sample ratio = %v, want 1.0", cfg.SampleRatio)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "env-service")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("OTEL_INSECURE", "true")
	t.Setenv("OTEL_SAMPLER", "ratio")
	t.Setenv("OTEL_SAMPLE_RATIO", "0.25")

	cfg := FromEnv()

	if cfg.ServiceName != "env-service" {
		t.Errorf("ServiceName = %q, want %q", cfg.ServiceName, "env-service")
	}
	if cfg.Endpoint != "collector:4317" {
		t.Errorf("Endpoint = %q, want %q", cfg.Endpoint, "collector:4317")
	}
	if !cfg.Insecure {
		t.Error("Insecure = false, want true")
	}
	if cfg.Sampler != SamplerRatio {
		t.Errorf("Sampler = %v, want %v", cfg.Sampler, SamplerRatio)
	}
	if cfg.SampleRatio != 0.25 {
		t.Errorf("SampleRatio = %v, want 0.25", cfg.SampleRatio)
	}
}
