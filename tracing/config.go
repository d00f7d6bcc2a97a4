// Package tracing provides distributed tracing for the service: trace
// context extraction and injection (W3C trace-context + baggage), repair of
// malformed propagation headers, correlation-id resolution, span helpers and
// the HTTP middleware that binds all of it to each request.
//
// Usage:
//
//	provider, err := tracing.New(tracing.Config{
//	    ServiceName: "service-c",
//	    Endpoint:    "tempo:4317",
//	    Insecure:    true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Shutdown(context.Background())
//
//	router.Use(provider.Middleware(logger))
package tracing

import (
	"errors"
	"os"
	"strconv"
)

// ExporterType defines the span exporter to use.
type ExporterType string

const (
	// ExporterOTLP exports to an OTLP-compatible collector over gRPC.
	ExporterOTLP ExporterType = "otlp"
	// ExporterZipkin exports directly to Zipkin.
	ExporterZipkin ExporterType = "zipkin"
	// ExporterNone disables exporting (useful for testing).
	ExporterNone ExporterType = "none"
)

// SamplerType defines the sampling strategy.
type SamplerType string

const (
	// SamplerAlways samples all traces.
	SamplerAlways SamplerType = "always"
	// SamplerNever samples no traces.
	SamplerNever SamplerType = "never"
	// SamplerRatio samples a percentage of traces.
	SamplerRatio SamplerType = "ratio"
	// SamplerParentBased respects the parent span's sampling decision.
	SamplerParentBased SamplerType = "parent"
)

// Config holds tracing configuration.
type Config struct {
	// ServiceName identifies this service in traces. Required.
	ServiceName string

	// ServiceVersion is the version of this service (optional).
	ServiceVersion string

	// Environment identifies the deployment environment.
	Environment string

	// Endpoint is the collector endpoint (e.g. "tempo:4317" for OTLP).
	// Required unless Exporter is ExporterNone.
	Endpoint string

	// Exporter selects the span exporter. Defaults to OTLP.
	Exporter ExporterType

	// Insecure disables TLS for the exporter connection.
	Insecure bool

	// Sampler selects the sampling strategy. Defaults to SamplerAlways.
	Sampler SamplerType

	// SampleRatio is the sampling ratio when Sampler is SamplerRatio.
	// Value between 0.0 and 1.0. Defaults to 1.0.
	SampleRatio float64

	// Headers are additional headers to send with exports.
	Headers map[string]string

	// ResourceAttributes are additional attributes added to all spans.
	ResourceAttributes map[string]string
}

// FromEnv builds a Config from the conventional OTEL_* environment variables.
func FromEnv() Config {
	sampleRatio := 1.0
	if ratio := os.Getenv("OTEL_SAMPLE_RATIO"); ratio != "" {
		if parsed, err := strconv.ParseFloat(ratio, 64); err == nil {
			sampleRatio = parsed
		}
	}

	cfg := Config{
		ServiceName:    os.Getenv("OTEL_SERVICE_NAME"),
		ServiceVersion: os.Getenv("OTEL_SERVICE_VERSION"),
		Environment:    os.Getenv("OTEL_ENVIRONMENT"),
		Endpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Exporter:       ExporterType(os.Getenv("OTEL_EXPORTER")),
		Insecure:       os.Getenv("OTEL_INSECURE") == "true",
		SampleRatio:    sampleRatio,
	}

	switch os.Getenv("OTEL_SAMPLER") {
	case "never":
		cfg.Sampler = SamplerNever
	case "ratio":
		cfg.Sampler = SamplerRatio
	case "parent":
		cfg.Sampler = SamplerParentBased
	default:
		cfg.Sampler = SamplerAlways
	}

	return cfg
}

// Validate checks that the configuration is valid and applies defaults.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return errors.New("tracing: ServiceName is required")
	}

	if c.Exporter == "" {
		c.Exporter = ExporterOTLP
	}

	switch c.Exporter {
	case ExporterOTLP, ExporterZipkin, ExporterNone:
	default:
		return errors.New("tracing: invalid Exporter type: " + string(c.Exporter))
	}

	if c.Exporter != ExporterNone && c.Endpoint == "" {
		return errors.New("tracing: Endpoint is required when exporter is enabled")
	}

	if c.Sampler == "" {
		c.Sampler = SamplerAlways
	}

	switch c.Sampler {
	case SamplerAlways, SamplerNever, SamplerRatio, SamplerParentBased:
	default:
		return errors.New("tracing: invalid Sampler type: " + string(c.Sampler))
	}

	if c.SampleRatio == 0 {
		c.SampleRatio = 1.0
	}

	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return errors.New("tracing: SampleRatio must be between 0.0 and 1.0")
	}

	return nil
}
