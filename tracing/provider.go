package tracing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Provider manages the tracer provider, span exporter and propagator for
// the service. Construct one at process start and pass it into the request
// path; it is safe for concurrent use.
type Provider struct {
	config         Config
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	propagator     propagation.TextMapPropagator
	shutdownOnce   sync.Once
	shutdown       bool
	mu             sync.RWMutex
}

// New creates a tracing provider with the given configuration.
func New(cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Provider{
		config: cfg,
	}

	if err := p.initTracing(); err != nil {
		return nil, fmt.Errorf("tracing: failed to initialize: %w", err)
	}

	return p, nil
}

func (p *Provider) initTracing() error {
	ctx := context.Background()

	exporter, err := p.createExporter(ctx)
	if err != nil {
		return err
	}

	res, err := p.createResource(ctx)
	if err != nil {
		return err
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(p.createSampler()),
	}

	if exporter != nil {
		// The batcher exports asynchronously on its own schedule and is
		// safe under concurrent span ends from all in-flight requests.
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	p.tracerProvider = sdktrace.NewTracerProvider(opts...)

	otel.SetTracerProvider(p.tracerProvider)

	p.propagator = NewPropagator()
	otel.SetTextMapPropagator(p.propagator)

	p.tracer = p.tracerProvider.Tracer(
		p.config.ServiceName,
		trace.WithInstrumentationVersion(p.config.ServiceVersion),
	)

	return nil
}

func (p *Provider) createExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	switch p.config.Exporter {
	case ExporterOTLP:
		return p.createOTLPExporter(ctx)
	case ExporterZipkin:
		// Zipkin expects an HTTP endpoint like http://localhost:9411/api/v2/spans
		return zipkin.New(p.config.Endpoint)
	case ExporterNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown exporter: %s", p.config.Exporter)
	}
}

func (p *Provider) createOTLPExporter(ctx context.Context) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(p.config.Endpoint),
	}

	if p.config.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	if len(p.config.Headers) > 0 {
		opts = append(opts, otlptracegrpc.WithHeaders(p.config.Headers))
	}

	client := otlptracegrpc.NewClient(opts...)
	return otlptrace.New(ctx, client)
}

func (p *Provider) createResource(ctx context.Context) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(p.config.ServiceName),
	}

	if p.config.ServiceVersion != "" {
		attrs = append(attrs, semconv.ServiceVersion(p.config.ServiceVersion))
	}

	if p.config.Environment != "" {
		attrs = append(attrs, semconv.DeploymentEnvironment(p.config.Environment))
	}

	for k, v := range p.config.ResourceAttributes {
		attrs = append(attrs, attribute.String(k, v))
	}

	return resource.NewWithAttributes(
		semconv.SchemaURL,
		attrs...,
	), nil
}

func (p *Provider) createSampler() sdktrace.Sampler {
	switch p.config.Sampler {
	case SamplerAlways:
		return sdktrace.AlwaysSample()
	case SamplerNever:
		return sdktrace.NeverSample()
	case SamplerRatio:
		return sdktrace.TraceIDRatioBased(p.config.SampleRatio)
	case SamplerParentBased:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	default:
		return sdktrace.AlwaysSample()
	}
}

// Tracer returns the tracer for creating spans.
func (p *Provider) Tracer() trace.Tracer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tracer
}

// TracerProvider returns the underlying tracer provider.
func (p *Provider) TracerProvider() *sdktrace.TracerProvider {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tracerProvider
}

// Propagator returns the text map propagator for context injection and
// extraction.
func (p *Provider) Propagator() propagation.TextMapPropagator {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.propagator
}

// Config returns the provider configuration.
func (p *Provider) Config() Config {
	return p.config
}

// IsEnabled returns true while the provider is active.
func (p *Provider) IsEnabled() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return !p.shutdown && p.tracer != nil
}

// Shutdown gracefully shuts down the provider, flushing any pending spans.
// It should be called when the process exits.
func (p *Provider) Shutdown(ctx context.Context) error {
	var err error
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.shutdown = true
		p.mu.Unlock()

		if p.tracerProvider != nil {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			err = p.tracerProvider.Shutdown(shutdownCtx)
		}
	})
	return err
}

// ForceFlush immediately exports all pending spans.
func (p *Provider) ForceFlush(ctx context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.tracerProvider == nil {
		return nil
	}
	return p.tracerProvider.ForceFlush(ctx)
}
