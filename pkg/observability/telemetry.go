package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/Alijeyrad/myvoice_backend/config"
)

// meterPrefix scopes the domain meters, e.g. "myvoice/registration".
const meterPrefix = "myvoice/"

// requestBuckets are webhook latency boundaries in ms.
var requestBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	// Country is the ISO region the deployment registers patients in.
	Country string

	// Spans are dropped when OTLPEndpoint is empty.
	OTLPEndpoint string
	OTLPInsecure bool
	SamplingRate float64
}

// FromCentralConfig builds Config from the application config.
func FromCentralConfig(c *config.Config) Config {
	cfg := Config{
		ServiceName:    c.Observability.ServiceName,
		ServiceVersion: c.Observability.ServiceVersion,
		Environment:    c.Server.Environment,
		Country:        c.Registration.DefaultRegion,
		SamplingRate:   c.Observability.Tracing.SamplingRate,
	}
	if c.Observability.Tracing.Enabled {
		cfg.OTLPEndpoint = c.Observability.Tracing.OTLPEndpoint
		cfg.OTLPInsecure = c.Observability.Tracing.OTLPInsecure
	}
	return cfg
}

// Provider owns the tracer and meter providers of the process.
type Provider struct {
	TracerProvider     *trace.TracerProvider
	MeterProvider      *metric.MeterProvider
	PrometheusExporter *prometheus.Exporter
}

// InitTelemetry builds the providers with a Prometheus reader and installs
// them globally, along with W3C propagation so spans continue across NATS
// and HTTP hops.
func InitTelemetry(ctx context.Context, cfg Config) (*Provider, error) {
	promExporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	p, err := newProvider(ctx, cfg, promExporter)
	if err != nil {
		return nil, err
	}
	p.PrometheusExporter = promExporter

	otel.SetTracerProvider(p.TracerProvider)
	otel.SetMeterProvider(p.MeterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return p, nil
}

func newProvider(ctx context.Context, cfg Config, reader metric.Reader) (*Provider, error) {
	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp, err := newTracerProvider(ctx, res, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	mp := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(reader),
		metric.WithView(metric.NewView(
			metric.Instrument{Name: "http_server_request_duration_ms"},
			metric.Stream{Aggregation: metric.AggregationExplicitBucketHistogram{Boundaries: requestBuckets}},
		)),
	)

	return &Provider{TracerProvider: tp, MeterProvider: mp}, nil
}

func newResource(cfg Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	}
	if cfg.Country != "" {
		attrs = append(attrs, attribute.String("myvoice.country", cfg.Country))
	}
	// Empty schema URL so the merge keeps the one from Default().
	return resource.Merge(resource.Default(), resource.NewWithAttributes("", attrs...))
}

// newTracerProvider samples root spans at SamplingRate. Child spans follow
// the caller's decision.
func newTracerProvider(ctx context.Context, res *resource.Resource, cfg Config) (*trace.TracerProvider, error) {
	rate := cfg.SamplingRate
	if rate == 0 {
		rate = 1.0
	}

	opts := []trace.TracerProviderOption{
		trace.WithResource(res),
		trace.WithSampler(trace.ParentBased(trace.TraceIDRatioBased(rate))),
	}

	if cfg.OTLPEndpoint != "" {
		exportOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			exportOpts = append(exportOpts, otlptracehttp.WithInsecure())
		}
		exporter, err := otlptracehttp.New(ctx, exportOpts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		opts = append(opts, trace.WithBatcher(exporter))
	}

	return trace.NewTracerProvider(opts...), nil
}

// Shutdown flushes both providers. Both are shut down even if one fails.
func (p *Provider) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var errs []error
	if err := p.TracerProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer provider: %w", err))
	}
	if err := p.MeterProvider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("meter provider: %w", err))
	}
	return errors.Join(errs...)
}
