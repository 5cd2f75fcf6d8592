package instrument

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const defaultMetricsInterval = 30 * time.Second

// Instrumentation hands out tracers and meters to modules.
type Instrumentation interface {
	Tracer(name string) trace.Tracer
	Meter(name string) metric.Meter
	Shutdown(ctx context.Context) error
}

// Config drives OpenTelemetry initialization.
type Config struct {
	Enabled          bool
	ServiceName      string
	ServiceVersion   string
	Environment      string
	OTLPEndpoint     string
	OTLPSecure       bool
	TraceSampleRatio float64 // clamped to [0, 1]
	MetricsInterval  time.Duration
	MaskFields       []string
	LogLevel         string
}

// New installs the default slog logger and, when enabled, OTLP exporters for
// traces, metrics and logs. The W3C trace context propagator is registered
// either way so passcode events carry the request trace across the broker.
func New(ctx context.Context, cfg *Config) (Instrumentation, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.Enabled {
		SetupLogging(cfg.ServiceName, cfg.LogLevel, nil, cfg.MaskFields)
		return NewNoop(), nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
		semconv.DeploymentEnvironmentKey.String(cfg.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	exp, err := newExporters(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ratio := max(0, min(1, cfg.TraceSampleRatio))
	o := &otelInstrumentation{
		tracerProvider: sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
			sdktrace.WithBatcher(exp.trace),
		),
		meterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp.metric,
				sdkmetric.WithInterval(lo.CoalesceOrEmpty(cfg.MetricsInterval, defaultMetricsInterval)))),
		),
		loggerProvider: sdklog.NewLoggerProvider(
			sdklog.WithResource(res),
			sdklog.WithProcessor(sdklog.NewBatchProcessor(exp.log)),
		),
	}

	otel.SetTracerProvider(o.tracerProvider)
	otel.SetMeterProvider(o.meterProvider)
	SetupLogging(cfg.ServiceName, cfg.LogLevel, o.loggerProvider, cfg.MaskFields)

	return o, nil
}

type exporters struct {
	trace  *otlptrace.Exporter
	metric *otlpmetricgrpc.Exporter
	log    *otlploggrpc.Exporter
}

func newExporters(ctx context.Context, cfg *Config) (*exporters, error) {
	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint)}
	logOpts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.OTLPEndpoint)}
	if !cfg.OTLPSecure {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
		logOpts = append(logOpts, otlploggrpc.WithInsecure())
	}

	var (
		exp exporters
		err error
	)
	if exp.trace, err = otlptracegrpc.New(ctx, traceOpts...); err != nil {
		return nil, fmt.Errorf("otlp trace exporter: %w", err)
	}
	if exp.metric, err = otlpmetricgrpc.New(ctx, metricOpts...); err != nil {
		return nil, fmt.Errorf("otlp metric exporter: %w", err)
	}
	if exp.log, err = otlploggrpc.New(ctx, logOpts...); err != nil {
		return nil, fmt.Errorf("otlp log exporter: %w", err)
	}

	return &exp, nil
}

type otelInstrumentation struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	loggerProvider *sdklog.LoggerProvider
}

func (o *otelInstrumentation) Tracer(name string) trace.Tracer {
	return o.tracerProvider.Tracer(name)
}

func (o *otelInstrumentation) Meter(name string) metric.Meter {
	return o.meterProvider.Meter(name)
}

// Shutdown flushes pending spans, metrics and log records.
func (o *otelInstrumentation) Shutdown(ctx context.Context) error {
	return errors.Join(
		o.tracerProvider.Shutdown(ctx),
		o.meterProvider.Shutdown(ctx),
		o.loggerProvider.Shutdown(ctx),
	)
}

// NewNoop returns an Instrumentation that records nothing, for tests and for
// running with telemetry disabled.
func NewNoop() Instrumentation {
	return noopInstrumentation{}
}

type noopInstrumentation struct{}

func (noopInstrumentation) Tracer(name string) trace.Tracer {
	return tracenoop.NewTracerProvider().Tracer(name)
}

func (noopInstrumentation) Meter(name string) metric.Meter {
	return metricnoop.NewMeterProvider().Meter(name)
}

func (noopInstrumentation) Shutdown(context.Context) error { return nil }
