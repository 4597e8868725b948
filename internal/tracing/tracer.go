// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	"context"
	"net/http"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/contrib/propagators/jaeger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/canonical/membership-service/internal/logging"
)

const serviceName = "membership-service"

// Config selects the span exporter, gRPC collector first, then HTTP, then stdout
type Config struct {
	OtelGRPCEndpoint string
	OtelHTTPEndpoint string
	Enabled          bool

	Logger logging.LoggerInterface
}

func NewConfig(enabled bool, otelGRPCEndpoint, otelHTTPEndpoint string, logger logging.LoggerInterface) *Config {
	return &Config{
		OtelGRPCEndpoint: otelGRPCEndpoint,
		OtelHTTPEndpoint: otelHTTPEndpoint,
		Enabled:          enabled,
		Logger:           logger,
	}
}

func NewNoopConfig() *Config {
	return &Config{Enabled: false}
}

type Tracer struct {
	tracer trace.Tracer

	logger logging.LoggerInterface
}

func (t *Tracer) init(service string, e sdktrace.SpanExporter) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(e),
		sdktrace.WithResource(
			resource.NewWithAttributes(
				semconv.SchemaURL,
				semconv.ServiceNameKey.String(service),
			),
		),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
			jaeger.Jaeger{},
		),
	)

	t.tracer = tp.Tracer(service)
}

func (t *Tracer) Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, spanName, opts...)
}

func (t *Tracer) exporter(cfg *Config) (sdktrace.SpanExporter, error) {
	ctx := context.Background()

	switch {
	case cfg.OtelGRPCEndpoint != "":
		return otlptrace.New(
			ctx,
			otlptracegrpc.NewClient(
				otlptracegrpc.WithEndpoint(cfg.OtelGRPCEndpoint),
				otlptracegrpc.WithInsecure(),
			),
		)
	case cfg.OtelHTTPEndpoint != "":
		return otlptrace.New(
			ctx,
			otlptracehttp.NewClient(
				otlptracehttp.WithEndpoint(cfg.OtelHTTPEndpoint),
				otlptracehttp.WithInsecure(),
			),
		)
	default:
		return stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
	}
}

// NewTracer builds an OTLP tracer, falling back to stdout when no collector is configured
func NewTracer(cfg *Config) *Tracer {
	t := new(Tracer)
	t.logger = cfg.Logger

	if !cfg.Enabled {
		t.tracer = noop.NewTracerProvider().Tracer(serviceName)
		return t
	}

	e, err := t.exporter(cfg)
	if err != nil {
		if t.logger != nil {
			t.logger.Errorf("unable to initialize tracing exporter, tracing disabled: %v", err)
		}
		t.tracer = noop.NewTracerProvider().Tracer(serviceName)
		return t
	}

	t.init(serviceName, e)

	return t
}

// NewNoopTracer returns a tracer that records nothing
func NewNoopTracer() *Tracer {
	return NewTracer(NewNoopConfig())
}

// HTTPMiddleware instruments every request handled by the router
func HTTPMiddleware(handler http.Handler) http.Handler {
	return otelhttp.NewHandler(handler, "server")
}
