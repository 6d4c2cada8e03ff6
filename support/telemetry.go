package support

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"google.golang.org/grpc/credentials"
)

const ServiceName = "pearls-treats"

func ConsoleExporter() (trace.SpanExporter, error) {
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

func OTLPExporter(ctx context.Context, endpoint string, headers map[string]string) (*otlptrace.Exporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithHeaders(headers),
		otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")),
	}

	client := otlptracegrpc.NewClient(opts...)
	return otlptrace.New(ctx, client)
}

func JaegerExporter(url string) (*jaeger.Exporter, error) {
	return jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(url)))
}

// Tracing installs a global tracer provider for the configured exporter. The
// returned function flushes and stops it.
func Tracing(ctx context.Context, cfg Config) (func(), error) {
	var exporter trace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case ConsoleTraces:
		exporter, err = ConsoleExporter()
	case OTLPTraces:
		exporter, err = OTLPExporter(ctx, cfg.OTLPEndpoint, cfg.Headers())
	case JaegerTraces:
		exporter, err = JaegerExporter(cfg.JaegerURL)
	default:
		return func() {}, nil
	}
	if err != nil {
		return nil, err
	}

	provider := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(ServiceName),
			semconv.ServiceInstanceIDKey.String(cfg.ServerName),
		)),
	)
	otel.SetTracerProvider(provider)

	return func() {
		_ = provider.Shutdown(context.Background())
	}, nil
}
