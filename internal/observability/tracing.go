package observability

import (
	"context"
	"fmt"

	"github.com/railzwaylabs/pricematrix/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// TracerProvider wraps the sdk provider; it is nil-safe when tracing is disabled.
type TracerProvider struct {
	*sdktrace.TracerProvider
}

// NewTracerProvider installs a global OTLP tracer provider when OTLP_ENDPOINT is set.
// Without an endpoint the global no-op provider stays in place.
func NewTracerProvider(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*TracerProvider, error) {
	endpoint := cfg.Observability.OTLPEndpoint
	if endpoint == "" {
		log.Info("tracing disabled")
		return &TracerProvider{}, nil
	}

	exporter, err := newExporter(context.Background(), cfg.Observability.OTLPProtocol, endpoint)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.AppName),
			attribute.String("service.version", cfg.AppVersion),
			attribute.String("deployment.environment", cfg.Env),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})

	log.Info("tracing enabled", zap.String("endpoint", endpoint), zap.String("protocol", cfg.Observability.OTLPProtocol))
	return &TracerProvider{TracerProvider: tp}, nil
}

func newExporter(ctx context.Context, protocol, endpoint string) (sdktrace.SpanExporter, error) {
	switch protocol {
	case "grpc":
		exp, err := otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create otlp grpc exporter: %w", err)
		}
		return exp, nil
	default:
		exp, err := otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(endpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("create otlp http exporter: %w", err)
		}
		return exp, nil
	}
}
