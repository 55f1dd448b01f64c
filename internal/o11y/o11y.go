// Package o11y sets up logging, metrics and tracing for the API process.
package o11y

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"ride-marketplace-api-server/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Observability struct {
	Logger   *slog.Logger
	Tracer   *sdktrace.TracerProvider
	Registry *prometheus.Registry
	Metrics  *Metrics
}

// Setup builds the logger, a private Prometheus registry and a tracer
// provider. Spans are only exported when cfg.Tracing.Endpoint is set.
func Setup(ctx context.Context, cfg config.Config) (*Observability, func(), error) {
	logger := NewLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(
			sdktrace.TraceIDRatioBased(cfg.Tracing.SampleRatio),
		)),
	}
	if cfg.Tracing.Endpoint != "" {
		exporter, err := otlptracehttp.New(ctx, exporterOptions(cfg.Tracing.Endpoint)...)
		if err != nil {
			return nil, func() {}, err
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}
	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("tracer shutdown failed", "error", err)
		}
	}

	return &Observability{
		Logger:   logger,
		Tracer:   tp,
		Registry: registry,
		Metrics:  NewMetrics(registry),
	}, cleanup, nil
}

// exporterOptions accepts either a collector URL (the usual form of
// OTEL_EXPORTER_OTLP_ENDPOINT) or a bare host:port, which is sent over
// plain HTTP.
func exporterOptions(endpoint string) []otlptracehttp.Option {
	if strings.Contains(endpoint, "://") {
		return []otlptracehttp.Option{otlptracehttp.WithEndpointURL(endpoint)}
	}
	return []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	}
}

// NewLogger builds a structured logger writing to w.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levelFromString(level)}
	if strings.EqualFold(format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func levelFromString(level string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
