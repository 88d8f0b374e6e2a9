package tracer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const serviceName = "GeoGuide"

// MetricsServer configures the Prometheus scrape listener.
type MetricsServer struct {
	Port      string
	EnableTLS bool
	CertFile  string
	KeyFile   string
}

func (m MetricsServer) validate() error {
	if m.Port == "" {
		return errors.New("metrics port is required")
	}
	if m.EnableTLS && (m.CertFile == "" || m.KeyFile == "") {
		return errors.New("metrics TLS requires certFile and keyFile")
	}
	return nil
}

// InitTracingAndMetrics installs the global tracer and meter providers and
// serves the Prometheus scrape endpoint, over TLS when enabled. The returned
// function flushes the providers and stops the listener.
func InitTracingAndMetrics(opts MetricsServer, logger *slog.Logger) (func(context.Context) error, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(serviceName),
	)

	tp := trace.NewTracerProvider(trace.WithResource(res))
	otel.SetTracerProvider(tp)

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	otel.SetMeterProvider(mp)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", opts.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Starting metrics server", slog.String("address", srv.Addr), slog.Bool("tls", opts.EnableTLS))
		var err error
		if opts.EnableTLS {
			err = srv.ListenAndServeTLS(opts.CertFile, opts.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server error", slog.Any("error", err))
		}
	}()

	return func(ctx context.Context) error {
		return errors.Join(
			srv.Shutdown(ctx),
			mp.Shutdown(ctx),
			tp.Shutdown(ctx),
		)
	}, nil
}
