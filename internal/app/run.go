package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/your-org/sitegen/internal/audit"
	"github.com/your-org/sitegen/internal/config"
	"github.com/your-org/sitegen/internal/metrics"
	"github.com/your-org/sitegen/internal/provider"
	"github.com/your-org/sitegen/internal/router"
	"github.com/your-org/sitegen/internal/trace"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Runtime bundles the collaborators built from a Config. Close releases the
// tracer and the metrics endpoint.
type Runtime struct {
	Registry *provider.Registry
	Router   *router.Router
	Metrics  metrics.Recorder
	Audit    *audit.Logger

	closers []func(context.Context) error
}

func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// BuildRuntime wires the registry, router, tracing and metrics for cfg.
// extra recorders (for example an in-memory one used by the CLI) receive
// every observation alongside Prometheus.
func BuildRuntime(ctx context.Context, cfg config.Config, logger *zap.Logger, extra ...metrics.Recorder) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry, err := provider.NewRegistry(cfg.Providers)
	if err != nil {
		return nil, fmt.Errorf("build provider registry: %w", err)
	}

	r, err := router.New(registry, router.Config{Timeout: cfg.ProviderTimeout})
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}
	r.SetLogger(logger.Named("router"))

	rt := &Runtime{Registry: registry, Router: r, Audit: audit.NewLogger(cfg.AuditLogPath)}

	otelRuntime, err := trace.Setup(ctx, trace.ServiceName, trace.Options{Enabled: cfg.TraceEnabled, Endpoint: cfg.TraceEndpoint})
	if err != nil {
		return nil, fmt.Errorf("setup tracing: %w", err)
	}
	rt.closers = append(rt.closers, otelRuntime.Shutdown)
	r.SetTracer(otelRuntime.Tracer)

	recorders := append([]metrics.Recorder(nil), extra...)
	if cfg.MetricsEnabled {
		promRegistry := prometheus.NewRegistry()
		promRecorder, err := metrics.NewPrometheusRecorder(promRegistry)
		if err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("setup prometheus recorder: %w", err)
		}
		srv, err := metrics.StartPrometheusServer(cfg.MetricsAddr, promRegistry)
		if err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("start metrics endpoint: %w", err)
		}
		rt.closers = append(rt.closers, func(ctx context.Context) error { return metrics.StopServer(ctx, srv) })
		logger.Info("metrics endpoint listening", zap.String("addr", srv.Addr))
		recorders = append(recorders, promRecorder)
	}
	switch len(recorders) {
	case 0:
		rt.Metrics = metrics.NoopRecorder{}
	case 1:
		rt.Metrics = recorders[0]
	default:
		rt.Metrics = metrics.NewMultiRecorder(recorders...)
	}
	r.SetMetricsRecorder(rt.Metrics)

	missing := 0
	for _, pc := range registry.All() {
		if !pc.HasCredential() {
			missing++
			logger.Warn("provider has no credential", zap.String("provider", pc.Key), zap.String("env", pc.CredentialEnv))
		}
	}
	if missing == len(registry.Keys()) {
		logger.Warn("no provider credentials configured; every AI call will fail until keys are added to .env")
	}
	return rt, nil
}

// Run serves the HTTP API until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	rt, err := BuildRuntime(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := rt.Close(closeCtx); err != nil {
			logger.Warn("runtime shutdown", zap.Error(err))
		}
	}()

	srv := NewServer(rt.Router, rt.Registry, Options{
		Logger:    logger.Named("http"),
		Metrics:   rt.Metrics,
		Audit:     rt.Audit,
		StaticDir: cfg.StaticDir,
	})

	logger.Info("server listening",
		zap.String("addr", cfg.Addr),
		zap.Strings("available", rt.Registry.Available()),
		zap.Duration("provider_timeout", cfg.ProviderTimeout),
	)
	err = StartServer(ctx, cfg.Addr, srv.Handler(), shutdownTimeout)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve http: %w", err)
	}
	return nil
}
