// Package server provides the shared service lifecycle runner.
// Every cmd/ binary delegates to server.Run for signal handling, config
// loading, observability init, health checks, and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/aelexs/tokenkit/internal/config"
	"github.com/aelexs/tokenkit/internal/domain"
	"github.com/aelexs/tokenkit/internal/observability"
)

const serviceVersion = "0.1.0"

// Params configures a service's lifecycle runner.
type Params struct {
	// Name identifies the service (e.g. "tokend").
	Name string

	// PortFromConfig extracts the HTTP port for this service from config.
	PortFromConfig func(cfg *config.Config) int

	// GRPCPortFromConfig extracts the gRPC port. Nil disables the gRPC server.
	GRPCPortFromConfig func(cfg *config.Config) int

	// Setup wires service handlers onto the HTTP mux and gRPC server before
	// serving starts. The returned cleanup runs after both servers stop.
	Setup func(ctx context.Context, deps SetupDeps) (func(context.Context) error, error)
}

// Listeners lets callers inject pre-bound listeners (port-0 testing).
// Nil fields are bound from config.
type Listeners struct {
	HTTP net.Listener
	GRPC net.Listener
}

// SetupDeps carries the shared infrastructure handed to Params.Setup.
type SetupDeps struct {
	Config     *config.Config
	Logger     *slog.Logger
	HTTPMux    *http.ServeMux
	GRPCServer *grpc.Server // nil when the gRPC server is disabled

	// Interceptors collects gRPC interceptors that Setup builds after the
	// server exists. They run in registration order.
	Interceptors *Interceptors
}

// Run executes the full service lifecycle: signal handling, config loading,
// observability initialization, HTTP and gRPC servers with health checks,
// and graceful shutdown.
func Run(ctx context.Context, p Params, lns Listeners) error {
	// Signal-based cancellation: ctx.Done() closes on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	serviceName := p.Name
	if cfg.OTEL.ServiceName != "" {
		serviceName = cfg.OTEL.ServiceName
	}

	// Structured logging with secret redaction
	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: serviceName,
		Environment: cfg.Environment,
	})

	// --- Startup order: tracer -> metrics -> setup -> servers ---

	tracerProvider, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTEL.Endpoint,
	})
	if err != nil {
		return fmt.Errorf("initialize tracer: %w", err)
	}

	metricsProvider, err := observability.InitMetrics(ctx, observability.MetricsConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTEL.Endpoint,
	})
	if err != nil {
		return fmt.Errorf("initialize metrics: %w", err)
	}

	flushOTEL := func() {
		otelCtx, otelCancel := context.WithTimeout(context.Background(), domain.ShutdownOTELTimeout)
		defer otelCancel()
		if shutdownErr := metricsProvider.Shutdown(otelCtx); shutdownErr != nil {
			logger.Error("failed to shutdown metrics", slog.String("error", shutdownErr.Error()))
		}
		if shutdownErr := tracerProvider.Shutdown(otelCtx); shutdownErr != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", shutdownErr.Error()))
		}
	}

	// Health check shutdown coordination via atomic flag.
	var shuttingDown atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if shuttingDown.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"shutting_down","service":%q}`, p.Name)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","service":%q}`, p.Name)
	})

	interceptors := &Interceptors{}
	var (
		grpcServer   *grpc.Server
		healthServer *health.Server
	)
	if p.GRPCPortFromConfig != nil {
		grpcServer = grpc.NewServer(
			grpc.ChainUnaryInterceptor(interceptors.unary),
			grpc.ChainStreamInterceptor(interceptors.stream),
		)
		healthServer = health.NewServer()
		healthpb.RegisterHealthServer(grpcServer, healthServer)
	}

	cleanup := func(context.Context) error { return nil }
	if p.Setup != nil {
		c, setupErr := p.Setup(ctx, SetupDeps{
			Config:       cfg,
			Logger:       logger,
			HTTPMux:      mux,
			GRPCServer:   grpcServer,
			Interceptors: interceptors,
		})
		if setupErr != nil {
			flushOTEL()
			return fmt.Errorf("setup %s: %w", p.Name, setupErr)
		}
		if c != nil {
			cleanup = c
		}
	}

	httpLn, grpcLn, err := bindListeners(ctx, p, cfg, lns)
	if err != nil {
		flushOTEL()
		return err
	}

	httpServer := &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Structured concurrency via errgroup ---
	g, ctx := errgroup.WithContext(ctx)

	// Serve HTTP
	g.Go(func() error {
		logger.Info("starting HTTP server",
			slog.String("addr", httpLn.Addr().String()),
			slog.String("environment", cfg.Environment),
		)
		if serveErr := httpServer.Serve(httpLn); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return serveErr
		}
		return nil
	})

	// Serve gRPC
	if grpcServer != nil {
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		g.Go(func() error {
			logger.Info("starting gRPC server", slog.String("addr", grpcLn.Addr().String()))
			if serveErr := grpcServer.Serve(grpcLn); serveErr != nil && !errors.Is(serveErr, grpc.ErrServerStopped) {
				return serveErr
			}
			return nil
		})
	}

	// Shutdown trigger: waits for context cancellation, then drains in
	// reverse startup order: gRPC -> HTTP -> setup cleanup -> metrics -> tracer.
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("received shutdown signal, starting graceful shutdown")

		// 1. Mark shutting down; health checks report unavailable
		shuttingDown.Store(true)
		if healthServer != nil {
			healthServer.Shutdown()
		}

		// 2. Drain delay so load balancers observe endpoint removal
		time.Sleep(domain.ShutdownDrainDelay)

		// 3. Drain gRPC, forcing a stop once the budget is spent
		if grpcServer != nil {
			stopGRPC(grpcServer, domain.ShutdownGRPCTimeout)
		}

		// 4. Drain HTTP
		httpCtx, httpCancel := context.WithTimeout(context.Background(), domain.ShutdownHTTPTimeout)
		defer httpCancel()
		if shutdownErr := httpServer.Shutdown(httpCtx); shutdownErr != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", shutdownErr.Error()))
		}

		// 5. Service cleanup
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), domain.ShutdownCleanupTimeout)
		defer cleanupCancel()
		if cleanupErr := cleanup(cleanupCtx); cleanupErr != nil {
			logger.Error("service cleanup error", slog.String("error", cleanupErr.Error()))
		}

		// 6. Flush OTEL (metrics first, then tracer)
		flushOTEL()

		logger.Info("shutdown complete")
		return nil
	})

	return g.Wait()
}

// bindListeners returns the injected listeners or binds new ones from config.
func bindListeners(ctx context.Context, p Params, cfg *config.Config, lns Listeners) (net.Listener, net.Listener, error) {
	lc := &net.ListenConfig{}

	httpLn := lns.HTTP
	if httpLn == nil {
		ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", p.PortFromConfig(cfg)))
		if err != nil {
			return nil, nil, fmt.Errorf("listen http: %w", err)
		}
		httpLn = ln
	}

	if p.GRPCPortFromConfig == nil {
		return httpLn, nil, nil
	}

	grpcLn := lns.GRPC
	if grpcLn == nil {
		ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", p.GRPCPortFromConfig(cfg)))
		if err != nil {
			_ = httpLn.Close()
			return nil, nil, fmt.Errorf("listen grpc: %w", err)
		}
		grpcLn = ln
	}
	return httpLn, grpcLn, nil
}

// stopGRPC attempts GracefulStop and falls back to Stop after timeout.
func stopGRPC(s *grpc.Server, timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		s.Stop()
		<-done
	}
}
