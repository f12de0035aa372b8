package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"ariproxy/internal/callcontext"
	"ariproxy/internal/config"
	"ariproxy/internal/constants"
	"ariproxy/internal/logger"
	"ariproxy/internal/metering"
	"ariproxy/internal/ops"
	"ariproxy/internal/persistence"
	"ariproxy/internal/pipeline"
	"ariproxy/internal/source"
	"ariproxy/pkg/bootstrap"
	"ariproxy/pkg/health"
	"ariproxy/pkg/logging"
	"ariproxy/pkg/metrics"
	"ariproxy/pkg/ratelimit"
	"ariproxy/pkg/tracing"
)

type App struct {
	*bootstrap.Base
	dbConnector    *bootstrap.DatabaseConnector
	store          persistence.KeyValueStore[string, string]
	provider       *callcontext.Provider
	metering       *metering.Service
	source         *source.WebSocketSource
	pipeline       *pipeline.Pipeline
	tracerProvider *tracing.TracerProvider
	server         *http.Server

	stop context.CancelFunc
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName(constants.ServiceName)
	}
	return &App{
		Base:        bootstrap.NewBase(cfg, log),
		dbConnector: bootstrap.NewDatabaseConnector(cfg, log),
		stop:        func() {},
	}
}

func (a *App) Initialize(ctx context.Context) error {
	tp, err := tracing.Init(a.Config.Tracing, constants.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	a.tracerProvider = tp

	metrics.RegisterPipelineMetrics()
	metrics.RegisterPersistenceMetrics()
	metrics.RegisterTransportMetrics()
	if a.Config.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	a.metering = metering.NewService(a.Config.Metrics.InboxSize, a.Config.Metrics.ResolveConcurrency, a.Logger)

	store, err := a.dbConnector.OpenCallContextStore(ctx, a.metering)
	if err != nil {
		return fmt.Errorf("failed to initialize persistence: %w", err)
	}
	a.store = store

	a.provider = callcontext.NewProvider(a.store, a.Config.CallContext.InboxSize, a.Logger)
	resolver := callcontext.NewResolver(a.provider, a.Config.CallContext.ResolutionTimeout)

	a.InitSink()
	a.source = source.NewWebSocketSource(a.Config.Ari, a.Logger)

	if err := a.initPipeline(resolver); err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	a.initHTTPServer()
	return nil
}

func (a *App) initPipeline(resolver *callcontext.Resolver) error {
	router, err := pipeline.NewRouter(
		a.Config.Kafka.CommandsTopic,
		a.Config.Kafka.EventsAndResponsesTopic,
		a.Config.Pipeline.Routing,
	)
	if err != nil {
		return err
	}
	if unknown := router.UnknownOverrides(); len(unknown) > 0 {
		a.Logger.Warnw("Routing overrides name unknown ARI message types", "types", unknown)
	}

	throttle := ratelimit.NewThrottle(ratelimit.Config{
		RPS:   a.Config.Pipeline.Throttle.RPS,
		Burst: a.Config.Pipeline.Throttle.Burst,
	})

	a.pipeline = pipeline.New(a.Config.Pipeline, router, resolver, a.metering, a.Sink, a.Logger,
		pipeline.WithThrottle(throttle),
		pipeline.WithApplicationReplacedHandler(func() {
			a.Logger.Warnw("ARI application replaced by another client, stopping",
				"application", a.Config.Ari.Application,
			)
			a.stop()
		}),
	)
	return nil
}

func (a *App) initHTTPServer() {
	registry := health.NewCheckerRegistry(constants.HealthCheckTimeout)
	registry.Register(a.store)
	registry.Register(a.provider)
	registry.Register(a.Sink)
	registry.Register(a.source)

	a.server = ops.NewServer(a.Config.Server.Port, ops.NewRouter(registry, a.Logger, constants.ServiceName))
}

func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.stop = cancel
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)
	frames := make(chan []byte, a.Config.Pipeline.Concurrency)

	g.Go(func() error {
		return a.provider.Run(gCtx)
	})
	g.Go(func() error {
		return a.metering.Run(gCtx)
	})
	g.Go(func() error {
		return a.source.Run(gCtx, frames)
	})
	g.Go(func() error {
		return a.pipeline.Run(gCtx, frames)
	})

	g.Go(func() error {
		a.Logger.InfowCtx(ctx, "HTTP server starting", "port", a.Config.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if err == nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx := logging.WithServiceName(ctx, constants.ServiceName)
	a.Logger.InfowCtx(shutdownCtx, "Shutting down ARI proxy")

	additionalShutdown := func(ctx context.Context) []error {
		var errs []error

		if a.store != nil {
			if err := a.store.Close(); err != nil {
				errs = append(errs, fmt.Errorf("store close error: %w", err))
			}
		}

		if a.tracerProvider != nil {
			if err := a.tracerProvider.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider shutdown error: %w", err))
			}
		}

		return errs
	}

	return a.Base.Shutdown(ctx, additionalShutdown)
}
