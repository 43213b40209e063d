package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"healthdash/apiclient"
	"healthdash/config"
	"healthdash/handler"
	"healthdash/handler/platforms"
	"healthdash/internal/health/gateway"
	"healthdash/internal/health/history"
	"healthdash/internal/health/usecase"
	"healthdash/internal/health/worker"
	"healthdash/observability"
	"healthdash/observability/types"
	"healthdash/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := loadConfiguration()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()

	if err != nil {
		log.Fatalf("Failed to run: %v", err)
	}
}

// run wires and starts the application. Every resource acquired here is
// released before it returns, including on error paths.
func run(ctx context.Context, cfg *config.Config) error {
	deps, err := initializeDependencies(ctx, cfg)
	if deps != nil {
		defer deps.close()
	}
	if err != nil {
		return err
	}

	app := buildApplication(cfg, deps)

	if err := startApplication(ctx, cfg, app); err != nil {
		app.logger.Error(ctx, "Application stopped with error", err, nil)
		return err
	}
	return nil
}

// Dependencies holds the initialized infrastructure.
type Dependencies struct {
	obs      observability.Provider
	registry *prometheus.Registry
	api      *apiclient.Client
	history  usecase.SnapshotStore
}

// Application holds the assembled handler.
type Application struct {
	handler *handler.Handler
	metrics http.Handler
	logger  types.Logger
}

func loadConfiguration() (*config.Config, error) {
	cfgProvider := config.GetProvider()
	if err := cfgProvider.Load(); err != nil {
		return nil, err
	}
	return cfgProvider.Get()
}

// initializeDependencies returns the partially built Dependencies together
// with any error so the caller can release what was acquired.
func initializeDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obs := observability.NewProvider(&observability.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		LogLevel:    cfg.LogLevel,
		Registerer:  registry,
		AdditionalFields: types.Fields{
			"version": cfg.Version,
		},
	})

	logStartup(ctx, cfg, obs)

	deps := &Dependencies{obs: obs, registry: registry}

	snapshots, err := initializeHistory(ctx, cfg, obs)
	if err != nil {
		return deps, err
	}
	deps.history = snapshots

	api, err := createAPIClient(ctx, cfg, obs)
	if err != nil {
		return deps, err
	}
	deps.api = api

	return deps, nil
}

func (d *Dependencies) close() {
	if err := storage.GetProvider().Close(); err != nil {
		log.Printf("Failed to close storage: %v", err)
	}
	if err := d.obs.Close(); err != nil {
		log.Printf("Failed to close observability: %v", err)
	}
}

func logStartup(ctx context.Context, cfg *config.Config, obs observability.Provider) {
	obs.Logger("main").Info(ctx, "Starting application", types.Fields{
		"service":     cfg.ServiceName,
		"version":     cfg.Version,
		"environment": cfg.Environment,
		"api_base":    cfg.API.BaseURL,
		"mocks":       cfg.API.UseMocks,
	})
}

func createAPIClient(ctx context.Context, cfg *config.Config, obs observability.Provider) (*apiclient.Client, error) {
	logger := obs.Logger("client.api")

	apiCfg := apiclient.FromConfig(cfg)
	if !cfg.API.UseMocks {
		if err := apiCfg.Validate(cfg.IsProduction()); err != nil {
			logger.Error(ctx, "Invalid API configuration", err, nil)
			return nil, fmt.Errorf("invalid API configuration: %w", err)
		}
	}

	return apiclient.New(apiCfg, logger, obs.Metrics("client_api")), nil
}

// initializeHistory returns nil when snapshot history is disabled.
func initializeHistory(ctx context.Context, cfg *config.Config, obs observability.Provider) (usecase.SnapshotStore, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}

	logger := obs.Logger("storage")
	metrics := obs.Metrics("storage")

	provider := storage.GetProvider()
	if err := provider.Initialize(ctx, cfg, logger, metrics); err != nil {
		logger.Error(ctx, "Failed to initialize storage", err, types.Fields{"provider": cfg.Storage.Provider})
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	objects, err := provider.GetStorage()
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Storage initialized successfully", types.Fields{
		"provider": cfg.Storage.Provider,
		"key":      cfg.History.Key,
	})
	return history.NewStore(objects, cfg.History.Key, obs.Logger("history"), obs.Metrics("history")), nil
}

func buildApplication(cfg *config.Config, deps *Dependencies) *Application {
	repo := gateway.NewAPIGateway(deps.api, gateway.Options{
		UseMocks:    cfg.API.UseMocks,
		MockLatency: cfg.API.MockLatency,
	}, deps.obs.Logger("gateway"), deps.obs.Metrics("gateway"))

	var pinger worker.Pinger
	if !cfg.API.UseMocks {
		pinger = deps.api
	}

	w := worker.NewHealthWorker(
		usecase.NewGetHealth(repo, deps.obs.Logger("usecase.get_health")),
		usecase.NewMonitorHealth(repo, deps.history, deps.obs.Logger("usecase.monitor_health"), deps.obs.Metrics("usecase")),
		pinger,
		deps.obs.Logger("worker"),
		deps.obs.Metrics("worker"),
	)

	h := handler.NewFactory(w, deps.obs).FromConfig(cfg).Create()

	var metricsHandler http.Handler
	if cfg.Handler.EnableMetrics {
		metricsHandler = promhttp.HandlerFor(deps.registry, promhttp.HandlerOpts{})
	}

	return &Application{
		handler: h,
		metrics: metricsHandler,
		logger:  deps.obs.Logger("main"),
	}
}

func startApplication(ctx context.Context, cfg *config.Config, app *Application) error {
	if app.handler.Config().Platform == handler.PlatformLambda {
		app.logger.Info(ctx, "Starting Lambda runtime", nil)
		platforms.NewLambdaAdapter(app.handler, cfg.Lambda.Timeout).Start()
		return nil
	}

	var opts []platforms.HTTPOption
	if app.metrics != nil {
		opts = append(opts, platforms.WithMetricsHandler(cfg.HTTP.MetricsPath, app.metrics))
	}
	srv := platforms.NewHTTPAdapter(app.handler, opts...).Server(cfg.HTTP)

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "HTTP server listening", types.Fields{"addr": cfg.HTTP.Addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "Shutting down HTTP server", types.Fields{"timeout": cfg.HTTP.ShutdownTimeout.String()})

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
