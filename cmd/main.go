package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/adapters/dataset"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/adapters/http/api"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/adapters/http/swagger"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/adapters/repository"
	service "github.com/vishalyl/GlassBoxAI-sub000/internal/app"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/config"
	"github.com/vishalyl/GlassBoxAI-sub000/pkg/logger"
	"github.com/vishalyl/GlassBoxAI-sub000/pkg/metrics"
	"github.com/vishalyl/GlassBoxAI-sub000/pkg/tracing"
)

const serviceName = "glassbox"

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 30 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		// Logger isn't available yet.
		_, _ = fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	code := 0
	if err := run(ctx, log); err != nil {
		log.Error(ctx, "glassbox exited with error", logger.Error(err))
		code = 1
	}
	stop()
	_ = logger.Sync()
	os.Exit(code)
}

func run(ctx context.Context, log logger.Logger) error {
	// Defaults -> optional file -> env.
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.TraceExporter, serviceName)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn(ctx, "tracer shutdown failed", logger.Error(err))
		}
	}()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn(ctx, "store close failed", logger.Error(err))
		}
	}()

	svc := service.New(
		service.WithLogger(log.Named("service")),
		service.WithStore(store),
		service.WithScoringConcurrency(cfg.ScoringConcurrency),
		service.WithIdempotencyCacheSize(cfg.IdempotencyCacheSize),
		service.WithMaxAuditListLimit(cfg.MaxAuditListLimit),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	go metrics.CollectSystem(ctx, systemMetricsInterval)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info(ctx, "server stopped")
	return nil
}

// openStore opens the configured store. The memory driver is preloaded from
// dataset_path when one is set; SQL stores are filled with the seed command.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.Store, error) {
	store, err := repository.OpenStore(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN,
		repository.WithLogger(log.Named("store")),
	)
	if err != nil {
		return nil, err
	}
	if cfg.DatasetPath == "" {
		return store, nil
	}
	if cfg.DatabaseDriver != config.DriverMemory {
		log.Warn(ctx, "dataset_path is only loaded by the memory driver; use the seed command",
			logger.String("driver", cfg.DatabaseDriver))
		return store, nil
	}

	ds, err := dataset.LoadFile(cfg.DatasetPath)
	if err != nil {
		return nil, err
	}
	if err := store.Import(ctx, ds); err != nil {
		return nil, fmt.Errorf("import dataset: %w", err)
	}
	log.Info(ctx, "dataset loaded",
		logger.String("path", cfg.DatasetPath),
		logger.Int("employees", len(ds.Employees)),
		logger.Int("projects", len(ds.Projects)),
	)
	return store, nil
}

// newMux registers the docs and business API routes.
func newMux(ctx context.Context, svc *service.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(ctx, mux)
	return mux
}
