package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"flowbarber/internal/backend"
	"flowbarber/internal/cli"
	apphttp "flowbarber/internal/http"
	applog "flowbarber/internal/log"
	"flowbarber/internal/notify"
	"flowbarber/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.With(applog.FieldComponent, applog.ComponentBackend)).Create(backendCfg)
	if err != nil {
		logger.Error("Failed to initialize storage backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Storage cleanup failed", "error", err)
			}
		}
	}()

	// Stores log every event and hand it to the active request, if any.
	notifier := notify.Fanout{Fallback: notify.Logger{Log: logger}}

	serviceStore := services.NewServiceStore(result.Store, notifier, logger.With(applog.FieldComponent, applog.ComponentServices))
	planStore := services.NewPlanStore(result.Store, notifier, serviceStore, logger.With(applog.FieldComponent, applog.ComponentPlans))

	loadCtx := context.Background()
	serviceStore.Load(loadCtx)
	planStore.Load(loadCtx)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CacheSize:          cfg.ReportCacheSize,
		CacheTTL:           cfg.ReportCacheTTL,
	}, serviceStore, planStore)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := cli.ShutdownContext(logger)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting flowbarber server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cli.GracePeriod)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
