package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"financeflow/internal/cli"
	apphttp "financeflow/internal/http"
	"financeflow/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	be := cli.InitBackend(context.Background(), logger, cfg)
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	svc := services.New(be.Store, cli.Publisher(be), cli.ServiceOptions(cfg))
	srv := apphttp.NewServer(":"+cfg.Port, svc, be.Store, apphttp.Options{
		DefaultCurrency:    cfg.DisplayCurrency(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	logger.Info("Starting financeflow server",
		"port", cfg.Port,
		"backend", cfg.BackendType,
		"currency", cfg.DisplayCurrency())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
