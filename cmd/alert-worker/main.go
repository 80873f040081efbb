package main

import (
	"context"
	"errors"
	"os"
	"time"

	"financeflow/internal/cli"
	"financeflow/internal/log"
	"financeflow/internal/services"
	"financeflow/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting alert-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the alert worker")
		os.Exit(1)
	}

	be := cli.InitBackend(context.Background(), logger, cfg)
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()
	if be.Broker == nil {
		logger.Error("AMQP broker unavailable")
		os.Exit(1)
	}

	// The worker stores what the API published, so it must not publish again.
	svc := services.New(be.Store, nil, cli.ServiceOptions(cfg))
	alertWorker := worker.NewAlertWorker(svc.Alerts)

	ctx, done := cli.GracefulShutdown(logger, 15*time.Second, nil)

	logger.Info("Consuming alert messages",
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue)
	if err := be.Broker.Consume(ctx, alertWorker.HandleMessage); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Alert worker stopped")
}
