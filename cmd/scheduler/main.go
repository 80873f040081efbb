package main

import (
	"context"
	"flag"
	"os"
	"time"

	"financeflow/internal/cli"
	"financeflow/internal/log"
	"financeflow/internal/scheduler"
	"financeflow/internal/services"
)

const runTimeout = 5 * time.Minute

func main() {
	once := flag.Bool("once", false, "run every scan once and exit")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(log.ComponentScheduler)
	cfg := cli.LoadAndValidateConfig(logger)

	be := cli.InitBackend(context.Background(), logger, cfg)
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	svc := services.New(be.Store, cli.Publisher(be), cli.ServiceOptions(cfg))
	jobs := []scheduler.Job{
		{Name: "budget-alerts", Schedule: cfg.AlertScanSchedule, Run: svc.Alerts.ScanAll},
		{Name: "bill-reminders", Schedule: cfg.BillReminderSchedule, Run: svc.Bills.ScanReminders},
	}

	if *once {
		failed := false
		for _, j := range jobs {
			ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
			if _, err := scheduler.RunOnce(ctx, j); err != nil {
				failed = true
			}
			cancel()
		}
		if failed {
			os.Exit(1)
		}
		return
	}

	sched, err := scheduler.New(jobs, runTimeout)
	if err != nil {
		logger.Error("Invalid schedule", "error", err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := sched.Stop(ctx); err != nil {
			logger.Warn("Scheduler stop did not finish", "error", err)
		}
	})
	if err := sched.Start(ctx); err != nil {
		logger.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}
	logger.Info("Scheduler running",
		"alert_schedule", cfg.AlertScanSchedule,
		"reminder_schedule", cfg.BillReminderSchedule)

	cli.WaitForShutdown(ctx, done)
}
