package main

import (
	"context"
	"os"
	"time"

	"trackboard/internal/backend"
	"trackboard/internal/cli"
	"trackboard/internal/log"
	"trackboard/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentReminder, nil)
	logger.Info("Starting reminder-worker",
		log.FieldOperation, log.OpStartup,
		"interval", cfg.ReminderInterval,
		"reminder_hour", cfg.ReminderHour)

	if cfg.DataBackend == backend.MemoryBackend.String() {
		logger.Warn("Memory backend holds no data shared with the server; reminders will only see this process")
	}

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	res := cli.OpenBackend(ctx, cfg, logger)
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	dashboard := cli.NewDashboard(cfg, res, logger, nil)
	processor := services.NewReminderProcessor(dashboard, services.ReminderProcessorConfig{
		Interval: cfg.ReminderInterval,
	}, logger)

	if err := processor.Start(ctx); err != nil {
		logger.Error("Failed to start reminder processor", log.FieldError, err)
		os.Exit(1)
	}

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Shutting down reminder processor...")
	if err := processor.Stop(shutdownCtx); err != nil {
		logger.Warn("Reminder processor shutdown error", log.FieldError, err)
	}
	logger.Info("Reminder worker shutdown complete",
		log.FieldOperation, log.OpShutdown,
		"runs", processor.Runs())
}
