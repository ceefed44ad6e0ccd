package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"trackboard/internal/backend"
	"trackboard/internal/cli"
	apphttp "trackboard/internal/http"
	"trackboard/internal/log"
	"trackboard/internal/middleware/metrics"
	"trackboard/internal/middleware/ratelimit"
	"trackboard/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentApp, nil)

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	res := cli.OpenBackend(ctx, cfg, logger)
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	m := metrics.New()
	dashboard := cli.NewDashboard(cfg, res, logger, m)

	// The memory backend lives in this process, so no separate
	// reminder-worker can see its data.
	var reminders *services.ReminderProcessor
	if cfg.DataBackend == backend.MemoryBackend.String() {
		reminders = services.NewReminderProcessor(dashboard, services.ReminderProcessorConfig{
			Interval: cfg.ReminderInterval,
		}, logger)
		if err := reminders.Start(ctx); err != nil {
			logger.Error("Failed to start reminders", log.FieldError, err)
			os.Exit(1)
		}
	}

	srv := apphttp.NewServer(apphttp.Config{
		Addr:        net.JoinHostPort("", cfg.Port),
		CORSOrigins: cfg.CORSOrigins,
		RateLimit: ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
		Ready:   res.Ready,
		Metrics: m,
		Logger:  logger,
	}, dashboard)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting trackboard server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"timezone", cfg.Timezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			cancel()
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err)
	}
	if reminders != nil {
		if err := reminders.Stop(shutdownCtx); err != nil {
			logger.Warn("Reminder shutdown error", log.FieldError, err)
		}
	}
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
}
