// Package cli provides common initialization for the trackboard binaries.
// It consolidates the start-up steps shared by cmd/trackboard,
// cmd/notify-worker, cmd/reminder-worker and cmd/trackctl.
package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"trackboard/internal/alerts"
	"trackboard/internal/backend"
	"trackboard/internal/config"
	"trackboard/internal/core"
	"trackboard/internal/log"
	"trackboard/internal/middleware/metrics"
	"trackboard/internal/services"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FILE and
// makes it the slog default. An unknown level falls back to info. A nil w
// logs to stdout.
func SetupLogger(cfg *config.Config, component string, w io.Writer) *log.Logger {
	level, levelErr := log.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{
		Level:     level,
		Component: component,
		File:      cfg.LogFile,
		Writer:    w,
	})
	log.SetDefault(logger)
	if levelErr != nil {
		logger.Warn("Ignoring LOG_LEVEL", log.FieldError, levelErr)
	}
	return logger
}

// Bootstrap loads .env and the configuration, sets up logging to w and
// validates. It exits the process when the configuration is invalid.
func Bootstrap(component string, w io.Writer) (*config.Config, *log.Logger) {
	LoadEnvFile()
	cfg := config.Load()
	logger := SetupLogger(cfg, component, w)
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg, logger
}

// OpenBackend creates the configured store and notifier.
// It exits the process on failure.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *log.Logger) *backend.Result {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", bcfg.Type)
		os.Exit(1)
	}
	return res
}

// NewDashboard wires the dashboard to the backend in the configured
// timezone. When m is set every notification attempt is counted.
func NewDashboard(cfg *config.Config, res *backend.Result, logger *log.Logger, m *metrics.Metrics) *services.Dashboard {
	opts := []services.Option{
		services.WithAlertConfig(alerts.Config{ReminderHour: cfg.ReminderHour}),
		services.WithLogger(logger),
	}
	// Validate already rejected bad timezones.
	if loc, err := cfg.Location(); err == nil {
		opts = append(opts, services.WithLocation(loc))
	}
	if m != nil {
		opts = append(opts, services.WithNotifyHook(func(kind core.NotificationKind, err error) {
			if err != nil {
				m.NotificationFailed()
				return
			}
			m.NotificationSent(string(kind))
		}))
	}
	return services.NewDashboard(res.Store, res.Notifier, opts...)
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM.
// The received signal is logged.
func GracefulShutdown(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
