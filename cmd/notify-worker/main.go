package main

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"time"

	"trackboard/internal/amqp"
	"trackboard/internal/cache"
	"trackboard/internal/cli"
	"trackboard/internal/log"
	"trackboard/internal/worker"
)

const (
	appName         = "Trackboard"
	retryDelay      = 5 * time.Second
	cleanupInterval = 10 * time.Minute
)

func main() {
	cfg, logger := cli.Bootstrap(log.ComponentWorker, nil)
	logger.Info("Starting notify-worker", log.FieldOperation, log.OpStartup)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the notification worker")
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	ctx, cancel := cli.GracefulShutdown(logger)
	defer cancel()

	var presented atomic.Int64
	w := worker.NewNotificationWorker(worker.Fanout{
		worker.LogPresenter{Logger: logger},
		worker.NewDesktopPresenter(appName),
	}, logger)
	w.OnPresented = func(string) { presented.Add(1) }

	caches := cache.NewManager(logger.Slog())
	caches.Register(w.Seen())
	go caches.Run(ctx, cleanupInterval)

	for {
		err := client.ConsumeNotifications(ctx, w.HandleMessage)
		if ctx.Err() != nil {
			break
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed, retrying", log.FieldError, err, "retry_in", retryDelay)
		}
		select {
		case <-ctx.Done():
		case <-time.After(retryDelay):
		}
	}

	logger.Info("Worker shutdown complete",
		log.FieldOperation, log.OpShutdown,
		log.FieldCount, presented.Load())
}
