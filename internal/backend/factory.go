package backend

import (
	"context"
	"errors"
	"fmt"

	"trackboard/internal/amqp"
	"trackboard/internal/log"
	"trackboard/internal/ports"
	"trackboard/internal/storage"
	"trackboard/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	// dial is swapped in tests.
	dial func(url, exchange, queue string) (notifierCloser, error)
}

type notifierCloser interface {
	ports.Notifier
	IsHealthy() bool
	Close() error
}

func NewFactory(logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		dial: func(url, exchange, queue string) (notifierCloser, error) {
			return amqp.NewClient(url, exchange, queue)
		},
	}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *Result
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(config)
	case MemoryBackend:
		result = f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachNotifier(result, config)
	return result, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Store:   repo,
		Ready:   repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createMemoryBackend() *Result {
	f.logger.Info("Initialized memory backend")
	return &Result{
		Store: memory.New(),
		Ready: func(context.Context) error { return nil },
	}
}

// attachNotifier publishes through AMQP when configured. A broker that
// cannot be reached at startup degrades to logging rather than failing.
func (f *DefaultFactory) attachNotifier(result *Result, config Config) {
	result.Notifier = ports.LogNotifier{Logger: f.logger.Slog()}
	if config.AMQPURL == "" {
		return
	}

	client, err := f.dial(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, notifications will be logged", log.FieldError, err)
		return
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	result.Notifier = client

	storeReady, storeCleanup := result.Ready, result.Cleanup
	result.Ready = func(ctx context.Context) error {
		if !client.IsHealthy() {
			return errors.New("amqp connection unhealthy")
		}
		return storeReady(ctx)
	}
	result.Cleanup = func() error {
		err := client.Close()
		if storeCleanup != nil {
			err = errors.Join(err, storeCleanup())
		}
		return err
	}
}
