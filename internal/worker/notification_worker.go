package worker

import (
	"context"
	"fmt"
	"time"

	"trackboard/internal/amqp"
	"trackboard/internal/cache"
	"trackboard/internal/log"
)

const (
	seenCapacity = 4096
	seenTTL      = 24 * time.Hour
)

// NotificationWorker presents notifications consumed from the broker.
// Redelivered messages are recognised by id and presented once.
type NotificationWorker struct {
	presenter Presenter
	seen      *cache.LRUCache[struct{}]
	logger    *log.Logger

	// OnPresented, when set, is called with the kind of every presented
	// notification.
	OnPresented func(kind string)
}

func NewNotificationWorker(presenter Presenter, logger *log.Logger) *NotificationWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &NotificationWorker{
		presenter: presenter,
		seen:      cache.NewLRUCache[struct{}](seenCapacity, seenTTL),
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// Seen exposes the dedupe cache so a cache.Manager can sweep it.
func (w *NotificationWorker) Seen() cache.Cleaner {
	return w.seen
}

// HandleMessage processes a single notification message from AMQP. A
// presentation failure forgets the id so the broker's redelivery retries it.
func (w *NotificationWorker) HandleMessage(ctx context.Context, msg *amqp.NotificationMessage) error {
	if msg.ID != "" && w.seen.Seen(msg.ID) {
		w.logger.DebugContext(ctx, "Duplicate notification skipped", log.FieldMessageID, msg.ID)
		return nil
	}

	n, err := msg.Notification()
	if err != nil {
		// Malformed: acking it would lose nothing worth retrying.
		w.logger.WarnContext(ctx, "Dropping malformed notification",
			log.FieldMessageID, msg.ID, log.FieldError, err)
		return nil
	}

	if err := w.presenter.Present(ctx, n); err != nil {
		if msg.ID != "" {
			w.seen.Delete(msg.ID)
		}
		return fmt.Errorf("present notification: %w", err)
	}

	w.logger.InfoContext(ctx, "Notification presented",
		log.FieldMessageID, msg.ID,
		log.FieldKind, n.Kind)
	if w.OnPresented != nil {
		w.OnPresented(string(n.Kind))
	}
	return nil
}
