package ports

import (
	"context"
	"log/slog"

	"trackboard/internal/core"
)

// LogNotifier writes notifications to the structured log. It is used when
// no message broker is configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, note core.Notification) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	switch note.Level {
	case core.LevelWarning:
		level = slog.LevelWarn
	case core.LevelError:
		level = slog.LevelError
	}
	logger.Log(ctx, level, note.Title,
		"kind", note.Kind,
		"message", note.Message,
		"date", note.Date.Key())
	return nil
}
