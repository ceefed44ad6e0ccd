package worker

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gen2brain/beeep"

	"trackboard/internal/core"
	"trackboard/internal/log"
)

// Presenter shows a notification to the user.
type Presenter interface {
	Present(ctx context.Context, n core.Notification) error
}

// LogPresenter writes notifications to the log.
type LogPresenter struct {
	Logger *log.Logger
}

func (p LogPresenter) Present(ctx context.Context, n core.Notification) error {
	level := slog.LevelInfo
	switch n.Level {
	case core.LevelWarning:
		level = slog.LevelWarn
	case core.LevelError:
		level = slog.LevelError
	}
	p.Logger.Logger.Log(ctx, level, n.Title,
		log.FieldComponent, log.ComponentWorker,
		log.FieldKind, n.Kind,
		"message", n.Message,
		log.FieldDate, n.Date.Key())
	return nil
}

// DesktopPresenter raises a desktop notification. Warnings and errors use an
// alert, which also plays a sound.
type DesktopPresenter struct {
	notify func(title, message string, icon any) error
	alert  func(title, message string, icon any) error
}

func NewDesktopPresenter(appName string) *DesktopPresenter {
	if appName != "" {
		beeep.AppName = appName
	}
	return &DesktopPresenter{notify: beeep.Notify, alert: beeep.Alert}
}

func (p *DesktopPresenter) Present(_ context.Context, n core.Notification) error {
	switch n.Level {
	case core.LevelWarning, core.LevelError:
		return p.alert(n.Title, n.Message, "")
	default:
		return p.notify(n.Title, n.Message, "")
	}
}

// Fanout presents to every presenter and joins their errors.
type Fanout []Presenter

func (f Fanout) Present(ctx context.Context, n core.Notification) error {
	var errs []error
	for _, p := range f {
		if err := p.Present(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
