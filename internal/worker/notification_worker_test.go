package worker

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"trackboard/internal/amqp"
	"trackboard/internal/core"
	"trackboard/internal/log"
)

type fakePresenter struct {
	shown []core.Notification
	err   error
}

func (f *fakePresenter) Present(_ context.Context, n core.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.shown = append(f.shown, n)
	return nil
}

func quietLogger() *log.Logger {
	return log.New(log.Config{Writer: &bytes.Buffer{}})
}

func message(id string) *amqp.NotificationMessage {
	return &amqp.NotificationMessage{
		ID:      id,
		Kind:    core.NotifyBudgetNear,
		Level:   core.LevelWarning,
		Title:   "Budget Alert - Monthly",
		Message: "You've used 85% of your monthly budget. 150.00 remaining.",
		Date:    "2025-03-12",
	}
}

func TestHandleMessagePresentsOnce(t *testing.T) {
	p := &fakePresenter{}
	w := NewNotificationWorker(p, quietLogger())
	var kinds []string
	w.OnPresented = func(kind string) { kinds = append(kinds, kind) }

	for i := 0; i < 3; i++ {
		if err := w.HandleMessage(context.Background(), message("m-1")); err != nil {
			t.Fatalf("HandleMessage: %v", err)
		}
	}
	if len(p.shown) != 1 {
		t.Fatalf("presented %d times, want 1", len(p.shown))
	}
	if !p.shown[0].Date.Equal(core.NewDate(2025, 3, 12)) || p.shown[0].Kind != core.NotifyBudgetNear {
		t.Errorf("notification = %+v", p.shown[0])
	}
	if len(kinds) != 1 || kinds[0] != "budget_near" {
		t.Errorf("OnPresented kinds = %v", kinds)
	}

	if err := w.HandleMessage(context.Background(), message("m-2")); err != nil || len(p.shown) != 2 {
		t.Fatalf("second id: err=%v shown=%d", err, len(p.shown))
	}
}

func TestHandleMessageRetriesAfterFailure(t *testing.T) {
	p := &fakePresenter{err: errors.New("no display")}
	w := NewNotificationWorker(p, quietLogger())

	if err := w.HandleMessage(context.Background(), message("m-1")); err == nil {
		t.Fatal("expected presentation error")
	}
	p.err = nil
	if err := w.HandleMessage(context.Background(), message("m-1")); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if len(p.shown) != 1 {
		t.Fatalf("redelivered message not presented")
	}
}

func TestHandleMessageDropsMalformed(t *testing.T) {
	p := &fakePresenter{}
	w := NewNotificationWorker(p, quietLogger())
	msg := message("bad")
	msg.Date = "12/03/2025"
	if err := w.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("malformed message should be acked, got %v", err)
	}
	if len(p.shown) != 0 {
		t.Fatalf("malformed message presented")
	}
}

func TestDesktopPresenterChoosesAlertForWarnings(t *testing.T) {
	var calls []string
	p := &DesktopPresenter{
		notify: func(title, message string, icon any) error { calls = append(calls, "notify:"+title); return nil },
		alert:  func(title, message string, icon any) error { calls = append(calls, "alert:"+title); return nil },
	}
	ctx := context.Background()
	_ = p.Present(ctx, core.Notification{Level: core.LevelWarning, Title: "w"})
	_ = p.Present(ctx, core.Notification{Level: core.LevelError, Title: "e"})
	_ = p.Present(ctx, core.Notification{Level: core.LevelSuccess, Title: "s"})

	if strings.Join(calls, ",") != "alert:w,alert:e,notify:s" {
		t.Errorf("calls = %v", calls)
	}
}

func TestFanoutJoinsErrors(t *testing.T) {
	good := &fakePresenter{}
	bad := &fakePresenter{err: errors.New("boom")}
	var buf bytes.Buffer
	f := Fanout{good, bad, LogPresenter{Logger: log.New(log.Config{Writer: &buf})}}

	err := f.Present(context.Background(), core.Notification{Title: "Habit Reminder", Level: core.LevelInfo})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("err = %v", err)
	}
	if len(good.shown) != 1 {
		t.Errorf("good presenter skipped")
	}
	if !strings.Contains(buf.String(), "Habit Reminder") {
		t.Errorf("log presenter output = %q", buf.String())
	}
}
