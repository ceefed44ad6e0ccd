package backend

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"trackboard/internal/config"
	"trackboard/internal/core"
	"trackboard/internal/log"
	"trackboard/internal/ports"
	"trackboard/internal/storage"
	"trackboard/internal/storage/memory"
)

type fakeClient struct {
	healthy bool
	closed  bool
	sent    []core.Notification
}

func (c *fakeClient) Notify(_ context.Context, n core.Notification) error {
	c.sent = append(c.sent, n)
	return nil
}
func (c *fakeClient) IsHealthy() bool { return c.healthy }
func (c *fakeClient) Close() error    { c.closed = true; return nil }

func testFactory() *DefaultFactory {
	return NewFactory(log.New(log.Config{Writer: &bytes.Buffer{}}))
}

func TestFromAppConfig(t *testing.T) {
	cfg := &config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", AMQPURL: "amqp://h", AMQPExchange: "e", AMQPQueue: "q"}
	bc, err := FromAppConfig(cfg)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if bc.Type != SQLiteBackend || bc.SQLiteDBPath != "x.db" || bc.AMQPQueue != "q" {
		t.Errorf("config = %+v", bc)
	}

	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"amqp without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://h", AMQPExchange: "e"}, true},
		{"unknown", Config{Type: "sheets"}, true},
	}
	for _, tt := range tests {
		if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
			t.Errorf("%s: err = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestCreateMemoryBackendLogsNotifications(t *testing.T) {
	res, err := testFactory().CreateBackend(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Close()

	if _, ok := res.Store.(*memory.Store); !ok {
		t.Errorf("store = %T", res.Store)
	}
	if _, ok := res.Notifier.(ports.LogNotifier); !ok {
		t.Errorf("notifier = %T", res.Notifier)
	}
	if err := res.Ready(context.Background()); err != nil {
		t.Errorf("Ready: %v", err)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "trackboard.db")
	res, err := testFactory().CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if _, ok := res.Store.(*storage.SQLiteRepository); !ok {
		t.Errorf("store = %T", res.Store)
	}
	if err := res.Ready(context.Background()); err != nil {
		t.Errorf("Ready: %v", err)
	}
	if err := res.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestAMQPNotifierWiring(t *testing.T) {
	f := testFactory()
	client := &fakeClient{healthy: true}
	f.dial = func(url, exchange, queue string) (notifierCloser, error) { return client, nil }

	res, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend, AMQPURL: "amqp://h", AMQPExchange: "e", AMQPQueue: "q"})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if res.Notifier != client {
		t.Fatalf("notifier = %T", res.Notifier)
	}
	if err := res.Ready(context.Background()); err != nil {
		t.Errorf("Ready: %v", err)
	}
	client.healthy = false
	if err := res.Ready(context.Background()); err == nil {
		t.Error("Ready ignored an unhealthy broker")
	}
	if err := res.Close(); err != nil || !client.closed {
		t.Errorf("Close: err=%v closed=%v", err, client.closed)
	}
}

func TestAMQPDialFailureFallsBackToLog(t *testing.T) {
	f := testFactory()
	f.dial = func(url, exchange, queue string) (notifierCloser, error) { return nil, errors.New("refused") }

	res, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend, AMQPURL: "amqp://h", AMQPExchange: "e", AMQPQueue: "q"})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if _, ok := res.Notifier.(ports.LogNotifier); !ok {
		t.Errorf("notifier = %T", res.Notifier)
	}
}
