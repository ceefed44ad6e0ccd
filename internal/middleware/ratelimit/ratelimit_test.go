package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowPerClient(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerSecond: 0.001, Burst: 2, VisitorTTL: time.Minute})

	for i := 0; i < 2; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d rejected inside burst", i)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("request beyond burst allowed")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatal("second client shares the first client's bucket")
	}
	if rl.ActiveClients() != 2 {
		t.Errorf("active clients = %d", rl.ActiveClients())
	}
}

func TestNewLimiterDefaults(t *testing.T) {
	rl := NewLimiter(Config{})
	if rl.burst != DefaultConfig().Burst || float64(rl.limit) != DefaultConfig().RequestsPerSecond {
		t.Errorf("defaults not applied: burst=%d limit=%v", rl.burst, rl.limit)
	}
}

func TestMiddleware(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerSecond: 0.5, Burst: 1})
	limited := 0
	h := rl.Middleware(
		func(r *http.Request) string { return "client" },
		func(w http.ResponseWriter, r *http.Request) {
			limited++
			w.WriteHeader(http.StatusTooManyRequests)
		},
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d", first.Code)
	}

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	if second.Code != http.StatusTooManyRequests || limited != 1 {
		t.Fatalf("second status = %d, limited = %d", second.Code, limited)
	}
	if got := second.Header().Get("Retry-After"); got != "2" {
		t.Errorf("Retry-After = %q, want 2", got)
	}
}
