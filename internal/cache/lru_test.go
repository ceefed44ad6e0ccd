package cache

import (
	"context"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)}
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("a = %v, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("size = %d", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	clock := newClock()
	c := NewLRUCache[string](10, time.Minute).WithClock(clock.now)
	c.Set("k", "v")

	clock.advance(30 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired early")
	}
	clock.advance(31 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry outlived ttl")
	}

	c.Set("x", "1")
	c.Set("y", "2")
	clock.advance(2 * time.Minute)
	if n := c.CleanExpired(); n != 2 {
		t.Errorf("CleanExpired = %d, want 2", n)
	}
	if c.Size() != 0 {
		t.Errorf("size = %d", c.Size())
	}
}

func TestLRUSeen(t *testing.T) {
	clock := newClock()
	c := NewLRUCache[struct{}](10, time.Hour).WithClock(clock.now)

	if c.Seen("msg-1") {
		t.Fatal("first sighting reported as seen")
	}
	if !c.Seen("msg-1") {
		t.Fatal("second sighting not reported")
	}
	clock.advance(2 * time.Hour)
	if c.Seen("msg-1") {
		t.Fatal("expired id still reported as seen")
	}
}

func TestLRUGetOrCreate(t *testing.T) {
	clock := newClock()
	c := NewLRUCache[*int](10, time.Minute).WithClock(clock.now)
	calls := 0
	create := func() *int { calls++; v := calls; return &v }

	first := c.GetOrCreate("ip", create)
	clock.advance(50 * time.Second)
	second := c.GetOrCreate("ip", create)
	if first != second || calls != 1 {
		t.Fatalf("value recreated: calls=%d", calls)
	}

	// The second call refreshed the TTL.
	clock.advance(50 * time.Second)
	if c.GetOrCreate("ip", create) != first {
		t.Fatal("refreshed entry expired")
	}

	clock.advance(2 * time.Minute)
	if c.GetOrCreate("ip", create) == first || calls != 2 {
		t.Fatalf("expired entry reused: calls=%d", calls)
	}
}

func TestManagerCleanAll(t *testing.T) {
	clock := newClock()
	a := NewLRUCache[int](10, time.Minute).WithClock(clock.now)
	b := NewLRUCache[int](10, time.Hour).WithClock(clock.now)
	a.Set("1", 1)
	b.Set("2", 2)

	m := NewManager(nil)
	m.Register(a)
	m.Register(b)
	clock.advance(5 * time.Minute)

	if n := m.CleanAll(); n != 1 {
		t.Errorf("CleanAll = %d, want 1", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
