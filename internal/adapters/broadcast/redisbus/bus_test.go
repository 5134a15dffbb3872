package redisbus

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestBus(t *testing.T) (*Bus, *miniredis.Miniredis) {
	t.Helper()
	m, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(m.Close)
	rc := redis.NewClient(&redis.Options{Addr: m.Addr()})
	bus, err := New(rc, "", nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = bus.Close() })
	return bus, m
}

func TestBusPublishSubscribe(t *testing.T) {
	bus, _ := newTestBus(t)
	if bus.Channel() != DefaultChannel {
		t.Fatalf("unexpected channel %q", bus.Channel())
	}

	var mu sync.Mutex
	var got []string
	received := make(chan struct{}, 4)
	cancel, err := bus.Subscribe(context.Background(), func(payload []byte) {
		mu.Lock()
		got = append(got, string(payload))
		mu.Unlock()
		received <- struct{}{}
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if err := bus.Publish(context.Background(), []byte(`{"type":"board:update"}`)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
	mu.Lock()
	if len(got) != 1 || got[0] != `{"type":"board:update"}` {
		t.Fatalf("unexpected payloads %v", got)
	}
	mu.Unlock()

	cancel()
	cancel()
	if err := bus.Publish(context.Background(), []byte("after")); err != nil {
		t.Fatalf("Publish() after cancel error = %v", err)
	}
	select {
	case <-received:
		t.Fatal("expected no delivery after cancel")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDialFailsWithoutServer(t *testing.T) {
	m, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	addr := m.Addr()
	m.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := Dial(ctx, addr, "", nil); err == nil {
		t.Fatal("expected dial to fail against a stopped server")
	}
}

func TestNewRequiresClient(t *testing.T) {
	if _, err := New(nil, "x", nil); err == nil {
		t.Fatal("expected nil client to be rejected")
	}
}
