// Package localbus propagates board snapshots between views living in one process.
package localbus

import (
	"context"
	"errors"
	"sync"
)

// Hub fans published payloads out to every subscriber. Each subscriber has a one-slot mailbox:
// a slow subscriber only ever sees the most recent payload.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int
	closed bool
}

type subscriber struct {
	mailbox chan []byte
	stop    chan struct{}
	done    chan struct{}
}

// ErrClosed is returned after the hub shuts down.
var ErrClosed = errors.New("local bus closed")

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{subs: map[int]*subscriber{}}
}

// Publish delivers payload to every current subscriber without blocking.
func (h *Hub) Publish(_ context.Context, payload []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	for _, s := range h.subs {
		msg := append([]byte(nil), payload...)
		select {
		case s.mailbox <- msg:
		default:
			// Replace the undelivered payload with the newer one.
			select {
			case <-s.mailbox:
			default:
			}
			s.mailbox <- msg
		}
	}
	return nil
}

// Subscribe runs handler for each delivered payload on its own goroutine until the returned
// func is called or ctx ends.
func (h *Hub) Subscribe(ctx context.Context, handler func(payload []byte)) (func(), error) {
	if handler == nil {
		return nil, errors.New("handler is required")
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	id := h.nextID
	h.nextID++
	s := &subscriber{
		mailbox: make(chan []byte, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	h.subs[id] = s
	h.mu.Unlock()

	go func() {
		defer close(s.done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case msg := <-s.mailbox:
				handler(msg)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			_, live := h.subs[id]
			delete(h.subs, id)
			h.mu.Unlock()
			if live {
				close(s.stop)
			}
			<-s.done
		})
	}, nil
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close stops every subscription and rejects further use.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	subs := h.subs
	h.subs = map[int]*subscriber{}
	h.mu.Unlock()
	for _, s := range subs {
		close(s.stop)
		<-s.done
	}
}
