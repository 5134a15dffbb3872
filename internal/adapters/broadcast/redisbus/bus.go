// Package redisbus propagates board snapshots between processes over Redis pub/sub.
package redisbus

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel board updates travel on.
const DefaultChannel = "kanban-wow-sync"

// Logger reports dropped messages.
type Logger interface {
	Warn(msg string, keyvals ...any)
}

// Bus publishes and subscribes on one Redis channel.
type Bus struct {
	client  redis.UniversalClient
	channel string
	logger  Logger
}

// New constructs a bus on channel. An empty channel uses DefaultChannel.
func New(client redis.UniversalClient, channel string, logger Logger) (*Bus, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultChannel
	}
	return &Bus{client: client, channel: channel, logger: logger}, nil
}

// Dial connects to addr and verifies the server answers.
func Dial(ctx context.Context, addr, channel string, logger Logger) (*Bus, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return New(client, channel, logger)
}

// Channel returns the pub/sub channel name.
func (b *Bus) Channel() string {
	return b.channel
}

// Publish sends payload to every subscriber, this process included.
func (b *Bus) Publish(ctx context.Context, payload []byte) error {
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", b.channel, err)
	}
	return nil
}

// Subscribe delivers every message on the channel to handler until the returned func is called
// or ctx ends. It returns once the subscription is confirmed by the server.
func (b *Bus) Subscribe(ctx context.Context, handler func(payload []byte)) (func(), error) {
	if handler == nil {
		return nil, errors.New("handler is required")
	}
	subCtx, cancel := context.WithCancel(ctx)
	sub := b.client.Subscribe(subCtx, b.channel)
	if _, err := sub.Receive(subCtx); err != nil {
		cancel()
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	ch := sub.Channel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					if b.logger != nil && subCtx.Err() == nil {
						b.logger.Warn("redis subscription closed", "channel", b.channel)
					}
					return
				}
				handler([]byte(msg.Payload))
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			_ = sub.Close()
			<-done
		})
	}, nil
}

// Close releases the underlying client.
func (b *Bus) Close() error {
	return b.client.Close()
}
