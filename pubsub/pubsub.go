// Package pubsub provides the Redis publish/subscribe transport for the
// aggregation worker. The publisher and the subscriber hold distinct
// connections: a Redis client in subscribe mode cannot issue publishes.
package pubsub

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Publisher sends messages to a channel. Callers treat publishes as
// fire-and-forget; a failed publish is logged, never retried.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Close() error
}

// Subscriber holds a persistent subscription on a channel and hands every
// message to onMessage.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string, onMessage func(channel, payload string)) error
	Close() error
}

// RedisPublisher implements Publisher on a dedicated Redis connection.
type RedisPublisher struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisPublisher connects a publisher client and verifies the connection.
func NewRedisPublisher(ctx context.Context, redisURL string, logger *slog.Logger) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &RedisPublisher{client: client, logger: logger}, nil
}

// Publish sends payload on channel.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish on %s: %w", channel, err)
	}
	return nil
}

// Close releases the publisher connection.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}

// RedisSubscriber implements Subscriber on its own Redis connection.
type RedisSubscriber struct {
	client       *redis.Client
	logger       *slog.Logger
	shutdownChan chan struct{}
}

// NewRedisSubscriber connects a subscriber client and verifies the connection.
func NewRedisSubscriber(ctx context.Context, redisURL string, logger *slog.Logger) (*RedisSubscriber, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &RedisSubscriber{
		client:       client,
		logger:       logger,
		shutdownChan: make(chan struct{}),
	}, nil
}

// Subscribe confirms the subscription, then consumes messages on a goroutine
// until the context is cancelled or the subscriber is closed.
func (s *RedisSubscriber) Subscribe(ctx context.Context, channel string, onMessage func(channel, payload string)) error {
	sub := s.client.Subscribe(ctx, channel)

	// Receive the subscription confirmation so a broken connection
	// surfaces here instead of silently inside the loop.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	s.logger.Info("subscribed", "channel", channel)

	go s.consumeLoop(ctx, sub, onMessage)

	return nil
}

func (s *RedisSubscriber) consumeLoop(ctx context.Context, sub *redis.PubSub, onMessage func(channel, payload string)) {
	defer sub.Close()

	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("subscriber context cancelled, stopping")
			return
		case <-s.shutdownChan:
			s.logger.Info("subscriber shutdown requested, stopping")
			return
		case msg, ok := <-ch:
			if !ok {
				s.logger.Info("subscription channel closed")
				return
			}
			onMessage(msg.Channel, msg.Payload)
		}
	}
}

// Close stops all subscription loops and releases the connection.
func (s *RedisSubscriber) Close() error {
	close(s.shutdownChan)
	return s.client.Close()
}
