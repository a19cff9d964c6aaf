// Package redis connects to Redis and publishes domain events over it.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/homecare/visit-api/pkg/circuitbreaker"
	"github.com/homecare/visit-api/pkg/messaging"
)

type Config struct {
	URL          string
	MaxRetries   int
	RetryBackoff time.Duration
	PoolSize     int
	MinIdleConns int
}

// NewClient parses the URL, applies pool settings and pings the server.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if cfg.MaxRetries != 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	if cfg.RetryBackoff > 0 {
		opts.MinRetryBackoff = cfg.RetryBackoff
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

// Broker publishes on Redis pub/sub. A breaker stops the relay from
// hammering a Redis that is down; while it is open Publish fails fast with
// circuitbreaker.ErrOpen and the outbox keeps the event pending.
type Broker struct {
	client *redis.Client
	cb     *circuitbreaker.CircuitBreaker
	log    zerolog.Logger
}

func NewBroker(client *redis.Client, log zerolog.Logger) *Broker {
	return &Broker{
		client: client,
		log:    log,
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "redis-publish",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     10 * time.Second,
			OnStateChange: func(name, from, to string) {
				log.Warn().Str("breaker", name).Str("from", from).Str("to", to).Msg("breaker state changed")
			},
		}),
	}
}

var _ messaging.Broker = (*Broker)(nil)

func (b *Broker) Publish(ctx context.Context, channel string, payload []byte) error {
	var receivers int64
	err := b.cb.Execute(func() error {
		n, err := b.client.Publish(ctx, channel, payload).Result()
		// A cancelled relay is not a Redis failure.
		if errors.Is(err, context.Canceled) {
			return nil
		}
		receivers = n
		return err
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	b.log.Debug().Str("channel", channel).Int64("receivers", receivers).Msg("published")
	return nil
}

// BreakerState is exposed for the worker's readiness probe.
func (b *Broker) BreakerState() string {
	return b.cb.State()
}

func (b *Broker) Close() error {
	return b.client.Close()
}
