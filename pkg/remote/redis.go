package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures a Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisBackend stores snapshots as Redis strings and announces changes on a
// pub/sub channel per key.
type RedisBackend struct {
	client *redis.Client
}

// ConnectRedis connects and pings the server. It returns nil and no error
// when opts.Addr is empty, meaning remote sync is disabled.
func ConnectRedis(ctx context.Context, opts RedisOptions) (*RedisBackend, error) {
	if opts.Addr == "" {
		slog.Warn("REDIS_ADDR is not set, remote sync disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	slog.Info("Connected to Redis", "addr", opts.Addr, "db", opts.DB)
	return NewRedisBackend(client), nil
}

// NewRedisBackend wraps an existing client.
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

// Get returns the value of key.
func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return data, nil
}

// Set writes key and publishes data in one MULTI/EXEC block.
func (r *RedisBackend) Set(ctx context.Context, key string, data []byte) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, 0)
		pipe.Publish(ctx, ChannelFor(key), data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Watch subscribes to the change channel of key. fn runs on the
// subscription goroutine.
func (r *RedisBackend) Watch(ctx context.Context, key string, fn func(data []byte)) (func(), error) {
	sub := r.client.Subscribe(ctx, ChannelFor(key))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", key, err)
	}

	ch := sub.Channel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range ch {
			fn([]byte(msg.Payload))
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = sub.Close()
			<-done
		})
	}, nil
}

// Close closes the client.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}
