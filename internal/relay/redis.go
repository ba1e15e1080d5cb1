package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dukerupert/liste/internal/config"
)

// DefaultChannel is the pub/sub channel used for change notices.
const DefaultChannel = "liste:changes"

// NewClient creates a Redis client from configuration.
func NewClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MaxRetries:   3,
	})
}

// Ping checks the connection with a short timeout.
func Ping(ctx context.Context, client *redis.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return client.Ping(ctx).Err()
}

// Redis relays notices over a Redis pub/sub channel. Notices carry the
// publishing instance id so an instance ignores its own.
type Redis struct {
	client   *redis.Client
	channel  string
	instance string
	logger   *slog.Logger
}

func NewRedis(client *redis.Client, channel string, logger *slog.Logger) *Redis {
	if channel == "" {
		channel = DefaultChannel
	}
	instance := uuid.NewString()
	return &Redis{
		client:   client,
		channel:  channel,
		instance: instance,
		logger:   logger.With("component", "relay", "instance", instance),
	}
}

// Instance returns this process's relay id.
func (r *Redis) Instance() string { return r.instance }

func (r *Redis) Publish(ctx context.Context, collection string, version uint64) error {
	payload, err := encode(Notice{Instance: r.instance, Collection: collection, Version: version})
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish notice: %w", err)
	}
	return nil
}

func (r *Redis) Run(ctx context.Context, fn func(Notice)) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	r.logger.Info("relay subscribed", "channel", r.channel)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.handle(msg.Payload, fn)
		}
	}
}

func (r *Redis) handle(payload string, fn func(Notice)) {
	n, err := decode(payload)
	if err != nil {
		r.logger.Warn("dropping malformed notice", "error", err)
		return
	}
	if n.Instance == r.instance {
		return
	}
	fn(n)
}

func (r *Redis) Close() error {
	return r.client.Close()
}
