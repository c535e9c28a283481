package events

import (
	"context"
	"encoding/json"
	"fmt"

	"foodshare_backend/internal/logger"

	"github.com/go-redis/redis/v8"
)

// RedisBus relays events through a Redis pub/sub channel so every API
// instance delivers them to its own live subscribers. Publish only writes to
// Redis; local delivery happens when the message comes back.
type RedisBus struct {
	local   *LocalBus
	client  *redis.Client
	channel string
	pubsub  *redis.PubSub
	done    chan struct{}
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// NewRedisBus connects and starts relaying until ctx is done or Close is called.
func NewRedisBus(ctx context.Context, cfg RedisConfig) (*RedisBus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	pubsub := client.Subscribe(ctx, cfg.Channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		_ = client.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	b := &RedisBus{
		local:   NewLocalBus(),
		client:  client,
		channel: cfg.Channel,
		pubsub:  pubsub,
		done:    make(chan struct{}),
	}
	go b.relay(ctx)
	return b, nil
}

func (b *RedisBus) relay(ctx context.Context) {
	defer close(b.done)
	ch := b.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				logger.Warn("Dropping malformed bus message", "channel", msg.Channel, "error", err)
				continue
			}
			b.local.dispatch(e)
		}
	}
}

func (b *RedisBus) Publish(ctx context.Context, e Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, raw).Err()
}

func (b *RedisBus) Subscribe(h Handler) func() {
	return b.local.Subscribe(h)
}

func (b *RedisBus) Close() error {
	err := b.pubsub.Close()
	<-b.done
	if cerr := b.client.Close(); err == nil {
		err = cerr
	}
	return err
}
