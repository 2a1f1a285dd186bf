package transport

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cenkalti/backoff"
	"github.com/redis/go-redis/v9"

	"github.com/joripage/orderbook-dev/internal/transport/redisconn"
)

// RedisConfig configures the Pub/Sub channel used as a simpler, lower-
// throughput alternative to KafkaPort.
type RedisConfig struct {
	Conn    redisconn.Config `yaml:",inline"`
	Channel string           `yaml:"channel"`
}

// RedisPort is a second reference Transport Port binding, backed by
// github.com/redis/go-redis/v9 Pub/Sub. It demonstrates that the Replica
// Adapter genuinely does not care which substrate it is handed: swapping
// KafkaPort for RedisPort in configuration is the entire migration.
type RedisPort struct {
	client  *redis.Client
	channel string
}

// NewRedisPort dials Redis with exponential backoff, mirroring
// internal/persistence's Postgres bring-up (InitPostgresWithBackoff).
func NewRedisPort(cfg RedisConfig) (*RedisPort, error) {
	var client *redis.Client
	boff := backoff.NewExponentialBackOff()
	err := backoff.Retry(func() error {
		var dialErr error
		client, dialErr = redisconn.New(cfg.Conn)
		return dialErr
	}, boff)
	if err != nil {
		return nil, fmt.Errorf("transport: connect redis: %w", err)
	}

	return &RedisPort{client: client, channel: cfg.Channel}, nil
}

// Broadcast publishes payload to the configured channel. Redis Pub/Sub
// reports the number of subscribers that received the message; zero
// subscribers is reported back as ErrNoPeers, per the Port contract.
func (p *RedisPort) Broadcast(ctx context.Context, payload Payload) (<-chan []PeerResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("transport: marshal payload: %w", err)
	}

	receivers, err := p.client.Publish(ctx, p.channel, body).Result()
	ch := make(chan []PeerResult, 1)
	switch {
	case err != nil:
		ch <- []PeerResult{{PeerID: p.channel, Err: err}}
	case receivers == 0:
		ch <- []PeerResult{{PeerID: p.channel, Err: ErrNoPeers}}
	default:
		ch <- []PeerResult{{PeerID: p.channel}}
	}
	close(ch)
	return ch, nil
}

// Listen subscribes to the configured channel and hands every message to
// handler.OnRequest until ctx is cancelled.
func (p *RedisPort) Listen(ctx context.Context, handler RequestHandler) error {
	sub := p.client.Subscribe(ctx, p.channel)
	defer sub.Close()

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var payload Payload
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				continue
			}
			_, _ = handler.OnRequest(ctx, payload)
		}
	}
}

// Close releases the Redis connection.
func (p *RedisPort) Close() error {
	return p.client.Close()
}
