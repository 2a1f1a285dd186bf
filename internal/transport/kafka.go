package transport

import (
	"context"
	"encoding/json"
	"fmt"

	kafka "github.com/segmentio/kafka-go"

	"github.com/joripage/orderbook-dev/internal/transport/kafkawrapper"
)

// KafkaConfig configures the per-pair topic used as the broadcast
// substrate's rendezvous point: every node subscribed to the same topic
// name is, by construction, a peer for that pair.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

// KafkaPort is the reference Transport Port binding backed by
// github.com/segmentio/kafka-go. Broadcast publishes to the pair's topic;
// Listen runs a consumer group of one reading the same topic, so every
// node — including the publisher — observes every message, which is why
// the Replica Adapter's loopback suppression (internal/replica) is load
// bearing here rather than optional.
type KafkaPort struct {
	producer *kafkawrapper.Producer
	consumer *kafkawrapper.ConsumerGroup
	topic    string
}

// NewKafkaPort dials the configured brokers and prepares both the producer
// and the consumer group side of the binding.
func NewKafkaPort(cfg KafkaConfig) (*KafkaPort, error) {
	consumer, err := kafkawrapper.NewConsumerGroup(kafkawrapper.ConsumerConfig{
		Brokers:    cfg.Brokers,
		GroupID:    cfg.GroupID,
		Topic:      cfg.Topic,
		AutoCommit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("transport: init kafka consumer: %w", err)
	}

	return &KafkaPort{
		producer: kafkawrapper.NewProducer(kafkawrapper.ProducerConfig{Brokers: cfg.Brokers, Balancer: &kafka.RoundRobin{}}),
		consumer: consumer,
		topic:    cfg.Topic,
	}, nil
}

// Broadcast publishes payload to the pair's topic. There is no concept of
// "no peers found" for a topic-based substrate — a publish always
// succeeds or fails as a whole — so the returned channel always carries
// exactly one PeerResult representing the topic itself.
func (p *KafkaPort) Broadcast(ctx context.Context, payload Payload) (<-chan []PeerResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("transport: marshal payload: %w", err)
	}

	ch := make(chan []PeerResult, 1)
	err = p.producer.Publish(ctx, p.topic, []byte(payload.peerKey()), body, nil)
	ch <- []PeerResult{{PeerID: p.topic, Err: err}}
	close(ch)
	return ch, nil
}

// Listen drains the consumer group, decoding each batch member as a
// Payload and handing it to handler.OnRequest.
func (p *KafkaPort) Listen(ctx context.Context, handler RequestHandler) error {
	return p.consumer.Run(ctx, func(ctx context.Context, msgs []kafkawrapper.Message) error {
		for _, m := range msgs {
			var payload Payload
			if err := json.Unmarshal(m.Value, &payload); err != nil {
				continue
			}
			_, _ = handler.OnRequest(ctx, payload)
		}
		return nil
	})
}

// Close releases the producer and consumer connections.
func (p *KafkaPort) Close() error {
	_ = p.producer.Close(context.Background())
	return p.consumer.Close()
}

func (p Payload) peerKey() string {
	if p.Order != nil {
		return p.Order.ID
	}
	return string(p.Type)
}
