// Package kafkawrapper publishes messages to Kafka and runs a batch-mode
// consumer group: ConsumerGroup.Run delivers slices of Message to the
// handler instead of one at a time, so a broadcast-substrate binding can
// apply a whole batch of relayed orders per handler call.
package kafkawrapper

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafka "github.com/segmentio/kafka-go"
)

type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Time      time.Time
	Headers   map[string]string
	Raw       kafka.Message
}

type ProducerConfig struct {
	Brokers      []string
	Balancer     kafka.Balancer
	BatchSize    int
	BatchBytes   int64
	BatchTimeout time.Duration
}

type Producer struct {
	w *kafka.Writer
}

func NewProducer(cfg ProducerConfig) *Producer {
	if cfg.Balancer == nil {
		cfg.Balancer = &kafka.Hash{}
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchBytes == 0 {
		cfg.BatchBytes = 1 << 20
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	wr := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               cfg.Balancer,
		BatchSize:              cfg.BatchSize,
		BatchBytes:             cfg.BatchBytes,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireNone,
		Async:                  true,
	}
	return &Producer{w: wr}
}

func (p *Producer) Publish(ctx context.Context, topic string, key []byte, value []byte, headers map[string]string) error {
	if p == nil || p.w == nil {
		return errors.New("producer not initialized")
	}
	var kh []kafka.Header
	for k, v := range headers {
		kh = append(kh, kafka.Header{Key: k, Value: []byte(v)})
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Topic:   topic,
		Key:     key,
		Value:   value,
		Headers: kh,
		Time:    time.Now(),
	})
}

func (p *Producer) Close(ctx context.Context) error {
	if p == nil || p.w == nil {
		return nil
	}
	return p.w.Close()
}

type ConsumerConfig struct {
	Brokers      []string
	GroupID      string
	Topic        string
	AutoCommit   bool
	BatchSize    int           // max messages gathered into one handler call
	BatchTimeout time.Duration // max time spent gathering a batch
}

type ConsumerGroup struct {
	r   *kafka.Reader
	cfg ConsumerConfig
}

func NewConsumerGroup(cfg ConsumerConfig) (*ConsumerGroup, error) {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 50
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 200 * time.Millisecond
	}
	rd := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafka.FirstOffset,
		MaxWait:     500 * time.Millisecond,
		MinBytes:    1,
		MaxBytes:    10 << 20,
	})

	return &ConsumerGroup{r: rd, cfg: cfg}, nil
}

func (cg *ConsumerGroup) Close() error {
	if cg == nil || cg.r == nil {
		return nil
	}
	return cg.r.Close()
}

// Run gathers messages into batches of at most cfg.BatchSize, or whatever
// arrived within cfg.BatchTimeout, and hands each batch to handler in turn.
func (cg *ConsumerGroup) Run(ctx context.Context, handler func(context.Context, []Message) error) error {
	if cg == nil || cg.r == nil {
		return errors.New("consumer not initialized")
	}

	var buf []kafka.Message
	timer := time.NewTimer(cg.cfg.BatchTimeout)
	defer timer.Stop()

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		wrapped := make([]Message, len(buf))
		for i, m := range buf {
			wrapped[i] = wrapMessage(m)
		}
		if err := handler(ctx, wrapped); err != nil {
			return err
		}
		if cg.cfg.AutoCommit {
			_ = cg.r.CommitMessages(ctx, buf...)
		}
		buf = nil
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			_ = flush()
			return ctx.Err()
		case <-timer.C:
			if err := flush(); err != nil {
				return fmt.Errorf("handle batch: %w", err)
			}
			timer.Reset(cg.cfg.BatchTimeout)
		default:
			// Bound each fetch by BatchTimeout so a partial batch is still
			// handed over when no further message arrives.
			fetchCtx, cancelFetch := context.WithTimeout(ctx, cg.cfg.BatchTimeout)
			m, err := cg.r.FetchMessage(fetchCtx)
			cancelFetch()
			if err != nil {
				if ctx.Err() != nil {
					_ = flush()
					return ctx.Err()
				}
				if errors.Is(err, context.DeadlineExceeded) {
					continue
				}
				return fmt.Errorf("fetch message: %w", err)
			}
			buf = append(buf, m)
			if len(buf) >= cg.cfg.BatchSize {
				if err := flush(); err != nil {
					return fmt.Errorf("handle batch: %w", err)
				}
				if !timer.Stop() {
					<-timer.C
				}
				timer.Reset(cg.cfg.BatchTimeout)
			}
		}
	}
}

func wrapMessage(m kafka.Message) Message {
	headers := map[string]string{}
	for _, h := range m.Headers {
		headers[h.Key] = string(h.Value)
	}
	return Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Time:      m.Time,
		Headers:   headers,
		Raw:       m,
	}
}
