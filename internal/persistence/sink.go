package persistence

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/joripage/orderbook-dev/internal/orderbook"
)

// SinkConfig controls how aggressively the TradeSink batches before
// flushing to TradeRepo.
type SinkConfig struct {
	BufferSize    int
	FlushInterval time.Duration
	FlushBatch    int
}

func (c SinkConfig) withDefaults() SinkConfig {
	if c.BufferSize <= 0 {
		c.BufferSize = 1024
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 200 * time.Millisecond
	}
	if c.FlushBatch <= 0 {
		c.FlushBatch = 50
	}
	return c
}

// tradeBulkCreator is the slice of TradeRepo the sink depends on, narrowed
// so tests can exercise the batching logic with a fake instead of a live
// database.
type tradeBulkCreator interface {
	BulkCreate(ctx context.Context, trades []*orderbook.Trade) error
}

// TradeSink is an orderbook.Hooks.OnTrade subscriber that hands trades off
// to a buffered channel and flushes them to a tradeBulkCreator on a worker
// goroutine, the same batch-then-commit shape as kafkawrapper's consumer
// group offload, repurposed here for a single in-process producer instead
// of a Kafka reader.
//
// A full buffer drops the trade rather than blocking the matching
// goroutine: the trade log is a best-effort downstream view, never load
// bearing for correctness of the book itself.
type TradeSink struct {
	repo   tradeBulkCreator
	cfg    SinkConfig
	ch     chan *orderbook.Trade
	done   chan struct{}
	logger *zap.SugaredLogger
}

// NewTradeSink constructs a sink bound to repo. Run must be started on its
// own goroutine to begin flushing.
func NewTradeSink(repo *TradeRepo, cfg SinkConfig) *TradeSink {
	cfg = cfg.withDefaults()
	return &TradeSink{
		repo:   repo,
		cfg:    cfg,
		ch:     make(chan *orderbook.Trade, cfg.BufferSize),
		done:   make(chan struct{}),
		logger: zap.S(),
	}
}

// OnTrade is wired directly as orderbook.Hooks.OnTrade.
func (s *TradeSink) OnTrade(t *orderbook.Trade) {
	select {
	case s.ch <- t:
	default:
		s.logger.Warnf("persistence: trade sink buffer full, dropping trade %s", t.ID)
	}
}

// Run drains the buffer, batching up to FlushBatch trades or FlushInterval,
// whichever comes first, until ctx is cancelled.
func (s *TradeSink) Run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	buf := make([]*orderbook.Trade, 0, s.cfg.FlushBatch)
	flush := func() {
		if len(buf) == 0 {
			return
		}
		if err := s.repo.BulkCreate(context.Background(), buf); err != nil {
			s.logger.Errorf("persistence: flush trade batch failed: %v", err)
		}
		buf = buf[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case t := <-s.ch:
			buf = append(buf, t)
			if len(buf) >= s.cfg.FlushBatch {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Wait blocks until Run has returned, for a graceful-shutdown final flush.
func (s *TradeSink) Wait() {
	<-s.done
}
