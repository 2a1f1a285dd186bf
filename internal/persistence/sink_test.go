package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/joripage/orderbook-dev/internal/orderbook"
)

func discardLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

type fakeBulkCreator struct {
	mu      sync.Mutex
	batches [][]*orderbook.Trade
}

func (f *fakeBulkCreator) BulkCreate(ctx context.Context, trades []*orderbook.Trade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := make([]*orderbook.Trade, len(trades))
	copy(batch, trades)
	f.batches = append(f.batches, batch)
	return nil
}

func (f *fakeBulkCreator) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

func newTestSink(repo tradeBulkCreator, cfg SinkConfig) *TradeSink {
	cfg = cfg.withDefaults()
	return &TradeSink{
		repo: repo,
		cfg:  cfg,
		ch:   make(chan *orderbook.Trade, cfg.BufferSize),
		done: make(chan struct{}),
	}
}

func testTrade(id string) *orderbook.Trade {
	return &orderbook.Trade{ID: id, Pair: "BTC-USD", Price: decimal.NewFromInt(1), Quantity: decimal.NewFromInt(1)}
}

func TestTradeSinkFlushesOnBatchSize(t *testing.T) {
	fake := &fakeBulkCreator{}
	sink := newTestSink(fake, SinkConfig{FlushBatch: 2, FlushInterval: time.Hour, BufferSize: 8})
	sink.logger = discardLogger()

	ctx, cancel := context.WithCancel(context.Background())
	go sink.Run(ctx)

	sink.OnTrade(testTrade("t1"))
	sink.OnTrade(testTrade("t2"))

	deadline := time.Now().Add(time.Second)
	for fake.total() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	cancel()
	sink.Wait()

	if fake.total() != 2 {
		t.Fatalf("expected 2 trades flushed, got %d", fake.total())
	}
}

func TestTradeSinkFlushesOnShutdown(t *testing.T) {
	fake := &fakeBulkCreator{}
	sink := newTestSink(fake, SinkConfig{FlushBatch: 100, FlushInterval: time.Hour, BufferSize: 8})
	sink.logger = discardLogger()

	ctx, cancel := context.WithCancel(context.Background())
	go sink.Run(ctx)

	sink.OnTrade(testTrade("t1"))
	time.Sleep(10 * time.Millisecond)

	cancel()
	sink.Wait()

	if fake.total() != 1 {
		t.Fatalf("expected final flush to drain 1 trade, got %d", fake.total())
	}
}

func TestTradeSinkDropsWhenBufferFull(t *testing.T) {
	fake := &fakeBulkCreator{}
	sink := newTestSink(fake, SinkConfig{FlushBatch: 100, FlushInterval: time.Hour, BufferSize: 1})
	sink.logger = discardLogger()

	sink.ch <- testTrade("t1")
	sink.OnTrade(testTrade("t2"))

	if len(sink.ch) != 1 {
		t.Fatalf("expected buffer to stay at capacity 1, got %d", len(sink.ch))
	}
}
