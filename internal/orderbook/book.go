package orderbook

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gammazero/deque"
	"github.com/shopspring/decimal"
)

// Config selects a book's immutable identity and its rounding precision.
// PricePrecision defaults to 2 and QuantityPrecision to 8 when zero, matching
// the distilled specification's defaults.
type Config struct {
	Pair              string
	PricePrecision    int32
	QuantityPrecision int32
	Hooks             Hooks
}

// Book owns one bid heap, one ask heap, an append-only trade log, and the
// hook table that drives downstream propagation. Every exported method
// holds the mutex below for its whole duration, the way the teacher's
// orderBook guards itself, so concurrent callers (in the reference node, the
// HTTP handlers and the transport listener) are served one at a time. Hooks
// run while the mutex is held.
type Book struct {
	mu sync.Mutex

	pair              string
	pricePrecision    int32
	quantityPrecision int32

	bids *orderHeap
	asks *orderHeap

	trades *deque.Deque[*Trade]
	seq    atomic.Uint64

	hooks Hooks
}

// New constructs an empty book for one pair.
func New(cfg Config) *Book {
	pricePrecision := cfg.PricePrecision
	if pricePrecision == 0 {
		pricePrecision = 2
	}
	quantityPrecision := cfg.QuantityPrecision
	if quantityPrecision == 0 {
		quantityPrecision = 8
	}

	return &Book{
		pair:              cfg.Pair,
		pricePrecision:    pricePrecision,
		quantityPrecision: quantityPrecision,
		bids:              newOrderHeap(bidLess),
		asks:              newOrderHeap(askLess),
		trades:            deque.New[*Trade](64),
		hooks:             cfg.Hooks,
	}
}

// bidLess orders the bid heap by price descending, timestamp ascending.
func bidLess(a, b *Order) bool {
	if !a.Price.Equal(*b.Price) {
		return a.Price.GreaterThan(*b.Price)
	}
	return a.Timestamp.Before(b.Timestamp)
}

// askLess orders the ask heap by price ascending, timestamp ascending.
func askLess(a, b *Order) bool {
	if !a.Price.Equal(*b.Price) {
		return a.Price.LessThan(*b.Price)
	}
	return a.Timestamp.Before(b.Timestamp)
}

// Pair returns the book's immutable symbol.
func (b *Book) Pair() string { return b.pair }

// AddResult is the outcome of a single AddOrder/ApplyRemoteOrder call.
type AddResult struct {
	Trades    []*Trade
	Remainder *Order
	Status    Status
}

// AddOrder validates, normalizes, and matches a locally-originated order.
func (b *Book) AddOrder(order *Order) (AddResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addOrderLocked(order)
}

// ApplyRemoteOrder has the identical contract to AddOrder; it exists as a
// distinct entry point so the Replica Adapter can mark provenance in its own
// layer without the book needing a suppression flag.
func (b *Book) ApplyRemoteOrder(order *Order) (AddResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addOrderLocked(order)
}

func (b *Book) addOrderLocked(order *Order) (AddResult, error) {
	if err := b.validate(order); err != nil {
		return AddResult{}, err
	}
	b.normalize(order)

	trades, removed := b.match(order)

	for _, t := range trades {
		b.trades.PushBack(t)
	}
	for _, t := range trades {
		b.hooks.fireTrade(t)
	}
	for _, r := range removed {
		b.hooks.fireOrderRemoved(r)
	}

	result := AddResult{Trades: trades}

	switch {
	case order.Quantity.IsZero():
		order.Status = StatusFilled
		result.Status = StatusFilled
	case len(trades) > 0:
		order.Status = StatusPartiallyFilled
		result.Status = StatusPartiallyFilled
		if order.Type != Market {
			result.Remainder = order.Clone()
		}
	default:
		order.Status = StatusOpen
		result.Status = StatusOpen
		if order.Type != Market {
			result.Remainder = order.Clone()
		}
	}

	if order.Quantity.IsPositive() {
		if order.Type == Limit {
			b.sideHeap(order.Side).Insert(order)
			b.hooks.fireOrderAdded(order)
		}
		// Market residual is discarded silently: it never rests.
	}

	return result, nil
}

// CancelOrder searches bids then asks, removing the first match. Cancelling
// an unknown id is not an error.
func (b *Book) CancelOrder(id string) (*Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, ok := b.bids.RemoveByID(id)
	if !ok {
		order, ok = b.asks.RemoveByID(id)
	}
	if !ok {
		return nil, false
	}

	order.Status = StatusCancelled
	b.hooks.fireOrderRemoved(order)
	return order, true
}

func (b *Book) sideHeap(side Side) *orderHeap {
	if side == Buy {
		return b.bids
	}
	return b.asks
}

func (b *Book) opposingHeap(side Side) *orderHeap {
	if side == Buy {
		return b.asks
	}
	return b.bids
}

func (b *Book) validate(order *Order) error {
	if order.ID == "" {
		return fmt.Errorf("%w: missing id", ErrValidation)
	}
	if order.Side != Buy && order.Side != Sell {
		return fmt.Errorf("%w: invalid side %q", ErrValidation, order.Side)
	}
	if order.Type == "" {
		order.Type = Limit
	}
	if order.Type != Limit && order.Type != Market {
		return fmt.Errorf("%w: invalid type %q", ErrValidation, order.Type)
	}
	if order.Type == Limit {
		if order.Price == nil || !order.Price.IsPositive() {
			return fmt.Errorf("%w: limit order requires a positive price", ErrValidation)
		}
	}
	if !order.Quantity.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}
	return nil
}

func (b *Book) normalize(order *Order) {
	if order.Type == Market {
		order.Price = nil
	} else if order.Price != nil {
		rounded := order.Price.Round(b.pricePrecision)
		order.Price = &rounded
	}
	order.Quantity = order.Quantity.Round(b.quantityPrecision)
	if order.Timestamp.IsZero() {
		order.Timestamp = time.Now()
	}
	order.Status = StatusOpen
}

// BestBid returns the highest-priority resting bid, if any.
func (b *Book) BestBid() (*Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.bids.Peek()
	if !ok {
		return nil, false
	}
	return o.Clone(), true
}

// BestAsk returns the highest-priority resting ask, if any.
func (b *Book) BestAsk() (*Order, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.asks.Peek()
	if !ok {
		return nil, false
	}
	return o.Clone(), true
}

// Spread is best ask minus best bid, rounded to price precision, or absent
// if either side is empty.
func (b *Book) Spread() (decimal.Decimal, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bid, okBid := b.bids.Peek()
	ask, okAsk := b.asks.Peek()
	if !okBid || !okAsk {
		return decimal.Zero, false
	}
	return ask.Price.Sub(*bid.Price).Round(b.pricePrecision), true
}

// GetBids returns a deep copy of every resting bid, heap order (not
// priority order).
func (b *Book) GetBids() []*Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneAll(b.bids.ToSlice())
}

// GetAsks returns a deep copy of every resting ask.
func (b *Book) GetAsks() []*Order {
	b.mu.Lock()
	defer b.mu.Unlock()
	return cloneAll(b.asks.ToSlice())
}

// GetTrades returns a copy of the full trade log, oldest first.
func (b *Book) GetTrades() []*Trade {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Trade, b.trades.Len())
	for i := 0; i < b.trades.Len(); i++ {
		t := *b.trades.At(i)
		out[i] = &t
	}
	return out
}

// LastTrades returns a copy of the most recent n trades, oldest first.
func (b *Book) LastTrades(n int) []*Trade {
	b.mu.Lock()
	defer b.mu.Unlock()
	total := b.trades.Len()
	if n > total {
		n = total
	}
	out := make([]*Trade, n)
	for i := 0; i < n; i++ {
		t := *b.trades.At(total - n + i)
		out[i] = &t
	}
	return out
}

func cloneAll(orders []*Order) []*Order {
	out := make([]*Order, len(orders))
	for i, o := range orders {
		out[i] = o.Clone()
	}
	return out
}
