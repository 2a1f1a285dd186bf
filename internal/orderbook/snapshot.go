package orderbook

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is a serializable, self-contained representation of a book's
// resting state, sufficient to rebuild an equivalent book on another node.
// Heap array order is not significant — GetSnapshot and LoadSnapshot treat
// Bids/Asks as an unordered multiset.
type Snapshot struct {
	Pair      string           `json:"pair"`
	Timestamp time.Time        `json:"timestamp"`
	Bids      []*Order         `json:"bids"`
	Asks      []*Order         `json:"asks"`
	BestBid   *Order           `json:"best_bid,omitempty"`
	BestAsk   *Order           `json:"best_ask,omitempty"`
	Spread    *decimal.Decimal `json:"spread,omitempty"`
}

// GetSnapshot returns a deep copy of the book's current resting state.
func (b *Book) GetSnapshot() *Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap := &Snapshot{
		Pair:      b.pair,
		Timestamp: time.Now(),
		Bids:      cloneAll(b.bids.ToSlice()),
		Asks:      cloneAll(b.asks.ToSlice()),
	}

	if bid, ok := b.bids.Peek(); ok {
		snap.BestBid = bid.Clone()
	}
	if ask, ok := b.asks.Peek(); ok {
		snap.BestAsk = ask.Clone()
	}
	if snap.BestBid != nil && snap.BestAsk != nil {
		spread := snap.BestAsk.Price.Sub(*snap.BestBid.Price).Round(b.pricePrecision)
		snap.Spread = &spread
	}

	return snap
}

// LoadSnapshot rebuilds both heaps from a snapshot's order lists, treating
// each list as an unordered multiset and re-establishing heap order purely
// by insertion. It does not replay trade history, and it refuses a snapshot
// from a different pair.
func (b *Book) LoadSnapshot(snapshot *Snapshot) error {
	if snapshot.Pair != b.pair {
		return ErrPairMismatch
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.bids = newOrderHeap(bidLess)
	b.asks = newOrderHeap(askLess)

	for _, o := range snapshot.Bids {
		b.bids.Insert(o.Clone())
	}
	for _, o := range snapshot.Asks {
		b.asks.Insert(o.Clone())
	}

	return nil
}
