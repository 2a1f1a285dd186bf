package orderbook

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an immutable record produced by a single fill. Price is always
// the resting order's price, not the aggressor's.
type Trade struct {
	ID          string
	Pair        string
	Price       decimal.Decimal
	Quantity    decimal.Decimal
	BuyOrderID  string
	SellOrderID string
	BuyPeerID   string
	SellPeerID  string
	Timestamp   time.Time
}

// newTradeID returns a collision-free identifier built from a per-book
// monotonic sequence rather than a millisecond timestamp, per the decision
// recorded in SPEC_FULL.md section 4.3.
func newTradeID(seq uint64, aggressorID, restingID string) string {
	return fmt.Sprintf("%s_%s_%d", aggressorID, restingID, seq)
}
