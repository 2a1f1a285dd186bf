// Package orderbook implements the priority-queue matching engine for a
// single trading pair: the bid/ask heaps, the matching state machine, and
// the snapshot/replay surface used to onboard a replica.
package orderbook

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is the direction of an order.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Type distinguishes resting limit orders from sweep-and-discard market orders.
type Type string

const (
	Limit  Type = "LIMIT"
	Market Type = "MARKET"
)

// Status is an order's lifecycle position.
type Status string

const (
	StatusOpen            Status = "OPEN"
	StatusPartiallyFilled Status = "PARTIALLY_FILLED"
	StatusFilled          Status = "FILLED"
	StatusCancelled       Status = "CANCELLED"
)

// Order is the canonical unit submitted to the book. Price is nil for
// Market orders; it is never interpreted once a Market order is accepted.
type Order struct {
	ID        string
	Symbol    string
	Side      Side
	Type      Type
	Price     *decimal.Decimal
	Quantity  decimal.Decimal
	PeerID    string
	Timestamp time.Time
	Status    Status
}

// Clone returns a deep copy so callers (snapshots, queries) never alias a
// resting order owned by a heap.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	if o.Price != nil {
		p := *o.Price
		clone.Price = &p
	}
	return &clone
}
