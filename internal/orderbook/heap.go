package orderbook

import (
	"container/heap"

	"github.com/shopspring/decimal"
)

// orderHeap is a binary heap over *Order, parameterized by a less function
// the way the teacher's PriceHeap is parameterized by a price comparator,
// generalized here to carry whole orders (and therefore FIFO-at-a-price
// ordering) rather than bare price levels.
type orderHeap struct {
	items []*Order
	less  func(a, b *Order) bool
}

func newOrderHeap(less func(a, b *Order) bool) *orderHeap {
	return &orderHeap{less: less}
}

// heap.Interface

func (h *orderHeap) Len() int { return len(h.items) }

func (h *orderHeap) Less(i, j int) bool { return h.less(h.items[i], h.items[j]) }

func (h *orderHeap) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *orderHeap) Push(x any) { h.items = append(h.items, x.(*Order)) }

func (h *orderHeap) Pop() any {
	n := len(h.items)
	item := h.items[n-1]
	h.items[n-1] = nil
	h.items = h.items[:n-1]
	return item
}

// Insert appends and sifts up. O(log n).
func (h *orderHeap) Insert(o *Order) {
	heap.Push(h, o)
}

// Peek returns the highest-priority order without mutating the heap.
func (h *orderHeap) Peek() (*Order, bool) {
	if len(h.items) == 0 {
		return nil, false
	}
	return h.items[0], true
}

// ExtractTop removes and returns the highest-priority order.
func (h *orderHeap) ExtractTop() (*Order, bool) {
	if len(h.items) == 0 {
		return nil, false
	}
	return heap.Pop(h).(*Order), true
}

// RemoveByID locates an order by id via linear scan and restores heap order
// after removal, per the distilled spec's swap-with-tail-then-sift contract.
func (h *orderHeap) RemoveByID(id string) (*Order, bool) {
	for i, o := range h.items {
		if o.ID == id {
			removed := heap.Remove(h, i).(*Order)
			return removed, true
		}
	}
	return nil, false
}

// UpdateQuantity mutates an order's resting quantity in place without
// re-sifting: sound only because neither ordering relation (bidLess and
// askLess in book.go) depends on quantity. A comparator that starts caring about quantity must revisit
// this fast path.
func (h *orderHeap) UpdateQuantity(id string, qty decimal.Decimal) bool {
	for _, o := range h.items {
		if o.ID == id {
			o.Quantity = qty
			return true
		}
	}
	return false
}

func (h *orderHeap) Size() int { return len(h.items) }

func (h *orderHeap) IsEmpty() bool { return len(h.items) == 0 }

// ToSlice returns a shallow copy of the backing array for snapshot export;
// callers must Clone() individual orders before handing them outside the
// book if they intend to mutate them.
func (h *orderHeap) ToSlice() []*Order {
	out := make([]*Order, len(h.items))
	copy(out, h.items)
	return out
}
