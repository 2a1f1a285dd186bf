package orderbook

import (
	"testing"
	"time"
)

func mkOrder(id, p string, ts time.Time) *Order {
	return &Order{ID: id, Price: price(p), Quantity: qty("1"), Timestamp: ts}
}

func TestBidHeapOrdersByPriceThenTime(t *testing.T) {
	h := newOrderHeap(bidLess)
	base := time.Now()
	h.Insert(mkOrder("a", "100", base))
	h.Insert(mkOrder("b", "105", base.Add(time.Second)))
	h.Insert(mkOrder("c", "105", base))

	top, ok := h.Peek()
	if !ok || top.ID != "c" {
		t.Fatalf("expected c (higher price, earlier time) on top, got %+v", top)
	}
}

func TestAskHeapOrdersByPriceThenTime(t *testing.T) {
	h := newOrderHeap(askLess)
	base := time.Now()
	h.Insert(mkOrder("a", "105", base))
	h.Insert(mkOrder("b", "100", base.Add(time.Second)))
	h.Insert(mkOrder("c", "100", base))

	top, ok := h.Peek()
	if !ok || top.ID != "c" {
		t.Fatalf("expected c (lower price, earlier time) on top, got %+v", top)
	}
}

func TestHeapExtractTopDrainsInPriorityOrder(t *testing.T) {
	h := newOrderHeap(askLess)
	h.Insert(mkOrder("a", "103", time.Now()))
	h.Insert(mkOrder("b", "101", time.Now()))
	h.Insert(mkOrder("c", "102", time.Now()))

	var order []string
	for !h.IsEmpty() {
		top, _ := h.ExtractTop()
		order = append(order, top.ID)
	}

	want := []string{"b", "c", "a"}
	for i, id := range want {
		if order[i] != id {
			t.Fatalf("extract order = %v, want %v", order, want)
		}
	}
}

func TestHeapRemoveByID(t *testing.T) {
	h := newOrderHeap(askLess)
	h.Insert(mkOrder("a", "101", time.Now()))
	h.Insert(mkOrder("b", "100", time.Now()))
	h.Insert(mkOrder("c", "102", time.Now()))

	removed, ok := h.RemoveByID("b")
	if !ok || removed.ID != "b" {
		t.Fatalf("expected to remove b, got %+v ok=%v", removed, ok)
	}
	if h.Size() != 2 {
		t.Fatalf("expected size 2 after removal, got %d", h.Size())
	}
	top, _ := h.Peek()
	if top.ID != "a" {
		t.Fatalf("expected a to become top after removing b, got %s", top.ID)
	}
	if _, ok := h.RemoveByID("missing"); ok {
		t.Error("expected removing an unknown id to report ok=false")
	}
}

func TestHeapUpdateQuantityDoesNotResift(t *testing.T) {
	h := newOrderHeap(askLess)
	h.Insert(mkOrder("a", "100", time.Now()))

	if !h.UpdateQuantity("a", qty("42")) {
		t.Fatal("expected update to find a")
	}
	top, _ := h.Peek()
	if !top.Quantity.Equal(qty("42")) {
		t.Errorf("expected updated quantity 42, got %v", top.Quantity)
	}
	if h.UpdateQuantity("missing", qty("1")) {
		t.Error("expected update of unknown id to report false")
	}
}
