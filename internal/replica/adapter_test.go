package replica

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/joripage/orderbook-dev/internal/logging"
	"github.com/joripage/orderbook-dev/internal/orderbook"
	"github.com/joripage/orderbook-dev/internal/transport"
)

// fakePort is an in-memory transport.Port test double: Broadcast records
// what was sent instead of delivering it anywhere, and Listen is driven
// manually by tests via deliver().
type fakePort struct {
	sent    []transport.Payload
	handler transport.RequestHandler
}

func (f *fakePort) Broadcast(ctx context.Context, payload transport.Payload) (<-chan []transport.PeerResult, error) {
	f.sent = append(f.sent, payload)
	ch := make(chan []transport.PeerResult, 1)
	ch <- []transport.PeerResult{{PeerID: "peer-2"}}
	close(ch)
	return ch, nil
}

func (f *fakePort) Listen(ctx context.Context, handler transport.RequestHandler) error {
	f.handler = handler
	<-ctx.Done()
	return ctx.Err()
}

func newTestAdapter(port transport.Port) *Adapter {
	book := orderbook.New(orderbook.Config{Pair: "BTC-USD"})
	return New(book, "peer-1", port, logging.New(logging.ERROR))
}

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestSubmitLocalAssignsPeerIDAndBroadcasts(t *testing.T) {
	port := &fakePort{}
	a := newTestAdapter(port)

	order := &orderbook.Order{ID: "o1", Side: orderbook.Buy, Type: orderbook.Limit, Price: decPtr("100"), Quantity: decimal.RequireFromString("1")}
	if _, err := a.SubmitLocal(context.Background(), order); err != nil {
		t.Fatalf("SubmitLocal failed: %v", err)
	}

	if len(port.sent) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(port.sent))
	}
	if port.sent[0].Order.PeerID != "peer-1" {
		t.Errorf("expected broadcast order to carry self peer id, got %q", port.sent[0].Order.PeerID)
	}
	if port.sent[0].Type != transport.NewOrder {
		t.Errorf("expected NEW_ORDER payload, got %v", port.sent[0].Type)
	}
}

func TestSubmitLocalAssignsIDWhenMissing(t *testing.T) {
	a := newTestAdapter(&fakePort{})
	order := &orderbook.Order{Side: orderbook.Buy, Type: orderbook.Limit, Price: decPtr("100"), Quantity: decimal.RequireFromString("1")}

	if _, err := a.SubmitLocal(context.Background(), order); err != nil {
		t.Fatalf("SubmitLocal failed: %v", err)
	}
	if order.ID == "" {
		t.Error("expected a generated order id")
	}
}

func TestOnRequestDropsLoopback(t *testing.T) {
	a := newTestAdapter(&fakePort{})
	order := &orderbook.Order{ID: "o1", PeerID: "peer-1", Side: orderbook.Buy, Type: orderbook.Limit, Price: decPtr("100"), Quantity: decimal.RequireFromString("1")}

	result, err := a.OnRequest(context.Background(), transport.Payload{Type: transport.NewOrder, Order: order})
	if err != nil || result != nil {
		t.Fatalf("expected loopback to be dropped silently, got result=%v err=%v", result, err)
	}
	if len(a.Book().GetBids()) != 0 {
		t.Error("loopback order must not be applied to the book")
	}
}

func TestOnRequestAppliesRemoteOrder(t *testing.T) {
	a := newTestAdapter(&fakePort{})
	order := &orderbook.Order{ID: "o1", PeerID: "peer-2", Side: orderbook.Buy, Type: orderbook.Limit, Price: decPtr("100"), Quantity: decimal.RequireFromString("1")}

	result, err := a.OnRequest(context.Background(), transport.Payload{Type: transport.NewOrder, Order: order})
	if err != nil {
		t.Fatalf("OnRequest failed: %v", err)
	}
	if result == nil {
		t.Fatal("expected a non-nil add result")
	}
	if len(a.Book().GetBids()) != 1 {
		t.Error("expected remote order to be applied to the book")
	}
}

func TestOnRequestSnapshot(t *testing.T) {
	a := newTestAdapter(&fakePort{})
	result, err := a.OnRequest(context.Background(), transport.Payload{Type: transport.SnapshotRequest})
	if err != nil {
		t.Fatalf("OnRequest failed: %v", err)
	}
	snap, ok := result.(*orderbook.Snapshot)
	if !ok {
		t.Fatalf("expected *orderbook.Snapshot, got %T", result)
	}
	if snap.Pair != "BTC-USD" {
		t.Errorf("expected pair BTC-USD, got %q", snap.Pair)
	}
}

func TestOnRequestUnknownTypeIsIgnored(t *testing.T) {
	a := newTestAdapter(&fakePort{})
	result, err := a.OnRequest(context.Background(), transport.Payload{Type: "SOMETHING_ELSE"})
	if err != nil || result != nil {
		t.Fatalf("expected unknown payload type to be silently ignored, got result=%v err=%v", result, err)
	}
}

func TestCancelDelegatesToBook(t *testing.T) {
	a := newTestAdapter(&fakePort{})
	order := &orderbook.Order{ID: "o1", Side: orderbook.Buy, Type: orderbook.Limit, Price: decPtr("100"), Quantity: decimal.RequireFromString("1")}
	if _, err := a.SubmitLocal(context.Background(), order); err != nil {
		t.Fatalf("SubmitLocal failed: %v", err)
	}

	removed, ok := a.Cancel("o1")
	if !ok || removed.ID != "o1" {
		t.Fatalf("expected to cancel o1, got %+v ok=%v", removed, ok)
	}
}
