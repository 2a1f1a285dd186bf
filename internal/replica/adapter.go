// Package replica wraps an orderbook.Book with origin tracking so a node
// can tell a locally-submitted order from one relayed by a peer, and
// dispatches the outbound broadcasts that keep every replica's book
// converging on an equivalent sequence of matches.
//
// Each replica matches independently on arrival; no attempt is made to
// preserve a global total order across peers. Two peers that submit
// crossing orders at the same moment will each match locally and then
// receive an already-matched order back from the other side — both
// replicas stay internally consistent, but their trade histories can
// diverge. Broadcast delivery is best-effort: a send that fails or lands
// on an empty peer set is logged and otherwise ignored, not retried here.
package replica

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/joripage/orderbook-dev/internal/logging"
	"github.com/joripage/orderbook-dev/internal/orderbook"
	"github.com/joripage/orderbook-dev/internal/transport"
)

// Adapter is the Replica Adapter of the distilled specification.
type Adapter struct {
	book       *orderbook.Book
	selfPeerID string
	port       transport.Port
	log        *logging.Logger
	cache      *SnapshotCache
}

// New builds an Adapter over book, identified to peers as selfPeerID.
func New(book *orderbook.Book, selfPeerID string, port transport.Port, log *logging.Logger) *Adapter {
	return &Adapter{book: book, selfPeerID: selfPeerID, port: port, log: log}
}

// WithSnapshotCache enables caching of SNAPSHOT_REQUEST responses. It
// returns the adapter for chaining at construction time.
func (a *Adapter) WithSnapshotCache(cache *SnapshotCache) *Adapter {
	a.cache = cache
	return a
}

// SubmitLocal assigns provenance to a locally-submitted order, applies it,
// and — if application succeeded — broadcasts the pre-matching payload to
// every peer. Broadcast failure never rolls the local application back.
func (a *Adapter) SubmitLocal(ctx context.Context, order *orderbook.Order) (orderbook.AddResult, error) {
	order.PeerID = a.selfPeerID
	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	payload := transport.Payload{Type: transport.NewOrder, Order: order.Clone()}

	result, err := a.book.AddOrder(order)
	if err != nil {
		return result, err
	}

	a.broadcast(ctx, payload)
	return result, nil
}

func (a *Adapter) broadcast(ctx context.Context, payload transport.Payload) {
	if a.port == nil {
		return
	}
	results, err := a.port.Broadcast(ctx, payload)
	if err != nil {
		a.log.Warn("broadcast failed", zap.Error(err), zap.String("order_id", payload.Order.ID))
		return
	}
	go func() {
		for peerResults := range results {
			for _, r := range peerResults {
				if r.Err != nil {
					a.log.Warn("peer delivery failed",
						zap.String("peer_id", r.PeerID),
						zap.Error(r.Err),
						zap.String("order_id", payload.Order.ID))
				}
			}
		}
	}()
}

// Cancel cancels a locally-known order by id. Cancellation of in-flight
// remote orders is out of scope: only orders resting in this replica's own
// book can be cancelled, which is exactly what Book.CancelOrder already
// enforces by id lookup.
func (a *Adapter) Cancel(id string) (*orderbook.Order, bool) {
	return a.book.CancelOrder(id)
}

// OnRequest implements transport.RequestHandler: it is invoked by a Port
// whenever a remote peer delivers a payload.
func (a *Adapter) OnRequest(ctx context.Context, payload transport.Payload) (any, error) {
	switch payload.Type {
	case transport.NewOrder:
		return a.onNewOrder(ctx, payload)
	case transport.SnapshotRequest:
		if a.cache != nil {
			if snap, ok := a.cache.Get(ctx); ok {
				return snap, nil
			}
		}
		snap := a.book.GetSnapshot()
		if a.cache != nil {
			a.cache.Set(ctx, snap)
		}
		return snap, nil
	default:
		return nil, nil
	}
}

func (a *Adapter) onNewOrder(ctx context.Context, payload transport.Payload) (any, error) {
	order := payload.Order
	if order == nil {
		return nil, nil
	}
	if order.PeerID == a.selfPeerID {
		// Loopback suppression: this is our own order echoed back by the
		// broadcast substrate.
		return nil, nil
	}

	result, err := a.book.ApplyRemoteOrder(order)
	if err != nil {
		a.log.Error("apply remote order failed", zap.Error(err), zap.String("order_id", order.ID))
		return nil, err
	}
	return result, nil
}

// Listen runs the Port's receive loop with this Adapter as the handler,
// blocking until ctx is cancelled.
func (a *Adapter) Listen(ctx context.Context) error {
	if a.port == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	return a.port.Listen(ctx, a)
}

// Snapshot returns the underlying book's current snapshot, the same value
// an inbound SNAPSHOT_REQUEST would receive.
func (a *Adapter) Snapshot() *orderbook.Snapshot {
	return a.book.GetSnapshot()
}

// Book exposes the wrapped book for read-only query adapters (REST, SSE).
func (a *Adapter) Book() *orderbook.Book {
	return a.book
}

// PeerID returns this node's own peer identifier.
func (a *Adapter) PeerID() string {
	return a.selfPeerID
}
