// Package transport defines the abstract broadcast/receive substrate the
// Replica Adapter is built against. The matching engine and the adapter
// never depend on a concrete transport — only on this package's
// interfaces — so a lookup-based overlay, a message broker, or a loopback
// test double are all interchangeable bindings.
package transport

import (
	"context"

	"github.com/joripage/orderbook-dev/internal/orderbook"
)

// PayloadType discriminates the handful of message kinds the core
// understands. Any other value is ignored by a RequestHandler.
type PayloadType string

const (
	NewOrder        PayloadType = "NEW_ORDER"
	SnapshotRequest PayloadType = "SNAPSHOT_REQUEST"
)

// Payload is the wire-independent envelope carried over the substrate.
// Order is populated only for NewOrder.
type Payload struct {
	Type  PayloadType      `json:"type"`
	Order *orderbook.Order `json:"order,omitempty"`
}

// PeerResult is one peer's outcome for a single broadcast call.
type PeerResult struct {
	PeerID string
	Err    error
}

// ErrNoPeers is a distinguished, non-fatal outcome: implementers must
// tolerate broadcasting into an empty peer set without treating it as an
// error condition.
var ErrNoPeers = errNoPeers{}

type errNoPeers struct{}

func (errNoPeers) Error() string { return "transport: no peers found" }

// RequestHandler is implemented by the Replica Adapter; a Port delivers
// every inbound payload to it.
type RequestHandler interface {
	OnRequest(ctx context.Context, payload Payload) (any, error)
}

// Port is the injected collaborator the core broadcasts through and
// receives from. Implementations live outside this module's concern
// (internal/transport/kafka.go and internal/transport/redis.go are
// reference bindings, not part of the core's contract).
type Port interface {
	// Broadcast hands payload to every known peer and returns a channel
	// that will eventually carry one PeerResult per peer addressed. A
	// send into an empty peer set resolves with ErrNoPeers, which callers
	// must treat as a warning, not a failure.
	Broadcast(ctx context.Context, payload Payload) (<-chan []PeerResult, error)

	// Listen runs the receive loop, delivering every inbound payload to
	// handler.OnRequest, until ctx is cancelled.
	Listen(ctx context.Context, handler RequestHandler) error
}
