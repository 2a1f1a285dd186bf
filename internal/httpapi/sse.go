package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/joripage/orderbook-dev/internal/orderbook"
)

var errOrderNotFound = errors.New("httpapi: order not found")

// event is the SSE payload shape pushed to every connected client.
type event struct {
	Kind     string             `json:"kind"`
	Snapshot *orderbook.Snapshot `json:"snapshot,omitempty"`
	Trade    *orderbook.Trade    `json:"trade,omitempty"`
	Order    *orderbook.Order    `json:"order,omitempty"`
}

// Broadcaster fans out book events to every connected SSE client. It is
// wired as orderbook.Hooks.OnTrade/OnOrderAdded/OnOrderRemoved so the same
// hook table that feeds the persistence sink also drives the push feed.
type Broadcaster struct {
	mu      sync.Mutex
	clients map[string]chan event
}

// NewBroadcaster constructs an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{clients: make(map[string]chan event)}
}

// OnTrade is wired directly as orderbook.Hooks.OnTrade.
func (b *Broadcaster) OnTrade(t *orderbook.Trade) { b.publish(event{Kind: "trade", Trade: t}) }

// OnOrderAdded is wired directly as orderbook.Hooks.OnOrderAdded.
func (b *Broadcaster) OnOrderAdded(o *orderbook.Order) {
	b.publish(event{Kind: "order_added", Order: o})
}

// OnOrderRemoved is wired directly as orderbook.Hooks.OnOrderRemoved.
func (b *Broadcaster) OnOrderRemoved(o *orderbook.Order) {
	b.publish(event{Kind: "order_removed", Order: o})
}

func (b *Broadcaster) publish(e event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.clients {
		select {
		case ch <- e:
		default:
			// A slow client drops events rather than blocking the book's
			// hook-firing goroutine.
		}
	}
}

func (b *Broadcaster) subscribe() (string, chan event) {
	id := uuid.NewString()
	ch := make(chan event, 64)
	b.mu.Lock()
	b.clients[id] = ch
	b.mu.Unlock()
	return id, ch
}

func (b *Broadcaster) unsubscribe(id string) {
	b.mu.Lock()
	delete(b.clients, id)
	b.mu.Unlock()
}

// Events streams book events to the client as Server-Sent Events until the
// client disconnects.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("httpapi: streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	id, ch := h.events.subscribe()
	defer h.events.unsubscribe(id)

	initial, err := json.Marshal(event{Kind: "snapshot", Snapshot: h.adapter.Snapshot()})
	if err == nil {
		fmt.Fprintf(w, "data: %s\n\n", initial)
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-ch:
			body, err := json.Marshal(e)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", body)
			flusher.Flush()
		}
	}
}
