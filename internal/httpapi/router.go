// Package httpapi exposes the node's REST and Server-Sent-Events surface:
// order submission and cancellation, book/trade queries, and a push feed of
// trade and book-change events, grounded on the gorilla/mux routing style
// used elsewhere in the reference pack.
package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/joripage/orderbook-dev/internal/logging"
	"github.com/joripage/orderbook-dev/internal/replica"
)

// Handler wires the Replica Adapter and an event broadcaster into HTTP
// routes.
type Handler struct {
	adapter *replica.Adapter
	events  *Broadcaster
	log     *logging.Logger
}

// NewHandler constructs a Handler over adapter. Its SSE route streams
// whatever is published on events to each connected client.
func NewHandler(adapter *replica.Adapter, events *Broadcaster, log *logging.Logger) *Handler {
	return &Handler{adapter: adapter, events: events, log: log}
}

// Router builds the mux.Router exposing this node's REST and SSE surface.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/state", h.GetState).Methods(http.MethodGet)
	r.HandleFunc("/trades", h.GetTrades).Methods(http.MethodGet)
	r.HandleFunc("/order", h.PostOrder).Methods(http.MethodPost)
	r.HandleFunc("/order/{id}", h.DeleteOrder).Methods(http.MethodDelete)
	r.HandleFunc("/events", h.Events).Methods(http.MethodGet)
	return r
}
