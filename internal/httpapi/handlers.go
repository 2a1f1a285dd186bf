package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/joripage/orderbook-dev/internal/orderbook"
)

// orderRequest is the wire shape of POST /order.
type orderRequest struct {
	Side     orderbook.Side `json:"side"`
	Type     orderbook.Type `json:"type"`
	Price    string         `json:"price,omitempty"`
	Quantity string         `json:"quantity"`
}

type orderResponse struct {
	Status    orderbook.Status  `json:"status"`
	Remainder *orderbook.Order  `json:"remainder,omitempty"`
	Trades    []*orderbook.Trade `json:"trades"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// stateResponse is the wire shape of GET /state: the node's own peer id
// alongside the book's snapshot and a tail of its most recent trades.
type stateResponse struct {
	PeerID string `json:"peerId"`
	*orderbook.Snapshot
	Trades []*orderbook.Trade `json:"trades"`
}

// GetState returns the node's peer id, the book's current snapshot
// (resting bids, asks, best bid/ask, and spread), and its last 20 trades.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stateResponse{
		PeerID:   h.adapter.PeerID(),
		Snapshot: h.adapter.Snapshot(),
		Trades:   h.adapter.Book().LastTrades(20),
	})
}

// GetTrades returns the full trade log, oldest first.
func (h *Handler) GetTrades(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.adapter.Book().GetTrades())
}

// PostOrder submits a new locally-originated order and returns the
// immediate match outcome.
func (h *Handler) PostOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	order := &orderbook.Order{
		Side: req.Side,
		Type: req.Type,
	}
	if req.Price != "" {
		p, err := decimal.NewFromString(req.Price)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		order.Price = &p
	}
	qty, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	order.Quantity = qty

	result, err := h.adapter.SubmitLocal(r.Context(), order)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, orderResponse{
		Status:    result.Status,
		Remainder: result.Remainder,
		Trades:    result.Trades,
	})
}

// DeleteOrder cancels a locally-resting order by id and answers
// {ok, cancelled}; an unknown id gets a 404 error body.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	order, ok := h.adapter.Cancel(id)
	if !ok {
		writeError(w, http.StatusNotFound, errOrderNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "cancelled": order})
}
