package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/joripage/orderbook-dev/internal/logging"
	"github.com/joripage/orderbook-dev/internal/orderbook"
	"github.com/joripage/orderbook-dev/internal/replica"
)

func newTestHandler() *Handler {
	book := orderbook.New(orderbook.Config{Pair: "BTC-USD"})
	adapter := replica.New(book, "peer-1", nil, logging.New(logging.ERROR))
	return NewHandler(adapter, NewBroadcaster(), logging.New(logging.ERROR))
}

func TestPostOrderThenGetState(t *testing.T) {
	h := newTestHandler()
	router := h.Router()

	body := strings.NewReader(`{"side":"BUY","type":"LIMIT","price":"100.00","quantity":"1"}`)
	req := httptest.NewRequest(http.MethodPost, "/order", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp orderResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != orderbook.StatusOpen {
		t.Errorf("expected OPEN status, got %v", resp.Status)
	}

	stateReq := httptest.NewRequest(http.MethodGet, "/state", nil)
	stateRec := httptest.NewRecorder()
	router.ServeHTTP(stateRec, stateReq)

	var snap orderbook.Snapshot
	if err := json.Unmarshal(stateRec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(snap.Bids) != 1 {
		t.Errorf("expected 1 resting bid, got %d", len(snap.Bids))
	}
}

func TestPostOrderRejectsBadQuantity(t *testing.T) {
	h := newTestHandler()
	router := h.Router()

	body := strings.NewReader(`{"side":"BUY","type":"LIMIT","price":"100.00","quantity":"not-a-number"}`)
	req := httptest.NewRequest(http.MethodPost, "/order", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteOrderNotFound(t *testing.T) {
	h := newTestHandler()
	router := h.Router()

	req := httptest.NewRequest(http.MethodDelete, "/order/unknown", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteOrderCancelsResting(t *testing.T) {
	h := newTestHandler()
	router := h.Router()

	postReq := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(`{"side":"SELL","type":"LIMIT","price":"100.00","quantity":"1"}`))
	postRec := httptest.NewRecorder()
	router.ServeHTTP(postRec, postReq)

	snap := h.adapter.Snapshot()
	if len(snap.Asks) != 1 {
		t.Fatalf("expected 1 resting ask, got %d", len(snap.Asks))
	}
	id := snap.Asks[0].ID

	delReq := httptest.NewRequest(http.MethodDelete, "/order/"+id, nil)
	delRec := httptest.NewRecorder()
	router.ServeHTTP(delRec, delReq)

	if delRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", delRec.Code, delRec.Body.String())
	}
	if len(h.adapter.Snapshot().Asks) != 0 {
		t.Error("expected ask to be removed from the book")
	}
}
