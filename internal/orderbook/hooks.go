package orderbook

// Hooks is the fixed, enumerated observer table for the three event kinds
// the matching engine emits. Invocation is always synchronous, on the
// caller's goroutine, after matching has finished and the call's trades are
// already in the trade log: first OnTrade once per trade in generation
// order, then OnOrderRemoved once per resting order the call fully
// consumed, in consumption order, then OnOrderAdded if a limit remainder
// was inserted.
//
// A hook must not call back into the book that invoked it; the book is not
// reentrant.
type Hooks struct {
	OnTrade        func(*Trade)
	OnOrderAdded   func(*Order)
	OnOrderRemoved func(*Order)
}

func (h Hooks) fireTrade(t *Trade) {
	if h.OnTrade != nil {
		h.OnTrade(t)
	}
}

func (h Hooks) fireOrderAdded(o *Order) {
	if h.OnOrderAdded != nil {
		h.OnOrderAdded(o)
	}
}

func (h Hooks) fireOrderRemoved(o *Order) {
	if h.OnOrderRemoved != nil {
		h.OnOrderRemoved(o)
	}
}
