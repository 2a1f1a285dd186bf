package orderbook

import "errors"

var (
	// ErrValidation wraps a caller error on AddOrder; the book is not
	// mutated when this is returned.
	ErrValidation = errors.New("orderbook: validation error")

	// ErrPairMismatch is returned by LoadSnapshot when the snapshot's
	// pair does not match the book's own pair.
	ErrPairMismatch = errors.New("orderbook: snapshot pair mismatch")
)
