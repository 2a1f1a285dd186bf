package orderbook

import "github.com/shopspring/decimal"

// match runs the matching state machine for one aggressor order against the
// opposing heap, mutating both the aggressor and any resting orders it
// consumes. It returns the trades produced, in generation order, and the
// resting orders fully consumed (for OnOrderRemoved), also in generation
// order. The caller is responsible for appending trades to the log and
// firing hooks — match itself never touches the hook table or the trade
// log, so its effects stay easy to reason about in isolation.
func (b *Book) match(order *Order) (trades []*Trade, removed []*Order) {
	opposing := b.opposingHeap(order.Side)

	for order.Quantity.IsPositive() {
		best, ok := opposing.Peek()
		if !ok {
			break
		}
		if !crosses(order, best) {
			break
		}

		tradedQty := decimalMin(order.Quantity, best.Quantity).Round(b.quantityPrecision)
		tradePrice := *best.Price

		seq := b.seq.Add(1)
		trade := &Trade{
			ID:        newTradeID(seq, order.ID, best.ID),
			Pair:      b.pair,
			Price:     tradePrice,
			Quantity:  tradedQty,
			Timestamp: order.Timestamp,
		}
		if order.Side == Buy {
			trade.BuyOrderID, trade.SellOrderID = order.ID, best.ID
			trade.BuyPeerID, trade.SellPeerID = order.PeerID, best.PeerID
		} else {
			trade.BuyOrderID, trade.SellOrderID = best.ID, order.ID
			trade.BuyPeerID, trade.SellPeerID = best.PeerID, order.PeerID
		}
		trades = append(trades, trade)

		order.Quantity = order.Quantity.Sub(tradedQty).Round(b.quantityPrecision)
		best.Quantity = best.Quantity.Sub(tradedQty).Round(b.quantityPrecision)

		if best.Quantity.IsZero() {
			opposing.ExtractTop()
			best.Status = StatusFilled
			removed = append(removed, best)
		} else {
			best.Status = StatusPartiallyFilled
			opposing.UpdateQuantity(best.ID, best.Quantity)
		}
	}

	return trades, removed
}

// crosses reports whether the aggressor may trade against best at all.
// Market orders always cross; limit orders cross only while their limit
// price has not been exceeded by the resting book.
func crosses(aggressor, best *Order) bool {
	if aggressor.Type == Market {
		return true
	}
	if aggressor.Side == Buy {
		return aggressor.Price.GreaterThanOrEqual(*best.Price)
	}
	return aggressor.Price.LessThanOrEqual(*best.Price)
}

func decimalMin(a, b decimal.Decimal) decimal.Decimal {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}
