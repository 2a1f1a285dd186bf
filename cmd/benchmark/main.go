package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joripage/orderbook-dev/internal/orderbook"
)

const (
	numOrders = 1_000_000
	minPrice  = 100.0
	maxPrice  = 200.0
	minQty    = 1
	maxQty    = 100
)

func randomOrder(id int) *orderbook.Order {
	side := orderbook.Buy
	if rand.Intn(2) == 0 {
		side = orderbook.Sell
	}
	price := decimal.NewFromFloat(minPrice + rand.Float64()*(maxPrice-minPrice)).Round(2)
	qty := decimal.NewFromInt(int64(rand.Intn(maxQty-minQty+1) + minQty))

	return &orderbook.Order{
		ID:       fmt.Sprintf("ORD-%06d", id),
		Side:     side,
		Type:     orderbook.Limit,
		Price:    &price,
		Quantity: qty,
	}
}

func main() {
	var totalTrades int
	book := orderbook.New(orderbook.Config{
		Pair: "ABC-USD",
		Hooks: orderbook.Hooks{
			OnTrade: func(t *orderbook.Trade) { totalTrades++ },
		},
	})

	start := time.Now()
	for i := 0; i < numOrders; i++ {
		if _, err := book.AddOrder(randomOrder(i + 1)); err != nil {
			panic(err)
		}
	}
	elapsed := time.Since(start)

	fmt.Println("--------")
	fmt.Printf("total orders : %d\n", numOrders)
	fmt.Printf("total trades : %d\n", totalTrades)
	fmt.Printf("time taken   : %s\n", elapsed)
	fmt.Printf("orders/sec   : %.0f\n", float64(numOrders)/elapsed.Seconds())
}
