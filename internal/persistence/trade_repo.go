package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/joripage/orderbook-dev/internal/orderbook"
)

// TradeRecord is the durable row shape for a Trade. Price and Quantity are
// stored as strings to preserve shopspring/decimal's exact representation
// across the gorm/postgres boundary instead of losing precision to a
// float column.
type TradeRecord struct {
	ID          string `gorm:"primaryKey"`
	Pair        string `gorm:"index"`
	Price       string
	Quantity    string
	BuyOrderID  string `gorm:"index"`
	SellOrderID string `gorm:"index"`
	BuyPeerID   string
	SellPeerID  string
	Timestamp   time.Time `gorm:"index"`
}

func (TradeRecord) TableName() string { return "trades" }

func newTradeRecord(t *orderbook.Trade) *TradeRecord {
	return &TradeRecord{
		ID:          t.ID,
		Pair:        t.Pair,
		Price:       t.Price.String(),
		Quantity:    t.Quantity.String(),
		BuyOrderID:  t.BuyOrderID,
		SellOrderID: t.SellOrderID,
		BuyPeerID:   t.BuyPeerID,
		SellPeerID:  t.SellPeerID,
		Timestamp:   t.Timestamp,
	}
}

// TradeRepo persists Trade records, grounded on the teacher's
// OrderEventSQLRepo shape but re-pointed at the matching engine's own
// Trade type rather than an OMS order-event model.
type TradeRepo struct {
	db *gorm.DB
}

// NewTradeRepo wraps db for trade-log writes.
func NewTradeRepo(db *gorm.DB) *TradeRepo {
	return &TradeRepo{db: db}
}

func (r *TradeRepo) dbWithContext(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Create inserts a single trade.
func (r *TradeRepo) Create(ctx context.Context, trade *orderbook.Trade) error {
	return r.dbWithContext(ctx).Create(newTradeRecord(trade)).Error
}

// BulkCreate inserts a batch of trades in one statement, used by the sink's
// buffered flush path.
func (r *TradeRepo) BulkCreate(ctx context.Context, trades []*orderbook.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	records := make([]*TradeRecord, len(trades))
	for i, t := range trades {
		records[i] = newTradeRecord(t)
	}
	return r.dbWithContext(ctx).Create(records).Error
}
