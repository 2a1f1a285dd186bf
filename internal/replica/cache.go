package replica

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joripage/orderbook-dev/internal/orderbook"
)

// SnapshotCache dampens thundering-herd resync after a partition: every
// inbound SNAPSHOT_REQUEST is served from a short-TTL Redis cache instead
// of recomputing (and re-serializing) the book on every peer that reconnects
// at once.
type SnapshotCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewSnapshotCache wraps client, namespacing the cache entry to pair.
func NewSnapshotCache(client *redis.Client, pair string, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = 2 * time.Second
	}
	return &SnapshotCache{client: client, key: "orderbook:snapshot:" + pair, ttl: ttl}
}

// Get returns the cached snapshot, if present and unexpired.
func (c *SnapshotCache) Get(ctx context.Context) (*orderbook.Snapshot, bool) {
	body, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		return nil, false
	}
	var snap orderbook.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, false
	}
	return &snap, true
}

// Set stores snap with the configured TTL.
func (c *SnapshotCache) Set(ctx context.Context, snap *orderbook.Snapshot) {
	body, err := json.Marshal(snap)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, c.key, body, c.ttl).Err()
}
