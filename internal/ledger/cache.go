package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SnapshotCache keeps account snapshots in Redis for the read path. Every
// balance mutation invalidates the affected entries, but a read racing a
// mutation can re-cache the snapshot it loaded just before the commit, so a
// hit may be stale for up to the cache TTL. Funds checks always read the
// store, never the cache. A nil cache is a no-op.
type SnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSnapshotCache wraps a Redis client as an account snapshot cache.
func NewSnapshotCache(rdb *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{rdb: rdb, ttl: ttl}
}

func snapshotKey(userID string) string {
	return fmt.Sprintf("account:user:%s", userID)
}

// Get returns the cached snapshot for the user, if any.
func (c *SnapshotCache) Get(ctx context.Context, userID string) (Account, bool) {
	if c == nil || c.rdb == nil {
		return Account{}, false
	}
	raw, err := c.rdb.Get(ctx, snapshotKey(userID)).Bytes()
	if err != nil {
		return Account{}, false
	}
	var account Account
	if err := json.Unmarshal(raw, &account); err != nil {
		return Account{}, false
	}
	return account, true
}

// Set stores the snapshot under the owning user's key.
func (c *SnapshotCache) Set(ctx context.Context, account Account) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(account)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, snapshotKey(account.UserID), raw, c.ttl)
}

// Invalidate drops the cached snapshot for the user.
func (c *SnapshotCache) Invalidate(ctx context.Context, userID string) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, snapshotKey(userID))
}
