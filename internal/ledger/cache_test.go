package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/voicebank/voicebank/internal/identity"
)

func newTestCache(t *testing.T) *SnapshotCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewSnapshotCache(client, time.Minute)
}

func TestSnapshotCacheRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	account := Account{
		ID:            "acc-1",
		UserID:        "user-1",
		AccountNumber: "ACC12345678",
		Balance:       decimal.NewFromInt(10_000),
		AccountType:   AccountTypeSavings,
	}

	if _, ok := cache.Get(ctx, "user-1"); ok {
		t.Fatal("expected miss on empty cache")
	}

	cache.Set(ctx, account)
	got, ok := cache.Get(ctx, "user-1")
	if !ok {
		t.Fatal("expected hit after set")
	}
	if got.AccountNumber != account.AccountNumber || !got.Balance.Equal(account.Balance) {
		t.Fatalf("cached snapshot mismatch: %+v", got)
	}

	cache.Invalidate(ctx, "user-1")
	if _, ok := cache.Get(ctx, "user-1"); ok {
		t.Fatal("expected miss after invalidation")
	}
}

func TestTransferInvalidatesSnapshots(t *testing.T) {
	cache := newTestCache(t)
	users := identity.NewMemoryRepository()
	svc := NewService(NewMemoryStore(), users, cache, nil, decimal.NewFromInt(10_000))
	ctx := context.Background()

	sender := seedUser(t, users, "Amina", "100")
	recipient := seedUser(t, users, "Brice", "200")
	svc.OpenAccount(ctx, sender.ID)
	svc.OpenAccount(ctx, recipient.ID)

	// Populate the cache, then mutate the sender balance.
	before, err := svc.GetAccount(ctx, sender.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if _, err := svc.Transfer(ctx, TransferInput{UserID: sender.ID, RecipientPhone: "200", Amount: decimal.NewFromInt(500)}); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	after, err := svc.GetAccount(ctx, sender.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if after.Balance.Equal(before.Balance) {
		t.Fatalf("expected fresh balance after transfer, got %s", after.Balance)
	}
	if !after.Balance.Equal(decimal.NewFromInt(9_500)) {
		t.Fatalf("expected balance 9500, got %s", after.Balance)
	}
}

// A nil cache must behave as a pass-through.
func TestNilSnapshotCache(t *testing.T) {
	var cache *SnapshotCache
	ctx := context.Background()

	if _, ok := cache.Get(ctx, "user-1"); ok {
		t.Fatal("nil cache should always miss")
	}
	cache.Set(ctx, Account{UserID: "user-1"})
	cache.Invalidate(ctx, "user-1")
}
