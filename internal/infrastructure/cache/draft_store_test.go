package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"storefront-console/internal/domain"
)

func exerciseDraftStore(t *testing.T, store domain.DraftRepository) {
	t.Helper()
	ctx := context.Background()

	d := domain.NewProductDraft("draft-test-1", "admin", domain.DraftOptions{MaxCombinations: 10, Placeholders: true}, time.Now().UTC())
	if err := d.AddAttributeValue("Size", "40"); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, d); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Mutating the caller's copy must not reach the store.
	d.Variants[0].Price = "999"

	got, err := store.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Owner != "admin" || len(got.Variants) != 1 || got.Variants[0].Price != "" {
		t.Fatalf("unexpected draft %+v", got)
	}
	if got.Variants[0].Key != got.Variants[0].Combination.Key() {
		t.Fatal("variant key lost in storage")
	}

	if err := store.Delete(ctx, d.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, d.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get after delete = %v, want ErrNotFound", err)
	}

	exerciseDraftLock(t, store)
}

func exerciseDraftLock(t *testing.T, store domain.DraftRepository) {
	t.Helper()
	ctx := context.Background()

	unlock, err := store.Lock(ctx, "draft-lock-1")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		second, err := store.Lock(ctx, "draft-lock-1")
		if err != nil {
			t.Errorf("second Lock: %v", err)
			close(acquired)
			return
		}
		close(acquired)
		second()
	}()

	select {
	case <-acquired:
		t.Fatal("second holder got the lock while the first still held it")
	case <-time.After(60 * time.Millisecond):
	}

	// Other drafts are not blocked.
	other, err := store.Lock(ctx, "draft-lock-2")
	if err != nil {
		t.Fatalf("Lock other draft: %v", err)
	}
	other()

	unlock()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("lock was not released")
	}
}

func TestMemoryDraftStore(t *testing.T) {
	exerciseDraftStore(t, NewMemoryDraftStore(time.Minute))
}

func TestMemoryDraftStoreExpires(t *testing.T) {
	store := NewMemoryDraftStore(20 * time.Millisecond)
	d := domain.NewProductDraft("short", "admin", domain.DraftOptions{}, time.Now())
	_ = store.Save(context.Background(), d)
	time.Sleep(40 * time.Millisecond)
	if _, err := store.Get(context.Background(), "short"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expired draft still readable: %v", err)
	}
}

func TestRedisDraftStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := NewRedisClient(addr, os.Getenv("REDIS_PASSWORD"), 0)
	defer client.Close()
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}
	exerciseDraftStore(t, NewRedisDraftStore(client, time.Minute))
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	c.Set("k", 42, time.Minute)
	if v, ok := c.Get("k"); !ok || v.(int) != 42 {
		t.Fatalf("Get = %v, %v", v, ok)
	}
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after delete")
	}
}
