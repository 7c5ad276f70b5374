package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory_SetAndGet(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if err := store.Set(ctx, "31", `{"depth":1}`, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := store.Get(ctx, "31")
	if err != nil || !ok {
		t.Fatalf("Get = (%v, %v), want hit", ok, err)
	}
	if got != `{"depth":1}` {
		t.Errorf("Get = %q", got)
	}

	if _, ok, _ := store.Get(ctx, "32"); ok {
		t.Error("unexpected hit for missing key")
	}
}

func TestMemory_Expiry(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	if err := store.Set(ctx, "c1", "{}", 50*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "c2", "{}", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, ok, _ := store.Get(ctx, "c1"); !ok {
		t.Error("entry should still be live before its TTL")
	}

	time.Sleep(100 * time.Millisecond)

	if _, ok, _ := store.Get(ctx, "c1"); ok {
		t.Error("entry should expire at its TTL")
	}
	if _, ok, _ := store.Get(ctx, "c2"); !ok {
		t.Error("entry without TTL should never expire")
	}
}

func TestMemory_NegativeTTLNeverExpires(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	_ = store.Set(ctx, "k", "v", -time.Second)
	time.Sleep(10 * time.Millisecond)

	if got, ok, _ := store.Get(ctx, "k"); !ok || got != "v" {
		t.Errorf("Get = (%q, %v), want stored without expiry", got, ok)
	}
}

func TestMemory_CleanupPurgesExpired(t *testing.T) {
	store := NewMemoryWithCleanup(20 * time.Millisecond)
	ctx := context.Background()

	_ = store.Set(ctx, "short", "{}", 10*time.Millisecond)
	_ = store.Set(ctx, "forever", "{}", 0)

	deadline := time.Now().Add(2 * time.Second)
	for store.Len() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if store.Len() != 1 {
		t.Errorf("Len = %d, want 1 after cleanup", store.Len())
	}
}

func TestMemory_Overwrite(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	_ = store.Set(ctx, "k", "old", time.Minute)
	_ = store.Set(ctx, "k", "new", 0)

	got, _, _ := store.Get(ctx, "k")
	if got != "new" {
		t.Errorf("Get = %q, want new", got)
	}
}

func TestNamespaced(t *testing.T) {
	tests := []struct {
		prefix, key, want string
	}{
		{"", "3171", "3171"},
		{"hp", "3171", "hp:3171"},
		{"hp", "", "hp:"},
	}
	for _, tt := range tests {
		if got := namespaced(tt.prefix, tt.key); got != tt.want {
			t.Errorf("namespaced(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
		}
	}
}
