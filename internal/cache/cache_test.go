package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/crev/internal/providers"
)

func TestCache_PutGet(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 86400)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	key := "test-key"

	if _, ok := c.Get(key); ok {
		t.Error("Expected cache miss before put")
	}

	if err := c.Put(key, Entry{Provider: "github", Model: "gpt-4o", Reply: "**Summary**: Pass", TokensUsed: 12}); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Expected cache hit after put")
	}
	if got.Reply != "**Summary**: Pass" {
		t.Errorf("Reply = %q", got.Reply)
	}
	if got.Model != "gpt-4o" || got.Provider != "github" {
		t.Errorf("Entry metadata = %s/%s", got.Provider, got.Model)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt should be stamped on Put")
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 1)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	key := "expire-test"
	if err := c.Put(key, Entry{Reply: "data"}); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	if _, ok := c.Get(key); !ok {
		t.Error("Expected cache hit before expiration")
	}

	time.Sleep(1100 * time.Millisecond)

	if _, ok := c.Get(key); ok {
		t.Error("Expected cache miss after TTL expiration")
	}
}

func TestCache_Disabled(t *testing.T) {
	c, err := New(false, "", 0)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if c.Enabled() {
		t.Error("Cache should be disabled")
	}

	if err := c.Put("key", Entry{Reply: "value"}); err != nil {
		t.Errorf("Put on disabled cache should not error: %v", err)
	}
	if _, ok := c.Get("key"); ok {
		t.Error("Get on disabled cache should always miss")
	}
	if n, err := c.Clear(); err != nil || n != 0 {
		t.Errorf("Clear on disabled cache = (%d, %v), want (0, nil)", n, err)
	}
}

func TestCache_Clear(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 86400)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		if err := c.Put(key, Entry{Reply: "data"}); err != nil {
			t.Fatalf("Put error: %v", err)
		}
	}

	removed, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if removed != 5 {
		t.Errorf("removed = %d, want 5", removed)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			t.Errorf("entry %s survived Clear", e.Name())
		}
	}
}

func TestCache_GetStats(t *testing.T) {
	dir := t.TempDir()
	c, err := New(true, dir, 86400)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Entries != 0 {
		t.Errorf("Entries = %d, want 0", stats.Entries)
	}

	c.Put("key1", Entry{Reply: "value1"})
	c.Put("key2", Entry{Reply: "value2"})

	stats, err = c.GetStats()
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stats.Entries != 2 {
		t.Errorf("Entries = %d, want 2", stats.Entries)
	}
	if stats.TotalBytes <= 0 {
		t.Error("TotalBytes should be > 0")
	}
	if stats.Dir != dir {
		t.Errorf("Dir = %q, want %q", stats.Dir, dir)
	}
}

func TestHashKey(t *testing.T) {
	h1 := HashKey("test")
	h2 := HashKey("test")
	h3 := HashKey("other")

	if h1 != h2 {
		t.Error("Same input should produce same hash")
	}
	if h1 == h3 {
		t.Error("Different input should produce different hash")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestBuildKey(t *testing.T) {
	msgs := []providers.Message{
		{Role: providers.RoleSystem, Content: "sys"},
		{Role: providers.RoleUser, Content: "review x = 1"},
	}
	k1 := BuildKey("github", "gpt-4o", 0.3, 2048, msgs)
	k2 := BuildKey("github", "gpt-4o", 0.3, 2048, msgs)
	k3 := BuildKey("openai", "gpt-4o", 0.3, 2048, msgs)
	k4 := BuildKey("github", "gpt-4o", 0.3, 2048, append(msgs, providers.Message{Role: providers.RoleUser, Content: "more"}))
	k5 := BuildKey("github", "gpt-4o", 0.7, 2048, msgs)

	if k1 != k2 {
		t.Error("Same inputs should produce same cache key")
	}
	if k1 == k3 {
		t.Error("Different provider should produce different cache key")
	}
	if k1 == k4 {
		t.Error("Extra message should produce different cache key")
	}
	if k1 == k5 {
		t.Error("Different temperature should produce different cache key")
	}
}
