package cache

import (
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	key := Key("tenant-1", "2026-09-01", "2026-09-07")
	c.Set(key, []string{"09:00", "10:00"})

	value, found := c.Get(key)
	if !found {
		t.Fatal("expected cached value")
	}

	slots, ok := value.([]string)
	if !ok || len(slots) != 2 {
		t.Errorf("value = %v, want two slots", value)
	}
}

func TestCache_Expiry(t *testing.T) {
	c := New(10 * time.Millisecond)
	defer c.Stop()

	c.Set("tenant-1:win", "value")
	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("tenant-1:win"); found {
		t.Error("expired entry should not be returned")
	}
}

func TestCache_EvictTenant(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set(Key("tenant-1", "a"), 1)
	c.Set(Key("tenant-1", "b"), 2)
	c.Set(Key("tenant-2", "a"), 3)

	c.EvictTenant("tenant-1")

	if _, found := c.Get(Key("tenant-1", "a")); found {
		t.Error("tenant-1 entries should be evicted")
	}
	if _, found := c.Get(Key("tenant-1", "b")); found {
		t.Error("tenant-1 entries should be evicted")
	}
	if _, found := c.Get(Key("tenant-2", "a")); !found {
		t.Error("tenant-2 entries should survive tenant-1 eviction")
	}
}
