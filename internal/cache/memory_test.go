package cache

import (
	"strings"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, ok := c.Get("k")
	if !ok || string(val) != "v" {
		t.Errorf("Expected v, got %q (found=%v)", val, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 item, got %d", c.Len())
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("k", []byte("v"), 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("Expected entry to expire")
	}
}

func TestMemoryCache_DeleteClear(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)

	_ = c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("Expected a to be deleted")
	}

	_ = c.Clear()
	if _, ok := c.Get("b"); ok {
		t.Error("Expected cache to be empty after Clear")
	}
}

func TestKey(t *testing.T) {
	a := Key("robots", "example.com")
	b := Key("robots", "example.org")
	h := Key("health", "example.com")

	if a == b || a == h {
		t.Errorf("Expected distinct keys, got %s %s %s", a, b, h)
	}
	if !strings.HasPrefix(a, "clausewise:v1:robots:") {
		t.Errorf("Unexpected key prefix: %s", a)
	}
	if a != Key("robots", "example.com") {
		t.Error("Key must be deterministic")
	}
}
