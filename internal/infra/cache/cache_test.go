package cache_test

import (
	"testing"
	"time"

	"github.com/boddenberg/bank-dashboard-go/internal/infra/cache"
)

func TestCache_SetAndGet(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	val, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected key to exist")
	}
	if val != "value1" {
		t.Errorf("expected 'value1', got '%s'", val)
	}
}

func TestCache_GetMiss(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	if _, ok := c.Get("nonexistent"); ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCache_SetWithTTLExpires(t *testing.T) {
	c := cache.New[string](0)
	defer c.Close()

	c.SetWithTTL("token", "abc", 50*time.Millisecond)
	c.Set("forever", "xyz")
	time.Sleep(100 * time.Millisecond)

	if _, ok := c.Get("token"); ok {
		t.Fatal("expected entry with ttl to be expired")
	}
	if _, ok := c.Get("forever"); !ok {
		t.Fatal("expected entry without ttl to survive")
	}
}

func TestCache_Delete(t *testing.T) {
	c := cache.New[string](5 * time.Minute)
	defer c.Close()

	c.Set("key1", "value1")
	c.Delete("key1")

	if _, ok := c.Get("key1"); ok {
		t.Fatal("expected key to be deleted")
	}
}
