package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisCache(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheWithClient(client)
	t.Cleanup(func() { c.Close() })

	return mr, c
}

func TestRedisCacheSetGet(t *testing.T) {
	_, c := newTestRedisCache(t)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := c.Set("payload", payload{Name: "tasks", Count: 3}, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got payload
	if err := c.Get("payload", &got); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "tasks" || got.Count != 3 {
		t.Errorf("Unexpected payload: %+v", got)
	}
}

func TestRedisCacheMiss(t *testing.T) {
	_, c := newTestRedisCache(t)

	var value string
	if err := c.Get("absent", &value); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestRedisCacheExpiration(t *testing.T) {
	mr, c := newTestRedisCache(t)

	c.Set("ephemeral", "soon gone", time.Second)
	mr.FastForward(2 * time.Second)

	var value string
	if err := c.Get("ephemeral", &value); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after TTL, got %v", err)
	}
}

func TestRedisCacheDeletePattern(t *testing.T) {
	_, c := newTestRedisCache(t)

	c.Set("task:alice:1", "a", time.Minute)
	c.Set("task:alice:2", "b", time.Minute)
	c.Set("task:bob:1", "c", time.Minute)

	if err := c.DeletePattern("task:alice:*"); err != nil {
		t.Fatalf("DeletePattern failed: %v", err)
	}

	var value string
	if err := c.Get("task:alice:1", &value); err != ErrCacheMiss {
		t.Error("Alice's entries should be gone")
	}
	if err := c.Get("task:bob:1", &value); err != nil {
		t.Error("Bob's entry must survive")
	}
}

func TestRedisCacheExistsAndHealth(t *testing.T) {
	_, c := newTestRedisCache(t)

	found, err := c.Exists("nothing")
	if err != nil || found {
		t.Errorf("Expected not found, got found=%v err=%v", found, err)
	}

	c.Set("something", 1, time.Minute)
	found, err = c.Exists("something")
	if err != nil || !found {
		t.Errorf("Expected found, got found=%v err=%v", found, err)
	}

	if err := c.Health(); err != nil {
		t.Errorf("Health check failed: %v", err)
	}
}
